package capture

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func rawFrames(width, height int, values ...byte) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		buf.Write(bytes.Repeat([]byte{v}, width*height*bytesPerPixel))
	}
	return buf.Bytes()
}

func TestFFmpegCameraFileDeliversEveryFrame(t *testing.T) {
	cam := newFFmpegCamera(nil, 4, 2, false)
	go cam.readLoop(io.NopCloser(bytes.NewReader(rawFrames(4, 2, 10, 20, 30))))

	for _, want := range []byte{10, 20, 30} {
		img, ok := cam.Read()
		require.True(t, ok)
		require.Equal(t, 4, img.Bounds().Dx())
		require.Equal(t, 2, img.Bounds().Dy())
		require.Equal(t, want, img.Pix[0])
	}

	_, ok := cam.Read()
	require.False(t, ok)
	require.NoError(t, cam.Err())
}

func TestFFmpegCameraTruncatedFrameEndsStream(t *testing.T) {
	data := rawFrames(4, 2, 1)
	data = append(data, 0xff, 0xff)

	cam := newFFmpegCamera(nil, 4, 2, false)
	go cam.readLoop(io.NopCloser(bytes.NewReader(data)))

	_, ok := cam.Read()
	require.True(t, ok)

	_, ok = cam.Read()
	require.False(t, ok)
	require.ErrorContains(t, cam.Err(), "read error")
}

func TestFFmpegCameraReadAfterClose(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	cam := newFFmpegCamera(nil, 2, 2, true)
	go cam.readLoop(r)

	require.NoError(t, cam.Close())
	require.NoError(t, cam.Close())

	_, ok := cam.Read()
	require.False(t, ok)
}

func TestWebcamArgs(t *testing.T) {
	args := webcamArgs("linux", "0", 30, 640, 480)
	require.Equal(t, []string{
		"-f", "v4l2", "-i", "/dev/video0",
		"-vf", "fps=30,scale=640:480",
		"-f", "image2pipe", "-pix_fmt", "rgba", "-vcodec", "rawvideo", "-",
	}, args)

	args = webcamArgs("windows", "Integrated Camera", 15, 320, 240)
	require.Equal(t, "video=Integrated Camera", args[3])
	require.Equal(t, "fps=15,scale=320:240", args[5])
}

func TestParseProbe(t *testing.T) {
	w, h, err := parseProbe([]byte(`{"streams":[{"width":1280,"height":720}]}`))
	require.NoError(t, err)
	require.Equal(t, uint16(1280), w)
	require.Equal(t, uint16(720), h)

	_, _, err = parseProbe([]byte(`{"streams":[]}`))
	require.Error(t, err)
}

func TestFFmpegCameraStartRejectsInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 0}, {-1, 480}, {640, 0}} {
		cam := NewFFmpegWebcam("0", 30, size[0], size[1])

		require.ErrorContains(t, cam.Start(), "invalid frame size")
		require.Nil(t, cam.cmd)
	}
}
