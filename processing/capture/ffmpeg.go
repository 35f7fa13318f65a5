package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
)

const bytesPerPixel = 4

// FFmpegCamera pipes raw RGBA frames out of an ffmpeg process. Live sources
// keep only the newest frame; file sources deliver every frame in order.
type FFmpegCamera struct {
	stopOnce sync.Once
	mu       sync.Mutex

	args   []string
	width  int
	height int
	live   bool

	cmd       *exec.Cmd
	stderr    bytes.Buffer
	frameChan chan *image.RGBA
	stopChan  chan struct{}
	err       error
}

func newFFmpegCamera(args []string, width, height int, live bool) *FFmpegCamera {
	return &FFmpegCamera{
		args:      args,
		width:     width,
		height:    height,
		live:      live,
		frameChan: make(chan *image.RGBA, 1),
		stopChan:  make(chan struct{}),
	}
}

func NewFFmpegWebcam(deviceName string, targetFPS uint, width, height int) *FFmpegCamera {
	return newFFmpegCamera(webcamArgs(runtime.GOOS, deviceName, targetFPS, width, height), width, height, true)
}

// NewFFmpegFile plays a video file as if it were a camera. A zero width or
// height is replaced by the file's own dimensions.
func NewFFmpegFile(path string, targetFPS uint, width, height int) (*FFmpegCamera, error) {
	if width <= 0 || height <= 0 {
		w, h, err := probeVideoDimensions(path)
		if err != nil {
			return nil, fmt.Errorf("failed to probe video: %w", err)
		}
		width, height = int(w), int(h)
	}

	return newFFmpegCamera(fileArgs(path, targetFPS, width, height), width, height, false), nil
}

func webcamArgs(goos, deviceName string, targetFPS uint, width, height int) []string {
	var input []string

	switch goos {
	case "windows":
		input = []string{"-f", "dshow", "-i", fmt.Sprintf("video=%s", deviceName)}
	case "darwin":
		input = []string{"-f", "avfoundation", "-i", deviceName}
	default:
		if _, err := strconv.Atoi(deviceName); err == nil {
			deviceName = "/dev/video" + deviceName
		}
		input = []string{"-f", "v4l2", "-i", deviceName}
	}

	return append(input, rawOutputArgs(targetFPS, width, height)...)
}

func fileArgs(path string, targetFPS uint, width, height int) []string {
	return append([]string{"-re", "-i", path}, rawOutputArgs(targetFPS, width, height)...)
}

func rawOutputArgs(targetFPS uint, width, height int) []string {
	return []string{
		"-vf", fmt.Sprintf("fps=%d,scale=%d:%d", targetFPS, width, height),
		"-f", "image2pipe",
		"-pix_fmt", "rgba",
		"-vcodec", "rawvideo",
		"-",
	}
}

func (c *FFmpegCamera) Start() error {
	if c.width <= 0 || c.height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", c.width, c.height)
	}

	c.cmd = exec.Command("ffmpeg", c.args...)
	c.cmd.Stderr = &c.stderr

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return err
	}

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w. Details: %s", err, c.stderr.String())
	}

	go c.readLoop(stdout)

	return nil
}

func (c *FFmpegCamera) readLoop(stdout io.ReadCloser) {
	defer close(c.frameChan)
	defer stdout.Close()
	defer c.stopCmdOut()

	frameSize := c.width * c.height * bytesPerPixel

	for {
		buffer := make([]byte, frameSize)

		if _, err := io.ReadFull(stdout, buffer); err != nil {
			select {
			case <-c.stopChan:
			default:
				if !errors.Is(err, io.EOF) {
					c.setErr(fmt.Errorf("read error: %w", err))
				}
			}
			return
		}

		img := &image.RGBA{
			Pix:    buffer,
			Stride: c.width * bytesPerPixel,
			Rect:   image.Rect(0, 0, c.width, c.height),
		}

		if c.live {
			// drop the unread frame so Read always gets the newest one
			select {
			case <-c.frameChan:
			default:
			}
		}

		select {
		case c.frameChan <- img:
		case <-c.stopChan:
			return
		}
	}
}

func (c *FFmpegCamera) Read() (*image.RGBA, bool) {
	select {
	case <-c.stopChan:
		return nil, false
	default:
	}

	select {
	case img, ok := <-c.frameChan:
		return img, ok
	case <-c.stopChan:
		return nil, false
	}
}

// Err returns the error that ended the stream, if any.
func (c *FFmpegCamera) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *FFmpegCamera) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *FFmpegCamera) stopCmdOut() {
	if c.cmd != nil && c.cmd.Process != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
	}
}

func (c *FFmpegCamera) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)

		// unblocks readLoop, which reaps the process
		if c.cmd != nil && c.cmd.Process != nil {
			c.cmd.Process.Kill()
		}
	})
	return nil
}

type probeData struct {
	Streams []struct {
		Width  uint16 `json:"width"`
		Height uint16 `json:"height"`
	} `json:"streams"`
}

func probeVideoDimensions(path string) (uint16, uint16, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, 0, err
	}

	return parseProbe(output)
}

func parseProbe(output []byte) (uint16, uint16, error) {
	var data probeData
	if err := json.Unmarshal(output, &data); err != nil {
		return 0, 0, err
	}

	if len(data.Streams) == 0 {
		return 0, 0, fmt.Errorf("no video streams found")
	}

	return data.Streams[0].Width, data.Streams[0].Height, nil
}
