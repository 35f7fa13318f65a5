package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		envVars map[string]string
		wantErr bool
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "uses defaults when file is missing",
			check: func(t *testing.T, c *Config) {
				require.Equal(t, uint(30), c.TargetFPS)
				require.Equal(t, 0.6, c.FrameScale)
				require.Equal(t, SourceOpenCV, c.Camera.Backend)
				require.Equal(t, "0", c.Camera.DeviceID)
				require.Equal(t, 1.3, c.Detector.ScaleFactor)
				require.Equal(t, 5, c.Detector.MinNeighbors)
				require.Equal(t, float32(800), c.Window.Width)
			},
		},
		{
			name: "file overrides defaults",
			file: `{"target_fps": 15, "camera": {"backend": "ffmpeg", "device_id": "/dev/video2"}}`,
			check: func(t *testing.T, c *Config) {
				require.Equal(t, uint(15), c.TargetFPS)
				require.Equal(t, SourceWebcam, c.Camera.Backend)
				require.Equal(t, "/dev/video2", c.Camera.DeviceID)
				require.Equal(t, 480, c.Camera.Height)
			},
		},
		{
			name: "environment overrides file",
			file: `{"target_fps": 15}`,
			envVars: map[string]string{
				"FACEDETECT_TARGET_FPS":             "10",
				"FACEDETECT_DETECTOR_BACKEND":       "remote",
				"FACEDETECT_DETECTOR_REMOTE_HOST":   "detector:9000",
				"FACEDETECT_MODELS_GENDER_WEIGHTS":  "/models/gender.caffemodel",
				"FACEDETECT_DETECTOR_MIN_NEIGHBORS": "3",
			},
			check: func(t *testing.T, c *Config) {
				require.Equal(t, uint(10), c.TargetFPS)
				require.Equal(t, BackendRemote, c.Detector.Backend)
				require.Equal(t, "detector:9000", c.Detector.RemoteHost)
				require.Equal(t, "/models/gender.caffemodel", c.Models.GenderWeights)
				require.Equal(t, 3, c.Detector.MinNeighbors)
			},
		},
		{
			name:    "fails on malformed file",
			file:    `{"target_fps": `,
			wantErr: true,
		},
		{
			name:    "fails on unknown camera backend",
			file:    `{"camera": {"backend": "v4l"}}`,
			wantErr: true,
		},
		{
			name:    "fails on zero webcam frame size",
			file:    `{"camera": {"backend": "ffmpeg", "width": 0, "height": 0}}`,
			wantErr: true,
		},
		{
			name: "fails on negative webcam frame size",
			envVars: map[string]string{
				"FACEDETECT_CAMERA_BACKEND": "ffmpeg",
				"FACEDETECT_CAMERA_WIDTH":   "-1",
			},
			wantErr: true,
		},
		{
			name:  "file source probes zero frame size",
			file:  `{"camera": {"backend": "file", "path": "clip.mp4", "width": 0, "height": 0}}`,
			check: func(t *testing.T, c *Config) {
				require.Equal(t, SourceFile, c.Camera.Backend)
				require.Zero(t, c.Camera.Width)
				require.Zero(t, c.Camera.Height)
			},
		},
		{
			name:    "fails on negative file frame size",
			file:    `{"camera": {"backend": "file", "path": "clip.mp4", "height": -480}}`,
			wantErr: true,
		},
		{
			name:    "fails on frame scale out of range",
			envVars: map[string]string{"FACEDETECT_FRAME_SCALE": "1.5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := filepath.Join(dir, "config.json")
			if tt.file != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := NewDefaultConfig()
	cfg.SetFPS(12)
	require.NoError(t, cfg.Save(path))

	// a shorter second write must not leave trailing bytes behind
	cfg.SetFPS(7)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint(7), loaded.GetFPS())
}

func TestGetFPSFallsBackToDefault(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetFPS(0)
	require.Equal(t, DefaultTargetFPS, cfg.GetFPS())
}

func TestNeedsSave(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.NeedsSave())

	cfg.SetFPS(cfg.GetFPS())
	require.False(t, cfg.NeedsSave())

	cfg.SetFPS(12)
	require.True(t, cfg.NeedsSave())

	require.NoError(t, os.WriteFile(path, []byte(`{"target_fps": 15}`), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.NeedsSave())
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}
