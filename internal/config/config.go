package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type SourceType string

type DetectorBackend string

const (
	SourceOpenCV SourceType = "opencv"
	SourceWebcam SourceType = "ffmpeg"
	SourceFile   SourceType = "file"

	BackendCascade DetectorBackend = "cascade"
	BackendRemote  DetectorBackend = "remote"

	DefaultConfigPath string = "config.json"
	EnvPrefix         string = "FACEDETECT"

	DefaultTargetFPS uint = 30
)

type CameraConfig struct {
	Backend  SourceType `json:"backend" split_words:"true"`
	DeviceID string     `json:"device_id" split_words:"true"`
	Path     string     `json:"path" split_words:"true"`

	// Width and Height are only used by the ffmpeg sources, which have to
	// know the raw frame geometry up front.
	Width  int `json:"width" split_words:"true"`
	Height int `json:"height" split_words:"true"`
}

type ModelsConfig struct {
	FaceCascade   string `json:"face_cascade" split_words:"true"`
	EyeCascade    string `json:"eye_cascade" split_words:"true"`
	GenderProto   string `json:"gender_proto" split_words:"true"`
	GenderWeights string `json:"gender_weights" split_words:"true"`
}

type DetectorConfig struct {
	Backend      DetectorBackend `json:"backend" split_words:"true"`
	ScaleFactor  float64         `json:"scale_factor" split_words:"true"`
	MinNeighbors int             `json:"min_neighbors" split_words:"true"`
	RemoteHost   string          `json:"remote_host" split_words:"true"`
	RetryDelayMs int             `json:"retry_delay_ms" split_words:"true"`
}

type WindowConfig struct {
	Width  float32 `json:"width" split_words:"true"`
	Height float32 `json:"height" split_words:"true"`
}

type Config struct {
	mu sync.RWMutex

	// fromFile is set when the settings came from a config file and
	// fpsChanged once SetFPS changed the target at runtime.
	fromFile   bool
	fpsChanged bool

	Env        string  `json:"env" split_words:"true"`
	TargetFPS  uint    `json:"target_fps" split_words:"true"`
	FrameScale float64 `json:"frame_scale" split_words:"true"`

	Camera   CameraConfig   `json:"camera" split_words:"true"`
	Models   ModelsConfig   `json:"models" split_words:"true"`
	Detector DetectorConfig `json:"detector" split_words:"true"`
	Window   WindowConfig   `json:"window" split_words:"true"`
}

func (c *Config) GetFPS() uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.TargetFPS == 0 {
		return DefaultTargetFPS
	}
	return c.TargetFPS
}

func (c *Config) SetFPS(fps uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.TargetFPS != fps {
		c.fpsChanged = true
	}
	c.TargetFPS = fps
}

func (c *Config) GetFrameScale() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.FrameScale
}

// NeedsSave reports whether closing the app should write the settings back:
// a config file was loaded or the target FPS was changed at runtime.
func (c *Config) NeedsSave() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fromFile || c.fpsChanged
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Validate reports the first setting the application cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.FrameScale <= 0 || c.FrameScale > 1:
		return fmt.Errorf("frame_scale must be in (0, 1], got %v", c.FrameScale)
	case c.Detector.ScaleFactor <= 1:
		return fmt.Errorf("detector.scale_factor must be greater than 1, got %v", c.Detector.ScaleFactor)
	case c.Detector.MinNeighbors < 0:
		return fmt.Errorf("detector.min_neighbors must not be negative, got %d", c.Detector.MinNeighbors)
	}

	switch c.Camera.Backend {
	case SourceOpenCV:
	case SourceWebcam:
		if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
			return fmt.Errorf("camera.width and camera.height must be positive for the ffmpeg backend, got %dx%d", c.Camera.Width, c.Camera.Height)
		}
	case SourceFile:
		// zero means probe the file
		if c.Camera.Width < 0 || c.Camera.Height < 0 {
			return fmt.Errorf("camera.width and camera.height must not be negative, got %dx%d", c.Camera.Width, c.Camera.Height)
		}
	default:
		return fmt.Errorf("unknown camera backend: %q", c.Camera.Backend)
	}

	switch c.Detector.Backend {
	case BackendCascade, BackendRemote:
	default:
		return fmt.Errorf("unknown detector backend: %q", c.Detector.Backend)
	}

	return nil
}

// Load builds the configuration from defaults, the JSON file at path (when it
// exists), a .env file and FACEDETECT_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		cfg.fromFile = true
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func NewDefaultConfig() *Config {
	return &Config{
		Env:        "development",
		TargetFPS:  DefaultTargetFPS,
		FrameScale: 0.6,
		Camera: CameraConfig{
			Backend:  SourceOpenCV,
			DeviceID: "0",
			Width:    640,
			Height:   480,
		},
		Models: ModelsConfig{
			FaceCascade:   "data/haarcascade_frontalface_default.xml",
			EyeCascade:    "data/haarcascade_eye.xml",
			GenderProto:   "gender_deploy.prototxt",
			GenderWeights: "gender_net.caffemodel",
		},
		Detector: DetectorConfig{
			Backend:      BackendCascade,
			ScaleFactor:  1.3,
			MinNeighbors: 5,
			RemoteHost:   "localhost:8080",
			RetryDelayMs: 2000,
		},
		Window: WindowConfig{
			Width:  800,
			Height: 600,
		},
	}
}
