package capture

import (
	"fmt"

	config "facedetect/internal/config"
	"facedetect/internal/models"
)

func NewCamera(cfg *config.Config) (Camera, error) {
	c := cfg.Camera

	switch c.Backend {
	case config.SourceOpenCV:
		cam, err := NewOpenCVCamera(c.DeviceID)
		if err != nil {
			return nil, err
		}
		return cam, nil

	case config.SourceWebcam:
		cam := NewFFmpegWebcam(c.DeviceID, cfg.GetFPS(), c.Width, c.Height)
		if err := cam.Start(); err != nil {
			return nil, models.ErrCameraOpen.WithError(err)
		}
		return cam, nil

	case config.SourceFile:
		cam, err := NewFFmpegFile(c.Path, cfg.GetFPS(), c.Width, c.Height)
		if err != nil {
			return nil, models.ErrCameraOpen.WithError(err)
		}
		if err := cam.Start(); err != nil {
			return nil, models.ErrCameraOpen.WithError(err)
		}
		return cam, nil

	default:
		return nil, models.ErrCameraOpen.WithError(fmt.Errorf("unknown source: %s", c.Backend))
	}
}
