package processing

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	"facedetect/internal/config"
	"facedetect/internal/models"
)

// Detector finds objects in a luma image. Returned rectangles are relative to
// the image's own bounds.
type Detector interface {
	Detect(gray *image.Gray) ([]image.Rectangle, error)
}

// GenderClassifier scores a zero-origin colour crop of one face. The result
// holds one score per entry of models.GenderLabels.
type GenderClassifier interface {
	Classify(face *image.RGBA) ([]float32, error)
}

const idlePollInterval = 10 * time.Millisecond

type Models struct {
	Faces  Detector
	Eyes   Detector
	Gender GenderClassifier

	closers []io.Closer
}

func (m *Models) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// CloseWhenIdle waits up to wait for l to stop running and then closes the
// models. While l is still inside a detector the models stay open and an
// error is returned.
func (m *Models) CloseWhenIdle(l *Loop, wait time.Duration) error {
	deadline := time.Now().Add(wait)

	for l.Active() {
		if time.Now().After(deadline) {
			return fmt.Errorf("detection loop still running after %s, models left open", wait)
		}
		time.Sleep(idlePollInterval)
	}

	return m.Close()
}

// LoadModels loads every detector the loop needs. Any failure is reported as
// models.ErrModelLoad and releases what was already loaded.
func LoadModels(cfg *config.Config, logger *slog.Logger) (*Models, error) {
	m := &Models{}

	switch cfg.Detector.Backend {
	case config.BackendRemote:
		retry := time.Duration(cfg.Detector.RetryDelayMs) * time.Millisecond
		remote := NewRemoteDetector(cfg.Detector.RemoteHost, retry, logger)
		remote.Start()

		m.Faces = remote
		m.closers = append(m.closers, remote)

	default:
		faces, err := NewCascadeDetector(cfg.Models.FaceCascade, cfg.Detector.ScaleFactor, cfg.Detector.MinNeighbors)
		if err != nil {
			m.Close()
			return nil, err
		}

		m.Faces = faces
		m.closers = append(m.closers, faces)
	}

	eyes, err := NewCascadeDetector(cfg.Models.EyeCascade, 0, 0)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.Eyes = eyes
	m.closers = append(m.closers, eyes)

	gender, err := NewGenderNet(cfg.Models.GenderProto, cfg.Models.GenderWeights)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.Gender = gender
	m.closers = append(m.closers, gender)

	logger.Info("models loaded",
		"face_backend", cfg.Detector.Backend,
		"face_cascade", cfg.Models.FaceCascade,
		"eye_cascade", cfg.Models.EyeCascade,
		"gender_weights", cfg.Models.GenderWeights,
	)

	return m, nil
}

func checkModelFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return models.ErrModelLoad.WithError(err)
	}
	if info.IsDir() {
		return models.ErrModelLoad.WithError(fmt.Errorf("%s is a directory", path))
	}
	return nil
}
