package processing

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"go.uber.org/atomic"

	"facedetect/internal/config"
	"facedetect/internal/models"
	"facedetect/processing/capture"
)

// Annotated is one processed frame together with what was found in it.
type Annotated struct {
	Frame *image.RGBA
	Faces []models.Face
}

type Stats struct {
	Frames  uint64
	FPS     uint32
	Latency time.Duration
}

// Loop captures frames, annotates faces, eyes and gender, and publishes the
// result on Frames. It never touches GUI state.
type Loop struct {
	cfg    *config.Config
	camera capture.Camera
	faces  Detector
	eyes   Detector
	gender GenderClassifier
	logger *slog.Logger

	frames chan image.Image

	active    atomic.Bool
	published atomic.Uint64
	fps       atomic.Uint32
	latency   atomic.Duration
}

func NewLoop(cfg *config.Config, camera capture.Camera, m *Models, logger *slog.Logger) *Loop {
	return &Loop{
		cfg:    cfg,
		camera: camera,
		faces:  m.Faces,
		eyes:   m.Eyes,
		gender: m.Gender,
		logger: logger,
		frames: make(chan image.Image, 1),
	}
}

// Frames carries the newest annotated frame. A frame nobody picked up is
// replaced by the next one.
func (l *Loop) Frames() <-chan image.Image {
	return l.frames
}

func (l *Loop) Active() bool {
	return l.active.Load()
}

func (l *Loop) Stats() Stats {
	return Stats{
		Frames:  l.published.Load(),
		FPS:     l.fps.Load(),
		Latency: l.latency.Load(),
	}
}

// Run processes frames until ctx is done or the camera stops producing
// frames. Both are normal endings and return nil. Only one Run may be active.
func (l *Loop) Run(ctx context.Context) error {
	if !l.active.CompareAndSwap(false, true) {
		return models.ErrAlreadyRunning
	}
	defer l.active.Store(false)

	l.logger.Info("detection loop started", "target_fps", l.cfg.GetFPS())

	var frameCount uint32
	lastFpsUpdate := time.Now()

	for {
		if ctx.Err() != nil {
			l.logger.Info("detection loop stopped")
			return nil
		}

		start := time.Now()

		frame, ok := l.camera.Read()
		if !ok {
			l.logger.Info("camera stream ended")
			return nil
		}

		out := l.ProcessFrame(frame)
		l.publish(out.Frame)
		l.latency.Store(time.Since(start))

		frameCount++
		if time.Since(lastFpsUpdate) >= time.Second {
			l.fps.Store(frameCount)
			frameCount = 0
			lastFpsUpdate = time.Now()
		}

		wait := frameDelay(time.Since(start), frameInterval(l.cfg.GetFPS()))
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
		}
	}
}

// ProcessFrame downscales frame and draws every detection onto the copy.
// The input frame is left untouched.
func (l *Loop) ProcessFrame(frame *image.RGBA) Annotated {
	small := Downscale(frame, l.cfg.GetFrameScale())
	gray := Luma(small)

	out := Annotated{Frame: small}

	boxes, err := guard(func() ([]image.Rectangle, error) {
		return l.faces.Detect(gray)
	})
	if err != nil {
		l.logger.Warn("face detection failed", "error", err)
		return out
	}

	if len(boxes) == 0 {
		return out
	}

	// classifier input must not contain outlines drawn for earlier faces
	clean := cropRGBA(small, small.Bounds())
	bounds := small.Bounds()

	for _, box := range boxes {
		box = box.Intersect(bounds)
		if box.Empty() {
			continue
		}

		face := models.Face{Box: box}
		drawRect(small, box, faceColor, lineThickness)

		face.Eyes = l.detectEyes(gray, box)
		region := small.SubImage(box).(*image.RGBA)
		for _, eye := range face.Eyes {
			drawRect(region, eye, eyeColor, lineThickness)
		}

		gender, err := l.classify(clean, box)
		if err != nil {
			l.logger.Warn("gender classification failed", "box", box, "error", err)
		} else {
			face.Gender = gender
			face.Classified = true
			drawLabel(small, gender.String(), image.Pt(box.Min.X, box.Min.Y-labelOffset), labelColor)
		}

		out.Faces = append(out.Faces, face)
	}

	return out
}

// detectEyes runs the eye detector on the face crop and returns the boxes in
// frame coordinates.
func (l *Loop) detectEyes(gray *image.Gray, face image.Rectangle) []image.Rectangle {
	local, err := guard(func() ([]image.Rectangle, error) {
		return l.eyes.Detect(cropGray(gray, face))
	})
	if err != nil {
		l.logger.Warn("eye detection failed", "box", face, "error", err)
		return nil
	}

	eyes := make([]image.Rectangle, 0, len(local))
	for _, eye := range local {
		eyes = append(eyes, eye.Add(face.Min))
	}

	return eyes
}

func (l *Loop) classify(frame *image.RGBA, face image.Rectangle) (models.Gender, error) {
	scores, err := guard(func() ([]float32, error) {
		return l.gender.Classify(cropRGBA(frame, face))
	})
	if err != nil {
		return 0, err
	}

	return LabelFor(scores)
}

func (l *Loop) publish(img image.Image) {
	select {
	case l.frames <- img:
	default:
		select {
		case <-l.frames:
		default:
		}
		select {
		case l.frames <- img:
		default:
		}
	}

	l.published.Inc()
}

// guard turns a panic inside a detector or classifier into ErrInference.
func guard[T any](fn func() (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = models.ErrInference.WithError(fmt.Errorf("panic: %v", r))
		}
	}()

	var ve *models.VisionError

	res, err = fn()
	if err != nil && !errors.As(err, &ve) {
		err = models.ErrInference.WithError(err)
	}

	return res, err
}
