package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/atomic"

	"facedetect/internal/config"
	"facedetect/internal/ui/cwidget"
	"facedetect/processing/capture"
	processing "facedetect/processing/detector"
)

const (
	WindowTitle = "Face, Eye & Gender Detection System"

	maxTargetFPS = 120
	stopTimeout  = 2 * time.Second
	statInterval = 200 * time.Millisecond
)

type DetectApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config     *config.Config
	configPath string
	loop       *processing.Loop
	camera     capture.Camera
	logger     *slog.Logger

	videoCanvas  *canvas.Image
	startButton  *widget.Button
	latencyLabel *widget.Label
	fpsLabel     *widget.Label

	mu      sync.Mutex
	cancel  context.CancelFunc
	runDone chan struct{}

	runs  atomic.Uint32
	shown atomic.Uint64
}

func CreateApp(loop *processing.Loop, camera capture.Camera, cfg *config.Config, configPath string, logger *slog.Logger) *DetectApp {
	return NewDetectApp(app.New(), loop, camera, cfg, configPath, logger)
}

// NewDetectApp builds the window on an existing fyne application.
func NewDetectApp(fyneApp fyne.App, loop *processing.Loop, camera capture.Camera, cfg *config.Config, configPath string, logger *slog.Logger) *DetectApp {
	w := fyneApp.NewWindow(WindowTitle)
	w.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	a := &DetectApp{
		fyneApp:    fyneApp,
		mainWin:    w,
		config:     cfg,
		configPath: configPath,
		loop:       loop,
		camera:     camera,
		logger:     logger.With("component", "ui"),
	}
	a.buildUI()

	return a
}

func (a *DetectApp) Run() {
	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

func (a *DetectApp) buildUI() {
	a.videoCanvas = canvas.NewImageFromImage(nil)
	a.videoCanvas.FillMode = canvas.ImageFillContain
	a.videoCanvas.SetMinSize(fyne.NewSize(640, 480))

	a.startButton = widget.NewButtonWithIcon("Start Detection", theme.MediaPlayIcon(), a.StartDetection)
	a.startButton.Importance = widget.SuccessImportance

	stats := a.loop.Stats()
	a.latencyLabel = widget.NewLabel(a.formatLatency(stats.Latency))
	a.fpsLabel = widget.NewLabel(a.formatFPS(stats.FPS))

	fpsInput := cwidget.NewIntInput(
		"Target FPS",
		"Enter integer",
		int(a.config.GetFPS()),
		1, maxTargetFPS,
		func(i int) {
			a.config.SetFPS(uint(i))
		},
	)

	toolbar := container.NewHBox(
		a.startButton,
		widget.NewSeparator(),
		a.fpsLabel,
		widget.NewSeparator(),
		a.latencyLabel,
		layout.NewSpacer(),
		fpsInput,
	)

	a.mainWin.SetContent(container.NewBorder(
		container.NewPadded(toolbar),
		nil, nil, nil,
		a.videoCanvas,
	))

	// closing the window never asks for confirmation
	a.mainWin.SetCloseIntercept(a.Shutdown)
}

// Running reports whether a detection run was started and has not finished.
func (a *DetectApp) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// StartDetection launches the loop on a background goroutine. It does nothing
// while a run is in progress.
func (a *DetectApp) StartDetection() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.logger.Debug("detection already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.runDone = done
	a.runs.Inc()

	go func() {
		defer close(done)

		if err := a.loop.Run(ctx); err != nil {
			a.logger.Error("detection loop failed", "error", err)
		}
		a.finishRun(done)
	}()

	go a.runPlayerLoop(done)
	go a.runStatLoop(done)
}

// finishRun clears the run state when the loop ended without StopDetection.
func (a *DetectApp) finishRun(done chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.runDone != done {
		return
	}

	a.cancel()
	a.cancel = nil
	a.runDone = nil
}

// StopDetection cancels the current run and waits briefly for the loop to
// return.
func (a *DetectApp) StopDetection() {
	a.mu.Lock()
	cancel, done := a.cancel, a.runDone
	a.cancel, a.runDone = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()

	select {
	case <-done:
	case <-time.After(stopTimeout):
		a.logger.Warn("detection loop did not stop in time", "timeout", stopTimeout)
	}
}

// Shutdown stops detection, releases the camera, persists the settings when
// they came from a file or were changed, and quits the application.
func (a *DetectApp) Shutdown() {
	a.StopDetection()

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("failed to release camera", "error", err)
	}

	if a.config.NeedsSave() {
		if err := a.config.Save(a.configPath); err != nil {
			a.logger.Warn("failed to save config", "path", a.configPath, "error", err)
		}
	}

	a.fyneApp.Quit()
}

func (a *DetectApp) runStatLoop(done <-chan struct{}) {
	uiTicker := time.NewTicker(statInterval)
	defer uiTicker.Stop()

	for {
		select {
		case <-uiTicker.C:
			stats := a.loop.Stats()
			fyne.Do(func() {
				a.latencyLabel.SetText(a.formatLatency(stats.Latency))
				a.fpsLabel.SetText(a.formatFPS(stats.FPS))
			})
		case <-done:
			return
		}
	}
}

func (a *DetectApp) formatFPS(v uint32) string {
	return fmt.Sprintf("FPS: %d", v)
}

func (a *DetectApp) formatLatency(v time.Duration) string {
	return fmt.Sprintf("Latency: %d ms", v.Milliseconds())
}

func (a *DetectApp) runPlayerLoop(done <-chan struct{}) {
	displayTicker := time.NewTicker(time.Second / time.Duration(a.config.GetFPS()))
	defer displayTicker.Stop()

	var lastFrame image.Image

	for {
		select {
		case frame := <-a.loop.Frames():
			if frame != nil {
				lastFrame = frame
			}

		case <-displayTicker.C:
			if lastFrame != nil {
				a.showFrame(lastFrame)
				lastFrame = nil
			}

		case <-done:
			// the loop may have published once more before returning
			select {
			case frame := <-a.loop.Frames():
				lastFrame = frame
			default:
			}
			if lastFrame != nil {
				a.showFrame(lastFrame)
			}
			return
		}
	}
}

func (a *DetectApp) showFrame(frame image.Image) {
	fyne.Do(func() {
		a.videoCanvas.Image = frame
		a.videoCanvas.Refresh()
		a.shown.Inc()
	})
}
