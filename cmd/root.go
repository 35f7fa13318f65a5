package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"facedetect/internal/config"
	"facedetect/internal/ui"
	"facedetect/processing/capture"
	processing "facedetect/processing/detector"
)

var (
	// cfg and logger are shared by every subcommand
	cfg    *config.Config
	logger *slog.Logger

	configPath string
)

// Version is the application version.
const Version = "0.1.0"

const modelReleaseTimeout = 2 * time.Second

var rootCmd = &cobra.Command{
	Use:           "facedetect",
	Short:         "Live face, eye and gender detection from a webcam",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logger = config.NewLogger(cfg.Env)
		slog.SetDefault(logger)

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDetect(cmd.Context())
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("facedetect failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to the JSON config file")
}

// openPipeline loads the models and opens the camera. The caller owns both.
func openPipeline() (*processing.Models, capture.Camera, error) {
	m, err := processing.LoadModels(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cam, err := capture.NewCamera(cfg)
	if err != nil {
		m.Close()
		return nil, nil, err
	}

	return m, cam, nil
}

func runDetect(ctx context.Context) error {
	m, cam, err := openPipeline()
	if err != nil {
		return err
	}
	loop := processing.NewLoop(cfg, cam, m, logger)
	defer func() {
		if err := m.CloseWhenIdle(loop, modelReleaseTimeout); err != nil {
			logger.Warn("models not released", "error", err)
		}
	}()
	app := ui.CreateApp(loop, cam, cfg, configPath, logger)

	go func() {
		<-ctx.Done()
		fyne.Do(app.Shutdown)
	}()

	logger.Info("starting user interface", "camera", cfg.Camera.Backend, "detector", cfg.Detector.Backend)
	app.Run()

	return nil
}
