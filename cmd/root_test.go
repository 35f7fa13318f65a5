package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"facedetect/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckFailsWithoutModels(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "check", "-c", "missing.json")

	require.ErrorIs(t, err, models.ErrModelLoad)
	require.NotNil(t, cfg)
	require.NotNil(t, logger)
}

func TestInvalidConfigStopsStartup(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"frame_scale": 2}`), 0644))

	_, err := execute(t, "check", "--config", path)

	require.ErrorContains(t, err, "frame_scale")
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")

	require.NoError(t, err)
	require.Contains(t, out, Version)
}
