package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the models and open the camera, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cam, err := openPipeline()
		if err != nil {
			return err
		}
		defer m.Close()
		defer cam.Close()

		if _, ok := cam.Read(); !ok {
			return fmt.Errorf("camera %q opened but produced no frame", cfg.Camera.DeviceID)
		}

		fmt.Println("models loaded, camera ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
