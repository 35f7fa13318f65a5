package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"facedetect/processing/capture"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List camera devices usable with the ffmpeg backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cameras, err := capture.ListCameras()
		if err != nil {
			return err
		}

		if len(cameras) == 0 {
			fmt.Println("No cameras found.")
			return nil
		}

		for _, c := range cameras {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
