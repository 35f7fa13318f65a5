package processing

import (
	"time"

	"facedetect/internal/config"
)

func frameInterval(fps uint) time.Duration {
	if fps == 0 {
		fps = config.DefaultTargetFPS
	}
	return time.Second / time.Duration(fps)
}

// frameDelay is the part of the interval an iteration did not use up.
func frameDelay(elapsed, interval time.Duration) time.Duration {
	if d := interval - elapsed; d > 0 {
		return d
	}
	return 0
}
