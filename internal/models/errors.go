package models

import "fmt"

type VisionError struct {
	Code    string
	Message string
	Err     error
}

func (e *VisionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *VisionError) Unwrap() error {
	return e.Err
}

// Is matches any VisionError carrying the same code, so wrapped copies made
// by WithError still satisfy errors.Is against the predefined values.
func (e *VisionError) Is(target error) bool {
	t, ok := target.(*VisionError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *VisionError) WithError(err error) *VisionError {
	return &VisionError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Pre-defined errors
var (
	ErrModelLoad = &VisionError{
		Code:    "MODEL_LOAD",
		Message: "failed to load model",
	}

	ErrCameraOpen = &VisionError{
		Code:    "CAMERA_OPEN",
		Message: "failed to open camera",
	}

	ErrInference = &VisionError{
		Code:    "INFERENCE",
		Message: "inference failed",
	}

	ErrAlreadyRunning = &VisionError{
		Code:    "ALREADY_RUNNING",
		Message: "detection loop is already running",
	}
)
