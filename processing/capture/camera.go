package capture

import (
	"image"
)

// Camera yields frames in display (RGBA) channel order. Read reports false
// once the source is exhausted, failed or closed; callers stop reading then.
type Camera interface {
	Read() (*image.RGBA, bool)
	Close() error
}
