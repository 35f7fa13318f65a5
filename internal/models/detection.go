package models

import "image"

// DetectionResult is one box reported by the remote detection server.
// Box holds [y1, x1, y2, x2] normalized to the frame size.
type DetectionResult struct {
	Label      string    `json:"label"`
	Confidence float32   `json:"confidence"`
	Box        []float32 `json:"box"`
}

type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts a normalized detection into pixel coordinates of a w×h frame.
// ok is false when the result does not carry a four element box.
func (r DetectionResult) Rect(w, h int) (image.Rectangle, bool) {
	if len(r.Box) != 4 {
		return image.Rectangle{}, false
	}

	fw, fh := float32(w), float32(h)

	b := Box{
		Y1: int(r.Box[0] * fh),
		X1: int(r.Box[1] * fw),
		Y2: int(r.Box[2] * fh),
		X2: int(r.Box[3] * fw),
	}

	return image.Rect(b.X1, b.Y1, b.X2, b.Y2), true
}

// Face is the annotation produced for one detected face in one frame.
// Box and Eyes are in full-frame coordinates.
type Face struct {
	Box        image.Rectangle
	Eyes       []image.Rectangle
	Gender     Gender
	Classified bool
}
