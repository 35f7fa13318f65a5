//go:build gocv
// +build gocv

package processing

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"facedetect/internal/models"
)

var (
	genderInputSize = image.Pt(227, 227)
	genderMean      = gocv.NewScalar(104, 177, 123, 0)
)

type CascadeDetector struct {
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
}

// NewCascadeDetector loads a Haar cascade. A zero scaleFactor keeps OpenCV's
// default detection parameters.
func NewCascadeDetector(path string, scaleFactor float64, minNeighbors int) (*CascadeDetector, error) {
	if err := checkModelFile(path); err != nil {
		return nil, err
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, models.ErrModelLoad.WithError(fmt.Errorf("invalid cascade file: %s", path))
	}

	return &CascadeDetector{
		classifier:   classifier,
		scaleFactor:  scaleFactor,
		minNeighbors: minNeighbors,
	}, nil
}

func (d *CascadeDetector) Detect(gray *image.Gray) ([]image.Rectangle, error) {
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, models.ErrInference.WithError(err)
	}
	defer mat.Close()

	var rects []image.Rectangle
	if d.scaleFactor == 0 {
		rects = d.classifier.DetectMultiScale(mat)
	} else {
		rects = d.classifier.DetectMultiScaleWithParams(mat, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{})
	}

	// the Mat starts at the origin, bring boxes back to the image's bounds
	origin := gray.Bounds().Min
	for i := range rects {
		rects[i] = rects[i].Add(origin)
	}

	return rects, nil
}

func (d *CascadeDetector) Close() error {
	return d.classifier.Close()
}

type GenderNet struct {
	net gocv.Net
}

func NewGenderNet(proto, weights string) (*GenderNet, error) {
	if err := checkModelFile(proto); err != nil {
		return nil, err
	}
	if err := checkModelFile(weights); err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromCaffe(proto, weights)
	if net.Empty() {
		net.Close()
		return nil, models.ErrModelLoad.WithError(fmt.Errorf("error reading network model from: %s %s", proto, weights))
	}

	return &GenderNet{net: net}, nil
}

func (g *GenderNet) Classify(face *image.RGBA) ([]float32, error) {
	// ImageToMatRGB lays pixels out in OpenCV's BGR order, which is what the
	// Caffe model was trained on, so the blob is built without swapping.
	mat, err := gocv.ImageToMatRGB(face)
	if err != nil {
		return nil, models.ErrInference.WithError(err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0, genderInputSize, genderMean, false, false)
	defer blob.Close()

	g.net.SetInput(blob, "")

	preds := g.net.Forward("")
	defer preds.Close()

	if preds.Empty() {
		return nil, models.ErrInference.WithError(fmt.Errorf("empty classifier output"))
	}

	scores := make([]float32, preds.Total())
	for i := range scores {
		scores[i] = preds.GetFloatAt(0, i)
	}

	return scores, nil
}

func (g *GenderNet) Close() error {
	return g.net.Close()
}
