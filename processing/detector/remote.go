package processing

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"facedetect/internal/models"
)

// RemoteDetector offloads face detection to a websocket server. Frames are
// sent as JPEG; the server answers with a JSON list of normalized boxes.
// Detect never waits for the network: it offers the frame and returns the
// latest answer received so far.
type RemoteDetector struct {
	serverURL  string
	retryDelay time.Duration
	logger     *slog.Logger

	InputFrames chan image.Image

	stopOnce sync.Once
	stopChan chan struct{}

	mu          sync.RWMutex
	lastResults []models.DetectionResult
}

func NewRemoteDetector(host string, retryDelay time.Duration, logger *slog.Logger) *RemoteDetector {
	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}

	return &RemoteDetector{
		serverURL:   u.String(),
		retryDelay:  retryDelay,
		logger:      logger.With("component", "remote_detector"),
		InputFrames: make(chan image.Image, 5),
		stopChan:    make(chan struct{}),
	}
}

func (d *RemoteDetector) Start() {
	go d.runLoop()
}

func (d *RemoteDetector) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
}

func (d *RemoteDetector) Close() error {
	d.Stop()
	return nil
}

func (d *RemoteDetector) Detect(gray *image.Gray) ([]image.Rectangle, error) {
	select {
	case d.InputFrames <- gray:
	default:
	}

	d.mu.RLock()
	results := d.lastResults
	d.mu.RUnlock()

	b := gray.Bounds()
	rects := make([]image.Rectangle, 0, len(results))

	for _, res := range results {
		if r, ok := res.Rect(b.Dx(), b.Dy()); ok {
			rects = append(rects, r.Add(b.Min))
		}
	}

	return rects, nil
}

func (d *RemoteDetector) runLoop() {
	for {
		select {
		case <-d.stopChan:
			return
		default:
		}

		d.logger.Info("connecting to detector server", "url", d.serverURL)
		conn, _, err := websocket.DefaultDialer.Dial(d.serverURL, nil)

		if err != nil {
			d.logger.Warn("connection failed", "error", err, "retry_in", d.retryDelay)

			select {
			case <-time.After(d.retryDelay):
			case <-d.stopChan:
				return
			}
			continue
		}

		d.logger.Info("connected to detection server")

		err = d.serve(conn)
		conn.Close()

		if err == nil {
			return
		}
		d.logger.Warn("connection lost", "error", err)
	}
}

// serve pumps frames and results over one connection. It returns nil only
// when the detector was stopped.
func (d *RemoteDetector) serve(conn *websocket.Conn) error {
	errChan := make(chan error, 2)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case img := <-d.InputFrames:
				var buf bytes.Buffer
				if err := jpeg.Encode(&buf, img, nil); err != nil {
					d.logger.Warn("JPEG encode error", "error", err)
					continue
				}

				if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
					errChan <- err
					return
				}
			}
		}
	}()

	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				errChan <- err
				return
			}

			var results []models.DetectionResult
			if err := json.Unmarshal(message, &results); err != nil {
				d.logger.Warn("JSON decode error", "error", err)
				continue
			}

			d.mu.Lock()
			d.lastResults = results
			d.mu.Unlock()
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-d.stopChan:
		return nil
	}
}
