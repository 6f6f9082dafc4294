package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// WindowName is title of the on-screen window
	WindowName = "Tracked"
	// QuitKey stops processing when pressed in the window
	QuitKey    = 'q'
	defaultFPS = 25.0
)

// VideoSource reads frames from a video file or a camera
type VideoSource struct {
	capture *gocv.VideoCapture
	name    string
}

// OpenFile opens video file
func OpenFile(path string) (*VideoSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open video '%s'", path)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Errorf("can't open video '%s'", path)
	}
	return &VideoSource{capture: capture, name: path}, nil
}

// OpenCamera opens capture device
func OpenCamera(device int) (*VideoSource, error) {
	capture, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open camera %d", device)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Errorf("can't open camera %d", device)
	}
	return &VideoSource{capture: capture, name: fmt.Sprintf("camera %d", device)}, nil
}

// Name returns human readable description of the source
func (source *VideoSource) Name() string {
	return source.name
}

// FPS returns frame rate reported by the backend, or a default when it is unknown
func (source *VideoSource) FPS() float64 {
	fps := source.capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		return defaultFPS
	}
	return fps
}

// Read implements FrameSource
func (source *VideoSource) Read(frame *gocv.Mat) error {
	if ok := source.capture.Read(frame); !ok || frame.Empty() {
		return ErrSourceClosed
	}
	return nil
}

// Close releases capture
func (source *VideoSource) Close() error {
	return source.capture.Close()
}

// VideoFile writes frames into MJPG encoded file. It is opened on the first frame, when frame size is known
type VideoFile struct {
	path   string
	fps    float64
	writer *gocv.VideoWriter
}

// NewVideoFile prepares writer
func NewVideoFile(path string, fps float64) *VideoFile {
	return &VideoFile{path: path, fps: fps}
}

// Write implements FrameWriter
func (file *VideoFile) Write(frame gocv.Mat) error {
	if file.writer == nil {
		writer, err := gocv.VideoWriterFile(file.path, "MJPG", file.fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			return errors.Wrapf(err, "can't create video '%s'", file.path)
		}
		file.writer = writer
	}
	return file.writer.Write(frame)
}

// Close flushes and closes file
func (file *VideoFile) Close() error {
	if file.writer == nil {
		return nil
	}
	return file.writer.Close()
}

// Window shows frames on screen
type Window struct {
	window  *gocv.Window
	delayMs int
}

// NewWindow opens window. delayMs is how long every frame stays on screen while waiting for a key
func NewWindow(delayMs int) *Window {
	return &Window{
		window:  gocv.NewWindow(WindowName),
		delayMs: delayMs,
	}
}

// Show implements Display. A single WaitKey(delayMs) both paces playback and polls
// for QuitKey, so display.delay_ms is the per-frame delay and the key polling window at once
func (w *Window) Show(frame gocv.Mat) bool {
	w.window.IMShow(frame)
	return w.window.WaitKey(w.delayMs)&0xff == QuitKey
}

// Close closes window
func (w *Window) Close() error {
	return w.window.Close()
}
