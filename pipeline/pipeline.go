package pipeline

import (
	"context"

	"github.com/LdDl/blobtrack/mot"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// ErrSourceClosed is returned by FrameSource when there are no frames left
var ErrSourceClosed = errors.New("frame source closed")

// FrameSource yields BGR frames
type FrameSource interface {
	Read(frame *gocv.Mat) error
	Close() error
}

// Detector turns frame into detections
type Detector interface {
	Detect(frame gocv.Mat) ([]mot.Detection, error)
}

// Renderer draws tracking state on frame in place
type Renderer interface {
	Draw(frame *gocv.Mat, state mot.State)
}

// Sink consumes tracking state after every frame. Sinks must not modify the state
type Sink interface {
	Record(frameIdx int, state mot.State) error
}

// Publisher hands state over to readers living on other goroutines
type Publisher interface {
	Publish(frameIdx int, nextID int, state mot.State)
}

// Display shows annotated frames. Show returns true when user asked to stop
type Display interface {
	Show(frame gocv.Mat) bool
	Close() error
}

// FrameWriter persists annotated frames
type FrameWriter interface {
	Write(frame gocv.Mat) error
	Close() error
}

// Option configures Pipeline
type Option func(*Pipeline)

// WithRenderer draws tracks on every frame before it is shown or written
func WithRenderer(renderer Renderer) Option {
	return func(p *Pipeline) {
		p.renderer = renderer
	}
}

// WithSink adds state consumer
func WithSink(sink Sink) Option {
	return func(p *Pipeline) {
		p.sinks = append(p.sinks, sink)
	}
}

// WithPublisher sets snapshot publisher
func WithPublisher(publisher Publisher) Option {
	return func(p *Pipeline) {
		p.publisher = publisher
	}
}

// WithDisplay sets on-screen output
func WithDisplay(display Display) Option {
	return func(p *Pipeline) {
		p.display = display
	}
}

// WithWriter sets annotated video output
func WithWriter(writer FrameWriter) Option {
	return func(p *Pipeline) {
		p.writer = writer
	}
}

// Pipeline runs source -> detector -> tracker -> renderer -> outputs for every frame.
// It owns the tracker, so Run must not be called concurrently
type Pipeline struct {
	source    FrameSource
	detector  Detector
	tracker   *mot.Tracker
	renderer  Renderer
	sinks     []Sink
	publisher Publisher
	display   Display
	writer    FrameWriter
	logger    *zap.SugaredLogger
	frames    int
}

// New creates pipeline
func New(source FrameSource, detector Detector, tracker *mot.Tracker, logger *zap.SugaredLogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		detector: detector,
		tracker:  tracker,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Frames returns number of processed frames
func (p *Pipeline) Frames() int {
	return p.frames
}

// Tracker returns underlying tracker
func (p *Pipeline) Tracker() *mot.Tracker {
	return p.tracker
}

// Run processes frames until the source is exhausted, the display asks to quit or ctx is cancelled.
// Cancellation is reported as ctx.Err(); the other two stop conditions return nil
func (p *Pipeline) Run(ctx context.Context) error {
	frame := gocv.NewMat()
	defer frame.Close()

	for {
		select {
		case <-ctx.Done():
			p.logger.Infow("interrupted", "frames", p.frames)
			return ctx.Err()
		default:
		}

		err := p.source.Read(&frame)
		if err != nil {
			if errors.Is(err, ErrSourceClosed) {
				p.logger.Infow("end of stream", "frames", p.frames)
				return nil
			}
			return errors.Wrapf(err, "can't read frame %d", p.frames)
		}

		quit, err := p.step(&frame)
		if err != nil {
			return err
		}
		p.frames++
		if quit {
			p.logger.Infow("stopped by user", "frames", p.frames)
			return nil
		}
	}
}

func (p *Pipeline) step(frame *gocv.Mat) (bool, error) {
	frameIdx := p.frames

	detections, err := p.detector.Detect(*frame)
	if err != nil {
		return false, errors.Wrapf(err, "can't detect objects on frame %d", frameIdx)
	}

	prevNextID := p.tracker.NextID()
	prevIDs := p.tracker.Objects.IDs()
	p.tracker.MatchObjects(detections)
	state := p.tracker.Objects

	p.logger.Debugw("frame processed",
		"frame", frameIdx,
		"detections", len(detections),
		"live", len(state),
		"created", p.tracker.NextID()-prevNextID,
		"evicted", countEvicted(prevIDs, state),
	)

	for _, sink := range p.sinks {
		if err := sink.Record(frameIdx, state); err != nil {
			return false, errors.Wrapf(err, "can't record frame %d", frameIdx)
		}
	}
	if p.publisher != nil {
		p.publisher.Publish(frameIdx, p.tracker.NextID(), state)
	}

	if p.renderer != nil {
		p.renderer.Draw(frame, state)
	}
	if p.writer != nil {
		if err := p.writer.Write(*frame); err != nil {
			return false, errors.Wrapf(err, "can't write frame %d", frameIdx)
		}
	}
	if p.display != nil {
		return p.display.Show(*frame), nil
	}
	return false, nil
}

func countEvicted(prevIDs []int, state mot.State) int {
	evicted := 0
	for _, id := range prevIDs {
		if _, ok := state[id]; !ok {
			evicted++
		}
	}
	return evicted
}
