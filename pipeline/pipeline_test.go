package pipeline

import (
	"context"
	"testing"

	"github.com/LdDl/blobtrack/api"
	"github.com/LdDl/blobtrack/mot"
	"github.com/LdDl/blobtrack/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

type fakeSource struct {
	frames int
	read   int
	err    error
}

func (source *fakeSource) Read(frame *gocv.Mat) error {
	if source.err != nil && source.read == source.frames {
		return source.err
	}
	if source.read >= source.frames {
		return ErrSourceClosed
	}
	source.read++
	return nil
}

func (source *fakeSource) Close() error { return nil }

// scriptedDetector returns detections of the i-th frame on the i-th call
type scriptedDetector struct {
	frames [][]mot.Detection
	calls  int
}

func (d *scriptedDetector) Detect(frame gocv.Mat) ([]mot.Detection, error) {
	if d.calls >= len(d.frames) {
		return nil, errors.New("no more scripted frames")
	}
	detections := d.frames[d.calls]
	d.calls++
	return detections, nil
}

type countingRenderer struct {
	calls int
	live  []int
}

func (r *countingRenderer) Draw(frame *gocv.Mat, state mot.State) {
	r.calls++
	r.live = append(r.live, len(state))
}

type quitDisplay struct {
	shown  int
	quitAt int
}

func (d *quitDisplay) Show(frame gocv.Mat) bool {
	d.shown++
	return d.shown == d.quitAt
}

func (d *quitDisplay) Close() error { return nil }

type failingSink struct{}

func (failingSink) Record(frameIdx int, state mot.State) error {
	return errors.New("disk full")
}

func movingBlob(frames int) [][]mot.Detection {
	script := make([][]mot.Detection, frames)
	for i := range script {
		script[i] = []mot.Detection{mot.NewDetection(float64(10+5*i), 20)}
	}
	return script
}

func TestRunUntilEndOfStream(t *testing.T) {
	const frames = 5
	renderer := &countingRenderer{}
	archive := storage.NewArchive()
	hub := api.NewStateHub()

	p := New(
		&fakeSource{frames: frames},
		&scriptedDetector{frames: movingBlob(frames)},
		mot.NewTrackerDefault(),
		zap.NewNop().Sugar(),
		WithRenderer(renderer),
		WithSink(archive),
		WithPublisher(hub),
	)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, frames, p.Frames())
	assert.Equal(t, frames, renderer.calls)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, renderer.live)
	assert.Equal(t, frames, archive.Frames())

	require.Equal(t, 1, p.Tracker().Len())
	object := p.Tracker().Objects[1]
	assert.Len(t, object.History, frames)
	assert.Equal(t, mot.NewPoint(30, 20), object.Center)

	snapshot := hub.Get()
	assert.Equal(t, frames-1, snapshot.Frame)
	assert.Equal(t, 2, snapshot.NextID)
	assert.Len(t, snapshot.Objects, 1)
}

func TestRunStopsOnQuitKey(t *testing.T) {
	display := &quitDisplay{quitAt: 2}
	p := New(
		&fakeSource{frames: 10},
		&scriptedDetector{frames: movingBlob(10)},
		mot.NewTrackerDefault(),
		zap.NewNop().Sugar(),
		WithDisplay(display),
	)
	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 2, p.Frames())
	assert.Equal(t, 2, display.shown)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(
		&fakeSource{frames: 10},
		&scriptedDetector{frames: movingBlob(10)},
		mot.NewTrackerDefault(),
		zap.NewNop().Sugar(),
	)
	err := p.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, p.Frames())
}

func TestRunPropagatesErrors(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		sourceErr := errors.New("device unplugged")
		p := New(
			&fakeSource{frames: 1, err: sourceErr},
			&scriptedDetector{frames: movingBlob(1)},
			mot.NewTrackerDefault(),
			zap.NewNop().Sugar(),
		)
		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, sourceErr, errors.Cause(err))
		assert.Equal(t, 1, p.Frames())
	})
	t.Run("detector", func(t *testing.T) {
		p := New(
			&fakeSource{frames: 3},
			&scriptedDetector{frames: movingBlob(1)},
			mot.NewTrackerDefault(),
			zap.NewNop().Sugar(),
		)
		assert.Error(t, p.Run(context.Background()))
		assert.Equal(t, 1, p.Frames())
	})
	t.Run("sink", func(t *testing.T) {
		p := New(
			&fakeSource{frames: 3},
			&scriptedDetector{frames: movingBlob(3)},
			mot.NewTrackerDefault(),
			zap.NewNop().Sugar(),
			WithSink(failingSink{}),
		)
		assert.Error(t, p.Run(context.Background()))
		assert.Equal(t, 0, p.Frames())
	})
}

func TestCountEvicted(t *testing.T) {
	state := mot.State{2: {ID: 2}}
	assert.Equal(t, 2, countEvicted([]int{1, 2, 3}, state))
	assert.Equal(t, 0, countEvicted(nil, state))
}
