package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/LdDl/blobtrack/mot"
	"gocv.io/x/gocv"
)

// Config holds drawing parameters
type Config struct {
	Color        color.RGBA
	Thickness    int
	MarkerRadius int
	FontScale    float64
	// Label position relative to object's center
	LabelOffset image.Point
}

// DefaultConfig returns green trajectories with 5px markers
func DefaultConfig() Config {
	return Config{
		Color:        color.RGBA{R: 0, G: 255, B: 0, A: 0},
		Thickness:    2,
		MarkerRadius: 5,
		FontScale:    0.5,
		LabelOffset:  image.Pt(10, 10),
	}
}

// Renderer draws tracked objects on frames
type Renderer struct {
	config Config
}

// New creates renderer
func New(config Config) *Renderer {
	return &Renderer{config: config}
}

// NewDefault creates renderer with default parameters
func NewDefault() *Renderer {
	return New(DefaultConfig())
}

// Draw plots trajectory, current position and identifier of every object on the frame
func (r *Renderer) Draw(frame *gocv.Mat, state mot.State) {
	for _, object := range state.Sorted() {
		r.drawObject(frame, object)
	}
}

func (r *Renderer) drawObject(frame *gocv.Mat, object *mot.TrackedObject) {
	for i := 1; i < len(object.History); i++ {
		gocv.Line(frame, object.History[i-1].ImagePoint(), object.History[i].ImagePoint(), r.config.Color, r.config.Thickness)
	}
	center := object.Center.ImagePoint()
	// thickness -1 == filled circle
	gocv.Circle(frame, center, r.config.MarkerRadius, r.config.Color, -1)
	gocv.PutText(frame, Label(object.ID), center.Add(r.config.LabelOffset), gocv.FontHersheySimplex, r.config.FontScale, r.config.Color, r.config.Thickness)
}

// Label returns text drawn next to the object
func Label(id int) string {
	return fmt.Sprintf("ID %d", id)
}
