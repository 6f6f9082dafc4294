package mot

import (
	"image/color"
)

// TrackedObject is a persistent identity matched across frames.
type TrackedObject struct {
	ID     int   `json:"id"`
	Center Point `json:"center"`
	// Successive matched centers, oldest first. Never empty
	History []Point `json:"history"`
	// Number of consecutive frames without a match
	Age          int          `json:"age"`
	ColorHistory []color.RGBA `json:"color_history"`
	ShapeHistory []Shape      `json:"shape_history"`
}

func newTrackedObject(id int, detection Detection) *TrackedObject {
	return &TrackedObject{
		ID:           id,
		Center:       detection.Center,
		History:      []Point{detection.Center},
		Age:          0,
		ColorHistory: []color.RGBA{detection.Color},
		ShapeHistory: []Shape{detection.Shape},
	}
}

// update applies matched detection: replaces center, resets age and extends histories.
// maxTrackLen <= 0 means histories are not truncated
func (object *TrackedObject) update(detection Detection, maxTrackLen int) {
	object.Center = detection.Center
	object.Age = 0
	object.History = append(object.History, detection.Center)
	object.ColorHistory = append(object.ColorHistory, detection.Color)
	object.ShapeHistory = append(object.ShapeHistory, detection.Shape)
	if maxTrackLen > 0 {
		object.History = truncateOldest(object.History, maxTrackLen)
		object.ColorHistory = truncateOldest(object.ColorHistory, maxTrackLen)
		object.ShapeHistory = truncateOldest(object.ShapeHistory, maxTrackLen)
	}
}

// Clone returns deep copy of the object
func (object *TrackedObject) Clone() *TrackedObject {
	cp := *object
	cp.History = append([]Point(nil), object.History...)
	cp.ColorHistory = append([]color.RGBA(nil), object.ColorHistory...)
	cp.ShapeHistory = append([]Shape(nil), object.ShapeHistory...)
	return &cp
}

// LastColor returns most recent color sample
func (object *TrackedObject) LastColor() color.RGBA {
	if len(object.ColorHistory) == 0 {
		return color.RGBA{}
	}
	return object.ColorHistory[len(object.ColorHistory)-1]
}

// LastShape returns most recent shape sample
func (object *TrackedObject) LastShape() Shape {
	if len(object.ShapeHistory) == 0 {
		return ShapeIrregular
	}
	return object.ShapeHistory[len(object.ShapeHistory)-1]
}

func truncateOldest[T any](values []T, maxLen int) []T {
	if len(values) <= maxLen {
		return values
	}
	return values[len(values)-maxLen:]
}
