package mot

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
)

// Shape is categorical tag assigned to a blob by the detector
type Shape uint8

const (
	// ShapeIrregular is any contour which is neither rectangle nor circle
	ShapeIrregular Shape = iota
	// ShapeRectangle is a contour approximated by 4-vertex polygon
	ShapeRectangle
	// ShapeCircle is a contour with circularity above the detector threshold
	ShapeCircle
)

func (shape Shape) String() string {
	switch shape {
	case ShapeIrregular:
		return "irregular"
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	default:
		return fmt.Sprintf("Shape(%d)", uint8(shape))
	}
}

// MarshalText implements encoding.TextMarshaler
func (shape Shape) MarshalText() ([]byte, error) {
	return []byte(shape.String()), nil
}

// ParseShape parses shape from its string representation
func ParseShape(s string) (Shape, error) {
	switch s {
	case "irregular":
		return ShapeIrregular, nil
	case "rectangle":
		return ShapeRectangle, nil
	case "circle":
		return ShapeCircle, nil
	default:
		return ShapeIrregular, errors.Errorf("unknown shape '%s'", s)
	}
}

// Detection is a single frame's observation of a blob. It has no identity.
type Detection struct {
	Center Point
	// Area-like magnitude. Used by the detector for filtering only
	Size  float64
	Shape Shape
	// Mean color under the blob's mask
	Color color.RGBA
	BBox  Rectangle
}

// NewDetection creates detection with center only. Useful when shape and color are irrelevant.
func NewDetection(x, y float64) Detection {
	return Detection{
		Center: Point{X: x, Y: y},
		Shape:  ShapeIrregular,
	}
}
