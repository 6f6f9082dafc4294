package detector

import (
	"image"
	"math"

	"github.com/LdDl/blobtrack/mot"
)

// Circularity returns 4π·area/perimeter². Degenerate contour with zero perimeter has circularity 0
func Circularity(area, perimeter float64) float64 {
	if perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * (area / (perimeter * perimeter))
}

// ClassifyShape picks shape of a contour and computes its size.
//
// vertices is number of vertices of the polygonal approximation, bbox is the bounding rectangle
// and radius is the radius of the minimum enclosing circle. 4-vertex contour is a rectangle sized
// by its bounding box area; otherwise contour with circularity above circularityThreshold is a circle
// sized by π·radius²; everything else is irregular and sized by contour area.
func ClassifyShape(vertices int, area, perimeter float64, bbox image.Rectangle, radius, circularityThreshold float64) (mot.Shape, float64) {
	if vertices == 4 {
		return mot.ShapeRectangle, float64(bbox.Dx() * bbox.Dy())
	}
	if Circularity(area, perimeter) > circularityThreshold {
		return mot.ShapeCircle, math.Trunc(math.Pi * radius * radius)
	}
	return mot.ShapeIrregular, math.Trunc(area)
}
