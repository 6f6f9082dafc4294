package mot

import (
	"image"

	"gonum.org/v1/gonum/floats"
)

// Rectangle is axis-aligned box in pixel coordinates
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Center returns center of the rectangle
func (rect Rectangle) Center() Point {
	return Point{
		X: rect.X + rect.Width/2.0,
		Y: rect.Y + rect.Height/2.0,
	}
}

// Area returns width*height
func (rect Rectangle) Area() float64 {
	return rect.Width * rect.Height
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

// ImagePoint truncates point to integer pixel coordinates
func (p Point) ImagePoint() image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

// DistanceTo returns Euclidean distance between two points
func (p Point) DistanceTo(other Point) float64 {
	return euclideanDistance(p, other)
}

func euclideanDistance(p1, p2 Point) float64 {
	return floats.Distance([]float64{p1.X, p1.Y}, []float64{p2.X, p2.Y}, 2)
}
