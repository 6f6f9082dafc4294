package detector

import (
	"image"
	"image/color"

	"github.com/LdDl/blobtrack/mot"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when detector gets empty matrix
var ErrEmptyFrame = errors.New("empty frame")

// Config holds detection parameters
type Config struct {
	// HSV range of background pixels. Everything outside of it is foreground
	HSVLower [3]float64
	HSVUpper [3]float64
	// Blobs with size below MinSize are discarded
	MinSize float64
	// Epsilon of polygonal approximation as a fraction of contour perimeter
	ApproxEpsilon float64
	// Contour with circularity above this value is a circle
	CircularityThreshold float64
}

// DefaultConfig returns parameters for bright blobs on a dark background
func DefaultConfig() Config {
	return Config{
		HSVLower:             [3]float64{0, 0, 0},
		HSVUpper:             [3]float64{180, 255, 30},
		MinSize:              50,
		ApproxEpsilon:        0.04,
		CircularityThreshold: 0.8,
	}
}

// Detector extracts foreground blobs from BGR frames
type Detector struct {
	config Config
}

// New creates detector
func New(config Config) *Detector {
	return &Detector{config: config}
}

// NewDefault creates detector with default parameters
func NewDefault() *Detector {
	return New(DefaultConfig())
}

// Detect returns blobs found in the BGR frame in contour order
func (d *Detector) Detect(frame gocv.Mat) ([]mot.Detection, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}
	mask := d.foregroundMask(frame)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	detections := make([]mot.Detection, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		detection := d.describe(frame, mask, contours, i)
		if detection.Size < d.config.MinSize {
			continue
		}
		detections = append(detections, detection)
	}
	return detections, nil
}

// foregroundMask converts frame to HSV and inverts the background range
func (d *Detector) foregroundMask(frame gocv.Mat) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	lower, upper := d.config.HSVLower, d.config.HSVUpper
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(lower[0], lower[1], lower[2], 0), gocv.NewScalar(upper[0], upper[1], upper[2], 0), &mask)
	gocv.BitwiseNot(mask, &mask)
	return mask
}

func (d *Detector) describe(frame, mask gocv.Mat, contours gocv.PointsVector, idx int) mot.Detection {
	contour := contours.At(idx)

	// rectangle for size and coordinates, circle for dimensions of round blobs
	rect := gocv.BoundingRect(contour)
	cx, cy, radius := gocv.MinEnclosingCircle(contour)
	center := mot.NewPointFrom(image.Pt(int(cx), int(cy)))

	// mean color under this contour only
	single := gocv.Zeros(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	gocv.DrawContours(&single, contours, idx, color.RGBA{R: 255, G: 255, B: 255, A: 0}, -1)
	mean := frame.MeanWithMask(single)
	single.Close()

	area := gocv.ContourArea(contour)
	perimeter := gocv.ArcLength(contour, true)
	approx := gocv.ApproxPolyDP(contour, d.config.ApproxEpsilon*perimeter, true)
	vertices := approx.Size()
	approx.Close()

	shape, size := ClassifyShape(vertices, area, perimeter, rect, float64(radius), d.config.CircularityThreshold)
	return mot.Detection{
		Center: center,
		Size:   size,
		Shape:  shape,
		// frame is BGR
		Color: color.RGBA{R: uint8(mean.Val3), G: uint8(mean.Val2), B: uint8(mean.Val1), A: 255},
		BBox:  mot.NewRectFrom(rect),
	}
}
