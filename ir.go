package lblcount

// The intermediate annotation metadata representation.

import (
	"errors"
	"fmt"
	"math"
)

// Depth is the channel depth recorded for every image. The source schema does not carry it.
const Depth = 3

// Annotation is the intermediate representation of one annotated image.
type Annotation struct {
	Filename string   // The image path as recorded in the label file.
	Objects  []Object // The labelled shapes, in file order.
	Size     Size
}

// Size is the image size.
type Size struct {
	Width  int
	Height int
	Depth  int
}

// Object is a single labelled shape within an Annotation.
type Object struct {
	BBox      BBox
	Difficult bool
	Mask      Mask    // Only valid for polygon shapes.
	Name      string  // The label.
	Polygon   []Point // The raw outline, nil unless the shape is a polygon.
}

// IsPolygon reports whether o was derived from a polygon shape.
func (o Object) IsPolygon() bool {
	return o.Mask.Valid
}

// BBox is an axis-aligned bounding box in integer pixel coordinates.
type BBox struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width is the box width.
func (b BBox) Width() int {
	return b.Right - b.Left
}

// Height is the box height.
func (b BBox) Height() int {
	return b.Bottom - b.Top
}

// Mask holds the colour index of a polygon shape. Colour 0 is reserved for the background, so
// shapes are numbered from 1 in file order.
type Mask struct {
	Color int
	Valid bool // Valid is true if the shape is a polygon.
}

// Point is a 2D point in image coordinates.
type Point struct {
	X float64
	Y float64
}

var (
	errNoPoints    = errors.New("shape has no points")
	errCoordsRange = errors.New("coordinate out of integer range")
)

// truncate converts v to an int, truncating toward zero. Values whose integer part does not fit
// in an int are an error.
func truncate(v float64) (int, error) {
	t := math.Trunc(v)
	// -MinInt is a power of two and exact as a float64, unlike MaxInt.
	if !(t >= float64(math.MinInt) && t < -float64(math.MinInt)) {
		return 0, fmt.Errorf("%w: %v", errCoordsRange, v)
	}
	return int(t), nil
}

// bboxFromPoints returns the envelope of points. Coordinates are truncated toward zero, not
// rounded.
func bboxFromPoints(points []Point) (BBox, error) {
	if len(points) == 0 {
		return BBox{}, errNoPoints
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	var bbox BBox
	for _, c := range []struct {
		dst *int
		v   float64
	}{
		{&bbox.Left, minX}, {&bbox.Top, minY}, {&bbox.Right, maxX}, {&bbox.Bottom, maxY},
	} {
		var err error
		if *c.dst, err = truncate(c.v); err != nil {
			return BBox{}, err
		}
	}

	return bbox, nil
}
