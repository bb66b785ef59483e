package steer

import "image"

// Direction is a steering hint. The zero value means no obstacle was found.
type Direction string

const (
	None        Direction = ""
	TurnLeft    Direction = "Turn Left"
	TurnRight   Direction = "Turn Right"
	MoveForward Direction = "Move Forward"
)

// Decide maps a centroid x coordinate to a direction. The frame center is
// frameWidth/2 using integer division; positions within deadBand pixels of it
// (inclusive) keep moving forward.
func Decide(cx, frameWidth, deadBand int) Direction {
	center := frameWidth / 2
	switch {
	case cx < center-deadBand:
		return TurnLeft
	case cx > center+deadBand:
		return TurnRight
	default:
		return MoveForward
	}
}

// Moments holds the spatial moments of a closed polygon.
type Moments struct {
	M00, M10, M01 float64
}

// PolygonMoments computes the area moments of the polygon traced by pts,
// closing it from the last point back to the first. These match the moments
// OpenCV reports for a contour. The result is normalised to a positive area
// regardless of winding order.
func PolygonMoments(pts []image.Point) Moments {
	if len(pts) < 3 {
		return Moments{}
	}

	var a00, a10, a01 float64
	prev := pts[len(pts)-1]
	for _, p := range pts {
		x0, y0 := float64(prev.X), float64(prev.Y)
		x1, y1 := float64(p.X), float64(p.Y)
		cross := x0*y1 - x1*y0
		a00 += cross
		a10 += cross * (x0 + x1)
		a01 += cross * (y0 + y1)
		prev = p
	}

	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Centroid returns the centroid of the polygon, truncated toward zero. ok is
// false for degenerate polygons with zero area.
func Centroid(pts []image.Point) (c image.Point, ok bool) {
	m := PolygonMoments(pts)
	if m.M00 == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(m.M10/m.M00), int(m.M01/m.M00)), true
}
