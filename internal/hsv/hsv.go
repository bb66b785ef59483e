package hsv

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a color in OpenCV 8-bit HSV scale.
type HSV struct {
	H uint8 `json:"h" yaml:"h"` // Hue: 0-180
	S uint8 `json:"s" yaml:"s"` // Saturation: 0-255
	V uint8 `json:"v" yaml:"v"` // Value: 0-255
}

func (c HSV) String() string {
	return fmt.Sprintf("[%d,%d,%d]", c.H, c.S, c.V)
}

// FromColor converts any color to OpenCV-scale HSV.
//
// Fully transparent colors convert as black, which is what OpenCV sees for a
// BGR frame with no alpha channel.
func FromColor(c color.Color) HSV {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return HSV{}
	}
	h, s, v := cf.Hsv()
	return HSV{
		H: hue(h),
		S: scale(s*255, 255),
		V: scale(v*255, 255),
	}
}

// hue maps degrees to OpenCV's 0-179 scale. Hues that round up to 180
// wrap to 0, as cvtColor does.
func hue(deg float64) uint8 {
	h := math.Mod(math.Round(deg/2), 180)
	if h < 0 {
		h += 180
	}
	return uint8(h)
}

func scale(f, max float64) uint8 {
	f = math.Round(f)
	if f < 0 {
		return 0
	}
	if f > max {
		return uint8(max)
	}
	return uint8(f)
}

// Range is an inclusive HSV interval.
type Range struct {
	Name  string `json:"name" yaml:"name"`
	Lower HSV    `json:"lower" yaml:"lower"`
	Upper HSV    `json:"upper" yaml:"upper"`
}

// Contains reports whether c lies inside r on every channel.
func (r Range) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// Validate checks that the lower bound does not exceed the upper bound.
func (r Range) Validate() error {
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("range %q: lower %s exceeds upper %s", r.Name, r.Lower, r.Upper)
	}
	if r.Upper.H > 180 {
		return fmt.Errorf("range %q: hue %d above 180", r.Name, r.Upper.H)
	}
	return nil
}

// Bounds returns the range as two float quadruples, the layout gocv.Scalar
// expects.
func (r Range) Bounds() (lower, upper [4]float64) {
	lower = [4]float64{float64(r.Lower.H), float64(r.Lower.S), float64(r.Lower.V), 0}
	upper = [4]float64{float64(r.Upper.H), float64(r.Upper.S), float64(r.Upper.V), 0}
	return lower, upper
}
