package hsv

import (
	"image"
	"sync"

	"github.com/anthonynsimon/bild/parallel"
)

// Count returns, for each range, the number of pixels of img inside rect
// whose HSV value falls in that range. rect is clipped to the image bounds;
// an empty intersection yields all zeros.
func Count(img image.Image, rect image.Rectangle, ranges ...Range) []int {
	counts := make([]int, len(ranges))
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() || len(ranges) == 0 {
		return counts
	}

	var mu sync.Mutex
	parallel.Line(rect.Dy(), func(start, end int) {
		local := make([]int, len(ranges))
		for y := rect.Min.Y + start; y < rect.Min.Y+end; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				c := FromColor(img.At(x, y))
				for i, r := range ranges {
					if r.Contains(c) {
						local[i]++
					}
				}
			}
		}
		mu.Lock()
		for i, n := range local {
			counts[i] += n
		}
		mu.Unlock()
	})
	return counts
}

// Coverage is the share of a region covered by one range.
type Coverage struct {
	Name       string  `json:"name"`
	Pixels     int     `json:"pixels"`
	Percentage float64 `json:"percentage"`
}

// MeasureCoverage reports Count as percentages of the clipped region area.
func MeasureCoverage(img image.Image, rect image.Rectangle, ranges ...Range) []Coverage {
	counts := Count(img, rect, ranges...)
	area := rect.Intersect(img.Bounds())
	total := area.Dx() * area.Dy()

	out := make([]Coverage, len(ranges))
	for i, r := range ranges {
		out[i] = Coverage{Name: r.Name, Pixels: counts[i]}
		if total > 0 {
			out[i].Percentage = float64(counts[i]) / float64(total) * 100
		}
	}
	return out
}

// Classify reports the traffic light color of the pixels inside rect.
func Classify(img image.Image, rect image.Rectangle) Signal {
	c := Count(img, rect, TrafficRed, TrafficGreen, TrafficYellow)
	return Dominant(c[0], c[1], c[2])
}
