package traffic

import (
	"fmt"
	"image"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Candidate is one decoded box before suppression.
type Candidate struct {
	Box   image.Rectangle
	Score float32
	Class int
}

// DecodeOptions filters and scales raw YOLOv8 rows.
type DecodeOptions struct {
	// ClassID is the only class kept. Negative keeps every class.
	ClassID int

	// MinScore drops candidates whose best class score does not exceed it.
	MinScore float32

	// ScaleX and ScaleY map network input pixels to frame pixels.
	ScaleX, ScaleY float64
}

// Decode reads a YOLOv8 output tensor of shape [1, attrs, n], flattened in
// row-major order. The first four attributes are center-x, center-y, width
// and height; the rest are per-class scores. Each anchor takes its
// highest-scoring class.
func Decode(data []float32, attrs, n int, opts DecodeOptions) ([]Candidate, error) {
	if attrs < 5 {
		return nil, fmt.Errorf("traffic: output has %d attributes, need at least 5", attrs)
	}
	if len(data) < attrs*n {
		return nil, fmt.Errorf("traffic: output has %d values, want %d", len(data), attrs*n)
	}

	classes := attrs - 4
	scores := make([]float64, classes)

	var out []Candidate
	for i := 0; i < n; i++ {
		for c := 0; c < classes; c++ {
			scores[c] = float64(data[(4+c)*n+i])
		}
		best := floats.MaxIdx(scores)
		if opts.ClassID >= 0 && best != opts.ClassID {
			continue
		}
		score := float32(scores[best])
		if score <= opts.MinScore {
			continue
		}

		cx := float64(data[i])
		cy := float64(data[n+i])
		w := float64(data[2*n+i])
		h := float64(data[3*n+i])

		out = append(out, Candidate{
			Box: image.Rect(
				int((cx-w/2)*opts.ScaleX),
				int((cy-h/2)*opts.ScaleY),
				int((cx+w/2)*opts.ScaleX),
				int((cy+h/2)*opts.ScaleY),
			),
			Score: score,
			Class: best,
		})
	}
	return out, nil
}

// IoU is the intersection-over-union of two boxes, 0 when either is empty.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	ia := area(inter)
	union := area(a) + area(b) - ia
	if union <= 0 {
		return 0
	}
	return ia / union
}

func area(r image.Rectangle) float64 {
	return float64(r.Dx()) * float64(r.Dy())
}

// Suppress runs greedy non-maximum suppression: candidates are visited in
// descending score order and kept unless they overlap an already kept box
// by more than threshold IoU.
func Suppress(cands []Candidate, threshold float64) []Candidate {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	kept := make([]Candidate, 0, len(sorted))
	for _, c := range sorted {
		overlaps := false
		for _, k := range kept {
			if IoU(c.Box, k.Box) > threshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}
