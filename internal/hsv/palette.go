package hsv

// Traffic light ranges.
var (
	TrafficRed = Range{
		Name:  "red",
		Lower: HSV{0, 100, 100},
		Upper: HSV{10, 255, 255},
	}
	TrafficGreen = Range{
		Name:  "green",
		Lower: HSV{40, 50, 50},
		Upper: HSV{90, 255, 255},
	}
	TrafficYellow = Range{
		Name:  "yellow",
		Lower: HSV{20, 100, 100},
		Upper: HSV{40, 255, 255},
	}
)

// Red wraps around hue 0, so obstacle detection uses two ranges whose masks
// are added together. The saturation and value floors are lower than the
// traffic palette to tolerate dim lighting.
var (
	ObstacleRedLow = Range{
		Name:  "obstacle-red-low",
		Lower: HSV{0, 120, 70},
		Upper: HSV{10, 255, 255},
	}
	ObstacleRedHigh = Range{
		Name:  "obstacle-red-high",
		Lower: HSV{170, 120, 70},
		Upper: HSV{180, 255, 255},
	}
)

// Palette returns every named range, used for coverage reports.
func Palette() []Range {
	return []Range{TrafficRed, TrafficGreen, TrafficYellow, ObstacleRedLow, ObstacleRedHigh}
}

// Signal is the classified state of a traffic light.
type Signal string

const (
	Red     Signal = "Red"
	Green   Signal = "Green"
	Yellow  Signal = "Yellow"
	Unknown Signal = "Unknown"
)

// Dominant picks the signal whose count is strictly larger than both others.
func Dominant(red, green, yellow int) Signal {
	switch {
	case red > green && red > yellow:
		return Red
	case green > red && green > yellow:
		return Green
	case yellow > red && yellow > green:
		return Yellow
	default:
		return Unknown
	}
}
