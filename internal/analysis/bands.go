package analysis

import "math"

// band is one step of a band table
type band struct {
	threshold float64
	points    int
	label     string
}

// floorBand returns the first band whose threshold the value reaches.
// Bands are ordered from highest threshold to lowest; the last is the catch-all.
func floorBand(value float64, bands []band) band {
	for _, b := range bands[:len(bands)-1] {
		if value >= b.threshold {
			return b
		}
	}
	return bands[len(bands)-1]
}

// ceilingBand returns the first band whose threshold the value does not exceed
func ceilingBand(value float64, bands []band) band {
	for _, b := range bands[:len(bands)-1] {
		if value <= b.threshold {
			return b
		}
	}
	return bands[len(bands)-1]
}

var (
	// shared by grammar and vocabulary richness
	ratioBands = []band{
		{0.9, 10, ""},
		{0.7, 8, ""},
		{0.5, 6, ""},
		{0.3, 4, ""},
		{0, 2, ""},
	}

	semanticBands = []band{
		{0.7, 10, "Excellent semantic match"},
		{0.6, 8, "Good semantic alignment"},
		{0.5, 6, "Moderate semantic match"},
		{0.4, 4, "Fair semantic alignment"},
		{0, 2, "Weak semantic match"},
	}

	fillerBands = []band{
		{3, 15, ""},
		{6, 12, ""},
		{9, 9, ""},
		{12, 6, ""},
		{0, 3, ""},
	}

	positivityBands = []band{
		{0.9, 15, ""},
		{0.7, 12, ""},
		{0.5, 9, ""},
		{0.3, 6, ""},
		{0, 3, ""},
	}
)

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
