package docx

import "math"

// Length is a distance in English Metric Units, the unit DrawingML uses for
// extents.
type Length int64

const (
	EMU        Length = 1
	Point      Length = 12700
	Centimeter Length = 360000
	Inch       Length = 914400
)

// Cm returns a Length of v centimeters.
func Cm(v float64) Length {
	return Length(math.Round(v * float64(Centimeter)))
}

// Cm returns the length in centimeters.
func (l Length) Cm() float64 {
	return float64(l) / float64(Centimeter)
}

// EMU returns the length as an integer number of EMUs.
func (l Length) EMU() int64 {
	return int64(l)
}
