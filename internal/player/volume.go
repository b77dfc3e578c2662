package player

import "math"

const (
	VolumeCurveExponent = 0.5
	MinVolumeDB         = -10.0
)

// volumeToExponent maps a linear volume in [0,1] to the exponent used by
// effects.Volume with base 2, so that the slider feels even to the ear.
func volumeToExponent(v float64) float64 {
	if v <= 0 {
		return MinVolumeDB
	}
	if v >= 1 {
		return 0
	}

	adjusted := math.Pow(v, VolumeCurveExponent)
	return (1.0 - adjusted) * MinVolumeDB
}
