// Package units defines the unit kinds carried by parameters and derived
// values. All lengths are millimeters and all angles are degrees; derived
// areas and volumes are expressed in mm² and mm³ but share the Length kind's
// dimension checks only through explicit formula declarations, never by
// silent coercion.
package units

import "fmt"

// Kind is the unit category of a numeric quantity.
type Kind string

const (
	// Length is millimeters (areas mm², volumes mm³ use Area/Volume below).
	Length Kind = "mm"
	// Area is square millimeters.
	Area Kind = "mm2"
	// Volume is cubic millimeters.
	Volume Kind = "mm3"
	// Angle is degrees.
	Angle Kind = "deg"
	// Ratio is a dimensionless quotient of like quantities.
	Ratio Kind = "ratio"
	// Dimensionless is a bare count or coefficient.
	Dimensionless Kind = "1"
)

// Valid reports whether k is one of the declared unit kinds.
func (k Kind) Valid() bool {
	switch k {
	case Length, Area, Volume, Angle, Ratio, Dimensionless:
		return true
	}
	return false
}

// String returns the unit suffix used in reports (e.g. "16 mm").
func (k Kind) String() string { return string(k) }

// Format renders a value with its unit suffix.
// Ratio and dimensionless values are rendered bare.
func Format(value float64, k Kind) string {
	switch k {
	case Ratio, Dimensionless:
		return fmt.Sprintf("%.4g", value)
	default:
		return fmt.Sprintf("%.4g %s", value, k)
	}
}
