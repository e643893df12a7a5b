package curves

import (
	"errors"
	"fmt"
)

var ErrBadCurve = errors.New("malformed curve")

// Curve is a stress–strain backbone as produced by the ConstitutiveRelationships
// service. Attributes echoes the parameters the service actually used,
// including its own defaults for anything the request left unset.
type Curve struct {
	Name       string             `json:"name"`
	Color      string             `json:"color"`
	Strain     []float64          `json:"strain"`
	Stress     []float64          `json:"stress"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

func (c Curve) Len() int { return len(c.Strain) }

func (c Curve) Check() error {
	if len(c.Strain) != len(c.Stress) {
		return fmt.Errorf("%w: %d strains vs %d stresses", ErrBadCurve, len(c.Strain), len(c.Stress))
	}
	if len(c.Strain) == 0 {
		return fmt.Errorf("%w: no points", ErrBadCurve)
	}
	return nil
}
