package energy

import (
	"fmt"
	"math"

	"github.com/haskel/runeconomy/internal/physio"
)

// Policy tags a calorimetric formula variant.
type Policy string

const (
	// PolicyNet applies the committee equation to net (run - rest) gas exchange.
	PolicyNet Policy = "net"
	// PolicyBrockway applies Brockway (1987) per row and differences the phase means.
	PolicyBrockway Policy = "brockway"
)

// IsValid checks if the policy is known.
func (p Policy) IsValid() bool {
	switch p {
	case PolicyNet, PolicyBrockway:
		return true
	}
	return false
}

// String returns string representation.
func (p Policy) String() string {
	return string(p)
}

// Model converts gas exchange into metabolic power.
type Model interface {
	// Name returns the model name.
	Name() string

	// Policy returns the policy tag this model implements.
	Policy() Policy

	// Watts converts VO2 and VCO2 rates (mL/min) into metabolic power (W).
	Watts(vo2MlMin, vco2MlMin float64) float64

	// Phases derives mass-normalized rest, run and net power from the
	// steady-state windows of one subject. Empty windows yield NaN fields.
	Phases(rest, run []physio.Sample, massKg float64) (Power, error)
}

// Power holds mass-normalized metabolic power in W/kg.
type Power struct {
	RestWkg float64
	RunWkg  float64
	NetWkg  float64
}

// ValidateMass rejects body masses that cannot normalize power.
func ValidateMass(massKg float64) error {
	if !(massKg > 0) || math.IsInf(massKg, 1) {
		return fmt.Errorf("%w: body_mass_kg must be positive, got %v", physio.ErrInvalidInput, massKg)
	}
	return nil
}

// PerKg divides watts by body mass.
func PerKg(watts, massKg float64) (float64, error) {
	if err := ValidateMass(massKg); err != nil {
		return 0, err
	}
	return watts / massKg, nil
}

func toLitres(mlMin float64) float64 {
	return mlMin / 1000.0
}
