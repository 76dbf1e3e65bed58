package energy

import "github.com/haskel/runeconomy/internal/physio"

// Brockway (1987) coefficients, kcal per litre, and the kcal/min to W factor.
const (
	brockwayO2KcalPerLitre  = 3.941
	brockwayCO2KcalPerLitre = 1.106
	wattsPerKcalMin         = 69.78
)

// BrockwayModel is the legacy per-row formula. Each sample is converted to
// W/kg with its own body mass; net power is the run window mean minus the
// rest window mean.
type BrockwayModel struct{}

// NewBrockwayModel creates the Brockway model.
func NewBrockwayModel() *BrockwayModel {
	return &BrockwayModel{}
}

// Name returns the model name.
func (m *BrockwayModel) Name() string {
	return "brockway_1987"
}

// Policy returns PolicyBrockway.
func (m *BrockwayModel) Policy() Policy {
	return PolicyBrockway
}

// Watts returns Brockway power for the given rates.
func (m *BrockwayModel) Watts(vo2MlMin, vco2MlMin float64) float64 {
	kcalMin := brockwayO2KcalPerLitre*toLitres(vo2MlMin) + brockwayCO2KcalPerLitre*toLitres(vco2MlMin)
	return kcalMin * wattsPerKcalMin
}

// Phases averages per-row W/kg over each window.
func (m *BrockwayModel) Phases(rest, run []physio.Sample, massKg float64) (Power, error) {
	if err := ValidateMass(massKg); err != nil {
		return Power{}, err
	}

	restWkg, err := m.rowPower(rest)
	if err != nil {
		return Power{}, err
	}
	runWkg, err := m.rowPower(run)
	if err != nil {
		return Power{}, err
	}

	restMean := physio.Mean(restWkg)
	runMean := physio.Mean(runWkg)

	return Power{
		RestWkg: restMean,
		RunWkg:  runMean,
		NetWkg:  runMean - restMean,
	}, nil
}

func (m *BrockwayModel) rowPower(samples []physio.Sample) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		wkg, err := PerKg(m.Watts(s.VO2MlMin, s.VCO2MlMin), s.BodyMassKg)
		if err != nil {
			return nil, err
		}
		out[i] = wkg
	}
	return out, nil
}
