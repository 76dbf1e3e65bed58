package energy

import "github.com/haskel/runeconomy/internal/physio"

// Committee equation coefficients (kJ per litre of O2 and CO2).
const (
	netO2KJPerLitre  = 16.58
	netCO2KJPerLitre = 4.51
)

// NetModel applies the committee equation to net gas exchange:
// energy_kJ_min = 16.58*VO2_L + 4.51*VCO2_L, power_W = energy_kJ_min*1000/60.
type NetModel struct{}

// NewNetModel creates the net/committee model.
func NewNetModel() *NetModel {
	return &NetModel{}
}

// Name returns the model name.
func (m *NetModel) Name() string {
	return "net_committee"
}

// Policy returns PolicyNet.
func (m *NetModel) Policy() Policy {
	return PolicyNet
}

// Watts returns committee-equation power for the given rates.
func (m *NetModel) Watts(vo2MlMin, vco2MlMin float64) float64 {
	energyKJMin := netO2KJPerLitre*toLitres(vo2MlMin) + netCO2KJPerLitre*toLitres(vco2MlMin)
	return energyKJMin * 1000 / 60
}

// Phases computes net power from net (run minus rest) mean gas exchange.
// Rest and run power use the same equation on each phase mean.
func (m *NetModel) Phases(rest, run []physio.Sample, massKg float64) (Power, error) {
	if err := ValidateMass(massKg); err != nil {
		return Power{}, err
	}

	restVO2 := physio.Mean(physio.Field(rest, physio.VO2))
	restVCO2 := physio.Mean(physio.Field(rest, physio.VCO2))
	runVO2 := physio.Mean(physio.Field(run, physio.VO2))
	runVCO2 := physio.Mean(physio.Field(run, physio.VCO2))

	return Power{
		RestWkg: m.Watts(restVO2, restVCO2) / massKg,
		RunWkg:  m.Watts(runVO2, runVCO2) / massKg,
		NetWkg:  m.Watts(runVO2-restVO2, runVCO2-restVCO2) / massKg,
	}, nil
}
