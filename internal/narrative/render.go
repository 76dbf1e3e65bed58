package narrative

import (
	"fmt"
	"math"
	"strings"
)

const economyUnit = "mL·kg⁻¹·min⁻¹"

// Render formats facts as markdown bullet points.
func Render(f Facts) string {
	var b strings.Builder

	fmt.Fprintf(&b, "- The current filter includes **%d subject(s)**.\n", f.SubjectCount)
	fmt.Fprintf(&b, "- Average net metabolic power is approximately **%s W/kg**, with an average speed of **%s m/s**.\n",
		format(f.MeanNetPowerWkg, 2), format(f.MeanSpeedMPS, 2))
	fmt.Fprintf(&b, "- Mean running economy is about **%s %s**.\n", format(f.MeanRunningEconomy, 1), economyUnit)
	fmt.Fprintf(&b, "- There appears to be %s\n", association(f))

	if f.MostEconomical != nil {
		fmt.Fprintf(&b, "- The most economical runner in this group is **%s** with a running economy of **%s %s**.\n",
			f.MostEconomical.SubjectID, format(f.MostEconomical.RunningEconomy, 1), economyUnit)
	}
	if f.LeastEconomical != nil {
		fmt.Fprintf(&b, "- The least economical runner is **%s** with **%s %s**.\n",
			f.LeastEconomical.SubjectID, format(f.LeastEconomical.RunningEconomy, 1), economyUnit)
	}

	return b.String()
}

func association(f Facts) string {
	r := "r undefined"
	if !math.IsNaN(f.Correlation) {
		r = fmt.Sprintf("r ≈ %.2f", f.Correlation)
	}

	switch f.Association {
	case AssociationPositive:
		return fmt.Sprintf("a **positive association** between net metabolic power and speed (%s), "+
			"suggesting that faster runners tend to have higher metabolic cost.", r)
	case AssociationNegative:
		return fmt.Sprintf("a **negative association** between net metabolic power and speed (%s).", r)
	case AssociationWeak:
		return fmt.Sprintf("a **weak or no clear association** between net metabolic power and speed (%s).", r)
	default:
		return "not enough data to estimate the relationship."
	}
}

func format(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
