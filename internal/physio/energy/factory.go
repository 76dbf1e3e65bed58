package energy

import (
	"fmt"

	"github.com/haskel/runeconomy/internal/physio"
)

// DefaultPolicy is the policy whose outputs feed the regression and narration.
const DefaultPolicy = PolicyNet

// New creates the model for a policy tag. An empty tag selects DefaultPolicy.
func New(policy Policy) (Model, error) {
	if policy == "" {
		policy = DefaultPolicy
	}

	switch policy {
	case PolicyNet:
		return NewNetModel(), nil

	case PolicyBrockway:
		return NewBrockwayModel(), nil

	default:
		return nil, fmt.Errorf("%w: unknown energy policy: %s", physio.ErrInvalidInput, policy)
	}
}
