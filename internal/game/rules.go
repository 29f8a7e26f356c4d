// internal/game/rules.go
package game

import "fmt"

// Rules tune the guards the engine enforces on top of the table flow.
type Rules struct {
	// SingleNightAction rejects a second night action from the same seat.
	SingleNightAction bool `json:"singleNightAction"`

	// VoteRequiresVoting rejects votes unless the status is voting. Off by
	// default so hosts can run straw polls during the day.
	VoteRequiresVoting bool `json:"voteRequiresVoting"`
}

// DefaultRules returns the rule set a new game starts with.
func DefaultRules() Rules {
	return Rules{
		SingleNightAction:  true,
		VoteRequiresVoting: false,
	}
}

// Update applies the provided overrides. Keys that are absent keep their
// old value.
func (r *Rules) Update(overrides map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := overrides[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	if err := assignBool(&r.SingleNightAction, "singleNightAction"); err != nil {
		return err
	}
	return assignBool(&r.VoteRequiresVoting, "voteRequiresVoting")
}
