// Package dice rolls bounded sets of dice for the chat command.
package dice

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"icrelay/internal/constants"
	apperrors "icrelay/internal/errors"
	"icrelay/internal/validation"
)

const (
	MsgSidesOutOfRange = "The number of sides must be between 1 and 10."
	MsgCountOutOfRange = "The number of dice must be between 1 and 20."
)

// Roller draws dice results from an injectable source
type Roller struct {
	intN func(n int) int
}

// NewRoller creates a roller backed by the process-wide random source
func NewRoller() *Roller {
	return &Roller{intN: rand.IntN}
}

// NewRollerWithSource creates a roller with a deterministic source, for tests and replays
func NewRollerWithSource(src rand.Source) *Roller {
	return &Roller{intN: rand.New(src).IntN}
}

// Roll returns count results, each in [1, sides].
// Out-of-range arguments are rejected before anything is drawn.
func (r *Roller) Roll(sides, count int) ([]int, error) {
	if err := validation.ValidateNumericRange(sides, "sides", constants.MinDiceSides, constants.MaxDiceSides); err != nil {
		return nil, withUserMessage(err, MsgSidesOutOfRange)
	}
	if err := validation.ValidateNumericRange(count, "count", constants.MinDiceCount, constants.MaxDiceCount); err != nil {
		return nil, withUserMessage(err, MsgCountOutOfRange)
	}

	results := make([]int, count)
	for i := range results {
		results[i] = r.intN(sides) + 1
	}
	return results, nil
}

func withUserMessage(err error, msg string) error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.WithUserMessage(msg)
	}
	return err
}

// Format renders results the way the chat reply shows them
func Format(results []int) string {
	parts := make([]string, len(results))
	for i, v := range results {
		parts[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("🎲 Roll results: %s", strings.Join(parts, " "))
}
