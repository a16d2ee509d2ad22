// Package calculator holds the pure share-allocation arithmetic.
package calculator

import "equi/internal/models"

// Allocate computes the per-participant share for a total divided among
// participants, owner included: ceil(total/participants).
//
// Every participant pays the same ceiling-divided share, so the collected
// sum may exceed total by up to participants-1 currency units. That
// over-collection is intended behavior, not a rounding bug; the remainder
// is never balanced away from equality.
func Allocate(total, participants int64) (int64, error) {
	if total <= 0 {
		return 0, models.ErrInvalidAmount
	}
	if participants <= 0 {
		return 0, models.ErrNoParticipantCnt
	}
	return (total + participants - 1) / participants, nil
}
