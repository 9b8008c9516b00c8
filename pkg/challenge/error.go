package challenge

import (
	"fmt"

	"github.com/quietmindco/engram/pkg/storage"
)

// InvalidTransitionError is returned when a lifecycle operation is applied to
// a challenge in the wrong state. From is the challenge's current status, To
// the status the operation needed or targeted.
type InvalidTransitionError struct {
	From storage.ChallengeStatus
	To   storage.ChallengeStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid challenge transition: %s -> %s", e.From, e.To)
}

// AlreadySolvedError is returned when solving an obstacle that already has a
// solution recorded.
type AlreadySolvedError struct {
	ObstacleID int64
}

func (e AlreadySolvedError) Error() string {
	return fmt.Sprintf("obstacle %d already solved", e.ObstacleID)
}
