// Package learning implements the spaced-repetition side of engram: the
// review interval schedule and the service that applies review outcomes to
// stored items.
package learning

import "time"

// WrongInterval is how soon a missed item comes back, regardless of the
// confidence rating given with it.
const WrongInterval = 4 * time.Hour

const day = 24 * time.Hour

// correctIntervals maps confidence (1-5) to the next review interval.
// Higher confidence pushes the item further out.
var correctIntervals = map[int]time.Duration{
	1: 1 * day,
	2: 3 * day,
	3: 7 * day,
	4: 14 * day,
	5: 30 * day,
}

// ClampConfidence forces a confidence rating onto the 1-5 scale.
func ClampConfidence(confidence int) int {
	if confidence < 1 {
		return 1
	}
	if confidence > 5 {
		return 5
	}
	return confidence
}

// NextInterval returns how long until an item should come back for review.
func NextInterval(wasCorrect bool, confidence int) time.Duration {
	if !wasCorrect {
		return WrongInterval
	}
	return correctIntervals[ClampConfidence(confidence)]
}
