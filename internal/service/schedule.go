package service

import "time"

const day = time.Hour * 24

// ReviewInterval maps a confidence rating to how long a problem stays out of
// the review queue. 1 (failed) comes back tomorrow, 2 in three days and
// anything else in a week
func ReviewInterval(confidence int) time.Duration {
	switch confidence {
	case 1:
		return day
	case 2:
		return 3 * day
	default:
		return 7 * day
	}
}

// NextReviewDate is the moment a log created at from with the given confidence
// becomes due again
func NextReviewDate(confidence int, from time.Time) time.Time {
	return from.Add(ReviewInterval(confidence)).UTC()
}
