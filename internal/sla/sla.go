// Package sla computes when a maintainer is expected to act on a pull request.
package sla

import (
	"time"

	"github.com/alanmeadows/pullstatus/internal/review"
)

const (
	// DefaultFirstReview is the grace window for a pull request nobody has reviewed yet.
	DefaultFirstReview = 48 * time.Hour
	// DefaultReReview is the grace window after the last status comment of a reviewed request.
	DefaultReReview = 24 * time.Hour
	// DueNowWindow is how far ahead of the due date a request counts as due now.
	DueNowWindow = 24 * time.Hour
)

// Urgency buckets a due date relative to the current time.
type Urgency int

const (
	NotDue Urgency = iota
	DueNow
	Overdue
)

func (u Urgency) String() string {
	switch u {
	case Overdue:
		return "overdue"
	case DueNow:
		return "due now"
	default:
		return "not due"
	}
}

// Policy holds the grace windows.
type Policy struct {
	FirstReview time.Duration
	ReReview    time.Duration
}

// DefaultPolicy returns two days for a first review and one day for a re-review.
func DefaultPolicy() Policy {
	return Policy{FirstReview: DefaultFirstReview, ReReview: DefaultReReview}
}

// Schedule is the computed review deadline of a pull request.
type Schedule struct {
	RequestedAt time.Time
	Due         time.Time
}

// ReviewRequestDate is the pull request's creation time when it was never
// reviewed, and the time of the last status comment otherwise.
func ReviewRequestDate(createdAt time.Time, state review.State) time.Time {
	if state.NeverReviewed {
		return createdAt
	}
	return state.LastStatusAt
}

// DueDate adds the first-review window to a never-reviewed request and the
// re-review window otherwise.
func (p Policy) DueDate(createdAt time.Time, state review.State) time.Time {
	requested := ReviewRequestDate(createdAt, state)
	if state.NeverReviewed {
		return requested.Add(p.FirstReview)
	}
	return requested.Add(p.ReReview)
}

// Compute returns the request date and due date.
func (p Policy) Compute(createdAt time.Time, state review.State) Schedule {
	return Schedule{
		RequestedAt: ReviewRequestDate(createdAt, state),
		Due:         p.DueDate(createdAt, state),
	}
}

// Classify buckets due against now. Exactly one bucket applies.
func Classify(due, now time.Time) Urgency {
	switch {
	case now.After(due):
		return Overdue
	case due.Before(now.Add(DueNowWindow)):
		return DueNow
	default:
		return NotDue
	}
}

// Urgency classifies the schedule's due date against now.
func (s Schedule) Urgency(now time.Time) Urgency {
	return Classify(s.Due, now)
}
