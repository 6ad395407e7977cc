package review

import (
	"time"

	"github.com/alanmeadows/pullstatus/internal/provider"
)

// CurrentReview returns the review of the last maintainer-authored comment
// that carries a review annotation, or nil if no maintainer has reviewed.
func CurrentReview(comments []provider.Comment, maintainers MaintainerSet) *Review {
	if c := LastReviewComment(comments, maintainers); c != nil {
		return Classify(c.Body).Review
	}
	return nil
}

// LastReviewComment returns the last maintainer-authored comment carrying a
// review annotation, or nil.
func LastReviewComment(comments []provider.Comment, maintainers MaintainerSet) *provider.Comment {
	var last *provider.Comment
	for i := range comments {
		c := &comments[i]
		if !maintainers.Contains(c.Author) {
			continue
		}
		if Classify(c.Body).Review != nil {
			last = c
		}
	}
	return last
}

// LastMaintainerComment returns the last comment written by a maintainer, or nil.
func LastMaintainerComment(comments []provider.Comment, maintainers MaintainerSet) *provider.Comment {
	var last *provider.Comment
	for i := range comments {
		if maintainers.Contains(comments[i].Author) {
			last = &comments[i]
		}
	}
	return last
}

// LastStatusComment returns the last comment, by any author, that carries a
// status keyword, or nil.
func LastStatusComment(comments []provider.Comment) *provider.Comment {
	var last *provider.Comment
	for i := range comments {
		if Classify(comments[i].Body).Status != StatusNone {
			last = &comments[i]
		}
	}
	return last
}

// LastStatus returns the status keyword of LastStatusComment, or StatusNone.
func LastStatus(comments []provider.Comment) Status {
	if c := LastStatusComment(comments); c != nil {
		return Classify(c.Body).Status
	}
	return StatusNone
}

// LastStatusTimestamp returns the creation time of LastStatusComment. The
// boolean is false when no comment carries a status.
func LastStatusTimestamp(comments []provider.Comment) (time.Time, bool) {
	if c := LastStatusComment(comments); c != nil {
		return c.CreatedAt, true
	}
	return time.Time{}, false
}

// NeverReviewed reports whether no maintainer has reviewed the pull request.
func NeverReviewed(comments []provider.Comment, maintainers MaintainerSet) bool {
	return CurrentReview(comments, maintainers) == nil
}

// NeedsReview reports whether the pull request is waiting on a maintainer.
//
// A never-reviewed request whose last status is FEEDBACK does not need review:
// the feedback is the open ask. An explicit REVIEW request always does. The
// last status is taken from any author, so a stray REVIEW by anyone counts.
func NeedsReview(comments []provider.Comment, maintainers MaintainerSet) bool {
	last := LastStatus(comments)
	return (NeverReviewed(comments, maintainers) && last != StatusFeedback) || last == StatusReview
}

// PreOK reports whether any comment carries the PRE-OK marker.
func PreOK(comments []provider.Comment) bool {
	for _, c := range comments {
		if Classify(c.Body).PreOK {
			return true
		}
	}
	return false
}

// State is the review state of a pull request derived from its comments.
type State struct {
	// CurrentReview is the latest maintainer review, nil if never reviewed.
	CurrentReview *Review
	// LastStatus is the latest status keyword by any author.
	LastStatus Status
	// LastStatusAt is when LastStatus was written; zero when LastStatus is none.
	LastStatusAt time.Time
	// NeverReviewed is true when CurrentReview is nil.
	NeverReviewed bool
	// NeedsReview is the maintainer-facing trigger flag.
	NeedsReview bool
	// PreOK is true when any comment carries the PRE-OK marker.
	PreOK bool
	// UnreviewedCommits is true when the head sha differs from the reviewed sha.
	UnreviewedCommits bool
}

// Evaluate reduces a comment history to the pull request's review state.
// headSHA is the pull request's current head commit.
func Evaluate(comments []provider.Comment, maintainers MaintainerSet, headSHA string) State {
	current := CurrentReview(comments, maintainers)
	lastAt, _ := LastStatusTimestamp(comments)

	s := State{
		CurrentReview: current,
		LastStatus:    LastStatus(comments),
		LastStatusAt:  lastAt,
		NeverReviewed: current == nil,
		NeedsReview:   NeedsReview(comments, maintainers),
		PreOK:         PreOK(comments),
	}
	if current != nil && !SHAEqual(current.SHA, headSHA) {
		s.UnreviewedCommits = true
	}
	return s
}
