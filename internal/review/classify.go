package review

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the status keyword carried by a comment.
type Status string

const (
	StatusNone     Status = ""
	StatusReview   Status = "REVIEW"
	StatusFeedback Status = "FEEDBACK"
	StatusOK       Status = "OK"
)

// PreOKMarker flags a comment as a preliminary approval. Reported only.
const PreOKMarker = "PRE-OK"

// A review annotation always starts at a status keyword boundary, so every
// comment carrying a Review also carries a Status.
var (
	statusPattern = regexp.MustCompile(`\b(REVIEW|FEEDBACK|OK)\b`)
	reviewPattern = regexp.MustCompile(`\b(FEEDBACK|OK)\s*\(\s*([0-9a-f]{7,40})\s*\)`)
)

// Review is an authoritative review: a verdict on a specific commit.
type Review struct {
	Status Status
	SHA    string
}

// String renders the review the way maintainers write it, e.g. "OK (abc1234)".
func (r Review) String() string {
	return fmt.Sprintf("%s (%s)", r.Status, r.SHA)
}

// Classification is what a comment body says about review state.
type Classification struct {
	// Status is the first status keyword in the body, StatusNone if absent.
	Status Status
	// Review is the review annotation, nil if the body carries none.
	Review *Review
	// PreOK is set when the body contains PreOKMarker.
	PreOK bool
}

// Classify extracts the status keyword, review annotation and PRE-OK marker
// from a comment body. It never fails; unrecognized text yields StatusNone and
// no review.
func Classify(body string) Classification {
	var c Classification

	if m := statusPattern.FindStringSubmatch(body); m != nil {
		c.Status = Status(m[1])
	}
	if m := reviewPattern.FindStringSubmatch(body); m != nil {
		c.Review = &Review{Status: Status(m[1]), SHA: m[2]}
	}
	c.PreOK = strings.Contains(body, PreOKMarker)

	return c
}

// ShortSHALength is the prefix length used for every sha comparison.
const ShortSHALength = 7

// ShortSHA returns the first ShortSHALength characters of sha.
func ShortSHA(sha string) string {
	if len(sha) <= ShortSHALength {
		return sha
	}
	return sha[:ShortSHALength]
}

// SHAEqual compares two shas by their short prefix.
func SHAEqual(a, b string) bool {
	return ShortSHA(a) == ShortSHA(b)
}
