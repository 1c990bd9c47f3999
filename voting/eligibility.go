// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"time"

	"github.com/danielhkuo/ku-polls/models"
)

// RecentWindow is how far back WasPublishedRecently looks.
const RecentWindow = 24 * time.Hour

// IsPublished reports whether the question is visible at now.
func IsPublished(q models.Question, now time.Time) bool {
	return !now.Before(q.PubDate)
}

// WasPublishedRecently reports whether the question was published within
// the last day, not counting questions scheduled for the future.
func WasPublishedRecently(q models.Question, now time.Time) bool {
	return !q.PubDate.Before(now.Add(-RecentWindow)) && !q.PubDate.After(now)
}

// CanVote reports whether now falls inside [PubDate, EndDate]. A nil
// EndDate leaves the window open.
func CanVote(q models.Question, now time.Time) bool {
	if now.Before(q.PubDate) {
		return false
	}
	if q.EndDate != nil {
		return !now.After(*q.EndDate)
	}
	return true
}

// ValidateWindow rejects an end date earlier than the publish date.
func ValidateWindow(pubDate time.Time, endDate *time.Time) error {
	if endDate != nil && endDate.Before(pubDate) {
		return ErrInvalidWindow
	}
	return nil
}
