package domain

import "time"

// EventKind tags the three upstream collections an event can come from.
type EventKind string

const (
	KindCommit      EventKind = "commit"
	KindPullRequest EventKind = "pull_request"
	KindIssue       EventKind = "issue"
)

// Event is a single raw upstream item reduced to the fields the pipeline
// cares about. CreatedAt is the zero time when the upstream payload
// omitted a usable timestamp. PullRequestRef is set on issues that carry
// a pull-request back-reference; those are already counted through the
// pull-request collection.
type Event struct {
	Kind           EventKind
	CreatedAt      time.Time
	PullRequestRef bool
}

// Normalize extracts the calendar-day key for an event, or reports that
// the event does not qualify: unknown kind, issue that is really a pull
// request, missing timestamp, or a day outside the window. The window
// check is applied to every event, regardless of what the upstream
// `since` filter claimed.
func Normalize(ev Event, w Window) (string, bool) {
	switch ev.Kind {
	case KindCommit, KindPullRequest:
	case KindIssue:
		if ev.PullRequestRef {
			return "", false
		}
	default:
		return "", false
	}
	if ev.CreatedAt.IsZero() {
		return "", false
	}
	if !w.Contains(ev.CreatedAt) {
		return "", false
	}
	return ev.CreatedAt.UTC().Format(DateLayout), true
}
