package manifest

import "strings"

// Status represents the lifecycle classification of an episode row.
type Status string

const (
	StatusNew         Status = "NEW"
	StatusChanged     Status = "CHANGED"
	StatusUnchanged   Status = "UNCHANGED"
	StatusMissingSide Status = "MISSING_SIDE"
	StatusDeleted     Status = "DELETED"
	StatusOrphanVideo Status = "ORPHAN_VIDEO"
	StatusPending     Status = "PENDING"
	StatusError       Status = "ERROR"
)

var allStatuses = []Status{
	StatusNew,
	StatusChanged,
	StatusUnchanged,
	StatusMissingSide,
	StatusDeleted,
	StatusOrphanVideo,
	StatusPending,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Valid reports whether the status is a member of the closed enum.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// IsActionable reports whether downstream stages should (re)process rows in
// this status. Every status other than UNCHANGED is actionable; the switch
// is exhaustive so new statuses cannot silently fall through a filter.
func (s Status) IsActionable() bool {
	switch s {
	case StatusNew, StatusChanged, StatusMissingSide, StatusDeleted,
		StatusOrphanVideo, StatusPending, StatusError:
		return true
	case StatusUnchanged:
		return false
	default:
		return false
	}
}
