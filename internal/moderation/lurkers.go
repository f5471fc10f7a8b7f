// Package moderation implements the group moderation workflows: lurker
// detection and poll-based vote-kicks.
package moderation

import (
	"slices"
	"strconv"
)

// IDSet is a set of user ids normalized to their decimal string form.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// UserID normalizes a numeric user id for use in an IDSet.
func UserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// FindLurkers returns the participants that are not among the senders.
// The two sets may come from differently bounded enumerations.
func FindLurkers(senders, participants IDSet) IDSet {
	lurkers := make(IDSet)
	for id := range participants {
		if !senders.Has(id) {
			lurkers.Add(id)
		}
	}
	return lurkers
}
