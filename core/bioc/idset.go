package bioc

import (
	"slices"

	"github.com/FocuswithJustin/bioc/core/errors"
)

// IDPolicy controls how a scope treats annotation and relation ids that are
// already present.
type IDPolicy int

const (
	// StrictIDs rejects a duplicate id with a DuplicateIDError.
	StrictIDs IDPolicy = iota
	// LenientIDs keeps duplicates in insertion order. Lookups by id return
	// the first match.
	LenientIDs
)

// String returns the policy name as used in configuration files.
func (p IDPolicy) String() string {
	if p == LenientIDs {
		return "lenient"
	}
	return "strict"
}

// ParseIDPolicy parses "strict" or "lenient".
func ParseIDPolicy(s string) (IDPolicy, bool) {
	switch s {
	case "", "strict":
		return StrictIDs, true
	case "lenient":
		return LenientIDs, true
	}
	return StrictIDs, false
}

type keyed interface {
	key() (string, bool)
}

// idSet is an insertion-ordered collection keyed by record id.
// Changing the id of a record after it has been added is not supported.
type idSet[T keyed] struct {
	items []T
	count map[string]int
}

// add appends item, returning an error when its id is unset or when the
// policy is strict and the id is taken. The set is unchanged on error.
func (s *idSet[T]) add(item T, policy IDPolicy, scope, kind string) error {
	id, ok := item.key()
	if !ok {
		return errors.NewMissingField(kind, "id")
	}
	if policy == StrictIDs && s.count[id] > 0 {
		return &errors.DuplicateIDError{Scope: scope, Kind: kind, ID: id}
	}
	if s.count == nil {
		s.count = make(map[string]int)
	}
	s.count[id]++
	s.items = append(s.items, item)
	return nil
}

func (s *idSet[T]) get(id string) (T, bool) {
	var zero T
	if s.count[id] == 0 {
		return zero, false
	}
	for _, item := range s.items {
		if k, _ := item.key(); k == id {
			return item, true
		}
	}
	return zero, false
}

func (s *idSet[T]) has(id string) bool {
	return s.count[id] > 0
}

// remove deletes the first item with id.
func (s *idSet[T]) remove(id string) bool {
	if s.count[id] == 0 {
		return false
	}
	for i, item := range s.items {
		if k, _ := item.key(); k == id {
			s.items = slices.Delete(s.items, i, i+1)
			if s.count[id]--; s.count[id] == 0 {
				delete(s.count, id)
			}
			return true
		}
	}
	return false
}

func (s *idSet[T]) clear() {
	s.items = nil
	s.count = nil
}

func (s *idSet[T]) len() int {
	return len(s.items)
}

func (s *idSet[T]) list() []T {
	return slices.Clone(s.items)
}
