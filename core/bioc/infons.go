package bioc

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// infonSet holds the free-form key/value metadata attached to every BioC
// record. It is embedded by value in each record type; the zero value is an
// empty set. Setting an existing key replaces its value.
type infonSet struct {
	m map[string]string
}

// Infon returns the value stored under key.
func (in *infonSet) Infon(key string) (string, bool) {
	v, ok := in.m[key]
	return v, ok
}

// SetInfon stores value under key, replacing any previous value.
func (in *infonSet) SetInfon(key, value string) {
	if in.m == nil {
		in.m = make(map[string]string)
	}
	in.m[key] = value
}

// RemoveInfon deletes key and reports whether it was present.
func (in *infonSet) RemoveInfon(key string) bool {
	if _, ok := in.m[key]; !ok {
		return false
	}
	delete(in.m, key)
	return true
}

// ClearInfons removes every infon.
func (in *infonSet) ClearInfons() {
	in.m = nil
}

// Infons returns a snapshot of all infons.
func (in *infonSet) Infons() map[string]string {
	return maps.Clone(in.m)
}

// InfonKeys returns the infon keys in sorted order.
func (in *infonSet) InfonKeys() []string {
	return slices.Sorted(maps.Keys(in.m))
}

// InfonCount returns the number of infons.
func (in *infonSet) InfonCount() int {
	return len(in.m)
}

func (in *infonSet) clone() infonSet {
	return infonSet{m: maps.Clone(in.m)}
}

func (in *infonSet) equal(other *infonSet) bool {
	return maps.Equal(in.m, other.m)
}

func (in *infonSet) format() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range in.InfonKeys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%q", k, in.m[k])
	}
	b.WriteByte('}')
	return b.String()
}
