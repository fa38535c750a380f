package store

import (
	"reflect"
	"sort"
)

type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Changed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "changed"
}

// Change is one key that differs between two environments.
type Change struct {
	Key  string
	Kind ChangeKind
	Old  interface{}
	New  interface{}
}

// Diff compares two environments key by key and returns the differences
// sorted by key. Nested values compare deeply.
func Diff(before, after map[string]interface{}) []Change {
	var changes []Change
	for k, ov := range before {
		nv, ok := after[k]
		switch {
		case !ok:
			changes = append(changes, Change{Key: k, Kind: Removed, Old: ov})
		case !reflect.DeepEqual(ov, nv):
			changes = append(changes, Change{Key: k, Kind: Changed, Old: ov, New: nv})
		}
	}
	for k, nv := range after {
		if _, ok := before[k]; !ok {
			changes = append(changes, Change{Key: k, Kind: Added, New: nv})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}
