package analyzer

import (
	"slices"
	"sort"

	"github.com/funvibe/typecore/internal/typesystem"
)

// SortTypes orders types so that every type comes before its supertypes.
// Related types are grouped and sorted from the most specific, then each
// type is moved after the last type it is a supertype of. Unrelated types
// keep their input order.
func (c *Checker) SortTypes(ts []typesystem.Type) []typesystem.Type {
	var buckets [][]typesystem.Type
	for _, t := range ts {
		placed := false
		for i, b := range buckets {
			if c.relatedToAll(t, b) {
				buckets[i] = append(b, t)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, []typesystem.Type{t})
		}
	}
	out := make([]typesystem.Type, 0, len(ts))
	for _, b := range buckets {
		sort.SliceStable(b, func(i, j int) bool { return c.Cmp(b[i], b[j]) == Less })
		out = append(out, b...)
	}
	return c.slideSupertypes(out)
}

func (c *Checker) relatedToAll(t typesystem.Type, b []typesystem.Type) bool {
	for _, u := range b {
		if !c.Related(t, u) {
			return false
		}
	}
	return true
}

// slideSupertypes moves x[idx] after the last later element it is a
// supertype of. Moved elements settle at the tail and are not scanned
// again.
func (c *Checker) slideSupertypes(x []typesystem.Type) []typesystem.Type {
	fixed := 0
	for idx := 0; idx < len(x); {
		moved := false
		for j := len(x) - 1 - fixed; j > idx; j-- {
			if c.Cmp(x[idx], x[j]) == Greater {
				t := x[idx]
				x = slices.Delete(x, idx, idx+1)
				x = slices.Insert(x, j, t)
				fixed++
				moved = true
				break
			}
		}
		if !moved {
			idx++
		}
	}
	return x
}
