// Package span implements the byte-range algebra behind the GPU buffer
// allocator: half-open spans and sorted, coalesced sets of them.
package span

import (
	"fmt"
	"slices"
)

// Span is the half-open byte range [Start, Start+Length).
type Span struct {
	Start  uint64
	Length uint64
}

// End returns the first byte after the span.
func (s Span) End() uint64 {
	return s.Start + s.Length
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Length == 0
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End())
}

// Set is a list of spans sorted by Start, pairwise disjoint, with no two
// spans touching. The zero value is an empty set.
type Set []Span

// Total returns the number of bytes covered by the set.
func (s Set) Total() uint64 {
	var n uint64
	for _, sp := range s {
		n += sp.Length
	}
	return n
}

// Clone returns a copy of the set.
func (s Set) Clone() Set {
	return slices.Clone(s)
}

// Contains reports whether every byte of sp is in the set.
func (s Set) Contains(sp Span) bool {
	if sp.Empty() {
		return true
	}
	for _, x := range s {
		if x.Start <= sp.Start && sp.End() <= x.End() {
			return true
		}
	}
	return false
}

// Validate checks the set invariants.
func (s Set) Validate() error {
	for i, sp := range s {
		if sp.Empty() {
			return fmt.Errorf("span: empty span %v at %d", sp, i)
		}
		if sp.End() < sp.Start {
			return fmt.Errorf("span: %v overflows", sp)
		}
		if i == 0 {
			continue
		}
		prev := s[i-1]
		switch {
		case prev.Start >= sp.Start:
			return fmt.Errorf("span: %v not sorted after %v", sp, prev)
		case prev.End() > sp.Start:
			return fmt.Errorf("span: %v overlaps %v", sp, prev)
		case prev.End() == sp.Start:
			return fmt.Errorf("span: %v touches %v", sp, prev)
		}
	}
	return nil
}

// Add returns set with sp merged in. Spans overlapping or touching sp are
// coalesced with it. set is not modified.
func Add(set Set, sp Span) Set {
	if sp.Empty() {
		return set.Clone()
	}
	start, end := sp.Start, sp.End()

	// first span whose end reaches sp (touching counts)
	lo, _ := slices.BinarySearchFunc(set, start, func(x Span, t uint64) int {
		if x.End() < t {
			return -1
		}
		return 1
	})
	hi := lo
	for hi < len(set) && set[hi].Start <= end {
		start = min(start, set[hi].Start)
		end = max(end, set[hi].End())
		hi++
	}

	out := make(Set, 0, len(set)-(hi-lo)+1)
	out = append(out, set[:lo]...)
	out = append(out, Span{Start: start, Length: end - start})
	out = append(out, set[hi:]...)
	check(out)
	return out
}

// Remove returns set without the bytes of sp. Spans fully covered are
// dropped, spans split by sp leave both remainders and spans overlapping one
// end are truncated. set is not modified.
func Remove(set Set, sp Span) Set {
	start, end := sp.Start, sp.End()
	out := make(Set, 0, len(set)+1)
	for _, x := range set {
		if sp.Empty() || x.End() <= start || end <= x.Start {
			out = append(out, x)
			continue
		}
		if x.Start < start {
			out = append(out, Span{Start: x.Start, Length: start - x.Start})
		}
		if end < x.End() {
			out = append(out, Span{Start: end, Length: x.End() - end})
		}
	}
	check(out)
	return out
}

// Union merges every span of b into a.
func Union(a, b Set) Set {
	out := a.Clone()
	for _, sp := range b {
		out = Add(out, sp)
	}
	return out
}

// Complement returns the gaps of set inside [0, limit). Spans reaching past
// limit are clipped.
func Complement(set Set, limit uint64) Set {
	var out Set
	var cursor uint64
	for _, x := range set {
		if x.Start >= limit {
			break
		}
		if x.Start > cursor {
			out = append(out, Span{Start: cursor, Length: x.Start - cursor})
		}
		cursor = max(cursor, x.End())
	}
	if cursor < limit {
		out = append(out, Span{Start: cursor, Length: limit - cursor})
	}
	return out
}

func check(s Set) {
	if !debugChecks {
		return
	}
	if err := s.Validate(); err != nil {
		panic(err)
	}
}
