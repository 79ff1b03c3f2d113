package ast

import (
	"sort"
	"strings"
)

// Possibility is one element of a Provenance's possibility set: a dataset
// path (or the special value/null sentinels) a value might have originated
// from. It is opaque to the emitter beyond equality comparison.
type Possibility struct {
	// Path identifies a concrete dataset possibility, e.g. "/clicks". Empty
	// for the Value and Null sentinels.
	Path string

	// sentinel tags ValueProvenance/NullProvenance so SharedPossibilities
	// can exclude them without needing a Path comparison.
	sentinel sentinelKind
}

type sentinelKind int

const (
	notSentinel sentinelKind = iota
	valueSentinel
	nullSentinel
)

// Provenance is the static label over an expression's value used to decide
// cross vs. match semantics for binary operators (§4.4).
type Provenance struct {
	Possibilities []Possibility
}

// ValueProvenance constructs the sentinel provenance of a literal or other
// value with no dataset origin.
func ValueProvenance() Provenance {
	return Provenance{Possibilities: []Possibility{{sentinel: valueSentinel}}}
}

// NullProvenance constructs the sentinel provenance signalling an invalid
// or absent provenance.
func NullProvenance() Provenance {
	return Provenance{Possibilities: []Possibility{{sentinel: nullSentinel}}}
}

// IsNull reports whether p is the null-provenance sentinel.
func (p Provenance) IsNull() bool {
	for _, poss := range p.Possibilities {
		if poss.sentinel == nullSentinel {
			return true
		}
	}
	return false
}

// IsValue reports whether p is the value-provenance sentinel.
func (p Provenance) IsValue() bool {
	for _, poss := range p.Possibilities {
		if poss.sentinel == valueSentinel {
			return true
		}
	}
	return false
}

// Key returns a canonical string identifying p's possibility set, used to
// group object/array fields that share the same provenance (§4.2.1,
// §4.2.2). Two provenances with the same Key are treated as the same group;
// the Value and Null sentinels each form their own group regardless of any
// accompanying paths.
func (p Provenance) Key() string {
	if p.IsValue() {
		return "\x00VALUE"
	}
	if p.IsNull() {
		return "\x00NULL"
	}
	paths := make([]string, 0, len(p.Possibilities))
	for _, poss := range p.Possibilities {
		paths = append(paths, poss.Path)
	}
	sort.Strings(paths)
	return strings.Join(paths, "\x1f")
}

// PathProvenance constructs a provenance possibility set from one or more
// concrete dataset paths.
func PathProvenance(paths ...string) Provenance {
	poss := make([]Possibility, len(paths))
	for i, p := range paths {
		poss[i] = Possibility{Path: p}
	}
	return Provenance{Possibilities: poss}
}

// SharedPossibilities computes the set intersection of a and b's
// possibilities, excluding ValueProvenance and NullProvenance entries, as
// specified by §4.4's binary operator provenance dispatch.
func SharedPossibilities(a, b Provenance) []Possibility {
	var shared []Possibility
	for _, x := range a.Possibilities {
		if x.sentinel != notSentinel {
			continue
		}
		for _, y := range b.Possibilities {
			if y.sentinel != notSentinel {
				continue
			}
			if x.Path == y.Path {
				shared = append(shared, x)
				break
			}
		}
	}
	return shared
}
