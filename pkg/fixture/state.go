package fixture

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNegativeCount is returned when a count fixture is built from a value below zero.
var ErrNegativeCount = errors.New("count must not be negative")

// Kind identifies which fixture variant is active.
type Kind string

// Fixture variants.
const (
	KindAnimals Kind = "animals"
	KindCount   Kind = "count"
)

// ParseKind converts a variant name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAnimals, KindCount:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown fixture variant %q (want %q or %q)", s, KindAnimals, KindCount)
	}
}

// DefaultCount is the count a fresh count fixture starts with.
const DefaultCount = 1000

// Animal is a single named record served by the animals variant.
type Animal struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
}

// DefaultAnimals returns a fresh copy of the seed list.
func DefaultAnimals() []Animal {
	return []Animal{
		{Name: "Buddy", Image: "dog"},
		{Name: "Cathy", Image: "cat"},
		{Name: "Birdy", Image: "bird"},
	}
}

// State is the tagged union of the two fixture shapes. Use Animals or Count
// to build one; the zero value is an empty animals fixture.
type State struct {
	kind    Kind
	animals []Animal
	count   int
}

// Animals builds an animals fixture. The list is copied.
func Animals(list []Animal) State {
	return State{kind: KindAnimals, animals: slices.Clone(list)}
}

// Count builds a count fixture.
func Count(n int) (State, error) {
	if n < 0 {
		return State{}, fmt.Errorf("%w: %d", ErrNegativeCount, n)
	}
	return State{kind: KindCount, count: n}, nil
}

// Default returns the start-of-process fixture for kind.
func Default(kind Kind) State {
	if kind == KindCount {
		return State{kind: KindCount, count: DefaultCount}
	}
	return Animals(DefaultAnimals())
}

// Empty returns the empty fixture for kind: no animals, or a zero count.
func Empty(kind Kind) State {
	if kind == KindCount {
		return State{kind: KindCount}
	}
	return State{kind: KindAnimals, animals: []Animal{}}
}

// Kind reports the active variant.
func (s State) Kind() Kind {
	if s.kind == "" {
		return KindAnimals
	}
	return s.kind
}

// AnimalList returns a copy of the animals. It is never nil for an animals
// fixture so it always renders as a JSON array.
func (s State) AnimalList() []Animal {
	if s.animals == nil {
		return []Animal{}
	}
	return slices.Clone(s.animals)
}

// CountValue returns the count of a count fixture, or the number of animals.
func (s State) CountValue() int {
	if s.Kind() == KindCount {
		return s.count
	}
	return len(s.animals)
}

// IsEmpty reports whether the fixture holds no data.
func (s State) IsEmpty() bool {
	return s.CountValue() == 0
}

func (s State) String() string {
	if s.Kind() == KindCount {
		return fmt.Sprintf("count(%d)", s.count)
	}
	return fmt.Sprintf("animals(%d)", len(s.animals))
}
