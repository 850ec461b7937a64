package index

import (
	"math"
	"reflect"
	"testing"
)

func TestAddMirrorsBothMaps(t *testing.T) {
	x := New()
	x.Add(42, []string{"cat", "in", "the", "city", "cat"}, Record{Rating: 2, Status: StatusActual})

	posting := x.Posting("cat")
	if posting == nil {
		t.Fatal("posting for 'cat' missing")
	}
	if got, want := posting[42], 2.0/5.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("tf(cat, 42) = %v, want %v", got, want)
	}
	freqs := x.WordFrequencies(42)
	if got := freqs["cat"]; math.Abs(got-posting[42]) > 1e-12 {
		t.Errorf("mirror mismatch: doc map tf %v, term map tf %v", got, posting[42])
	}
	if len(freqs) != 4 {
		t.Errorf("WordFrequencies(42) has %d terms, want 4", len(freqs))
	}
}

func TestIDDirectoryStaysSorted(t *testing.T) {
	x := New()
	for _, id := range []int{5, 1, 9, 3} {
		x.Add(id, []string{"w"}, Record{})
	}
	if got := x.IDs(); !reflect.DeepEqual(got, []int{1, 3, 5, 9}) {
		t.Errorf("IDs() = %v, want [1 3 5 9]", got)
	}
	if id, ok := x.NthID(2); !ok || id != 5 {
		t.Errorf("NthID(2) = %d, %v; want 5, true", id, ok)
	}
	if _, ok := x.NthID(4); ok {
		t.Error("NthID(4) should be out of range")
	}
	if _, ok := x.NthID(-1); ok {
		t.Error("NthID(-1) should be out of range")
	}
}

func TestRemoveRestoresPriorState(t *testing.T) {
	x := New()
	x.Add(1, []string{"shared", "one"}, Record{Rating: 1, Status: StatusActual})
	x.Add(2, []string{"shared", "two"}, Record{Rating: 2, Status: StatusActual})

	if !x.Remove(2) {
		t.Fatal("Remove(2) = false, want true")
	}
	if x.Has(2) {
		t.Error("Has(2) after removal")
	}
	if got := x.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
	if got := x.IDs(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("IDs() = %v, want [1]", got)
	}
	// The shared posting keeps document 1, the private one is pruned.
	if p := x.Posting("shared"); len(p) != 1 {
		t.Errorf("posting for 'shared' = %v, want single entry", p)
	}
	if p := x.Posting("two"); p != nil {
		t.Errorf("posting for 'two' = %v, want pruned", p)
	}
	if got := x.WordFrequencies(2); len(got) != 0 {
		t.Errorf("WordFrequencies(2) = %v, want empty", got)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	x := New()
	x.Add(1, []string{"w"}, Record{})
	if x.Remove(7) {
		t.Error("Remove(7) = true, want false")
	}
	if x.Count() != 1 {
		t.Errorf("Count() = %d, want 1", x.Count())
	}
}

func TestWordFrequenciesReturnsOwnedCopy(t *testing.T) {
	x := New()
	x.Add(1, []string{"w"}, Record{})
	freqs := x.WordFrequencies(1)
	freqs["w"] = 99
	if got := x.WordFrequencies(1)["w"]; got == 99 {
		t.Error("mutating the returned map leaked into the index")
	}
	unknown := x.WordFrequencies(404)
	if unknown == nil || len(unknown) != 0 {
		t.Errorf("WordFrequencies(404) = %v, want owned empty map", unknown)
	}
}
