package stats

import "testing"

func TestWindowCountsEmptyRequests(t *testing.T) {
	w := NewRequestWindow()
	for i := 0; i < 5; i++ {
		w.AddFindRequest(0)
	}
	w.AddFindRequest(3)
	if got := w.NoResultRequests(); got != 5 {
		t.Errorf("NoResultRequests() = %d, want 5", got)
	}
}

// Mirrors the reference scenario: 1439 empty requests, then three with
// results. The first non-empty lands on tick 1440 and evicts nothing;
// the next two push the oldest empty entries out one by one.
func TestWindowEviction(t *testing.T) {
	w := NewRequestWindow()
	for i := 0; i < 1439; i++ {
		w.AddFindRequest(0)
	}
	if got := w.NoResultRequests(); got != 1439 {
		t.Fatalf("after 1439 empty: NoResultRequests() = %d", got)
	}

	w.AddFindRequest(1) // "curly dog"
	if got := w.NoResultRequests(); got != 1439 {
		t.Errorf("after first non-empty: NoResultRequests() = %d, want 1439", got)
	}
	w.AddFindRequest(1) // "big collar"
	if got := w.NoResultRequests(); got != 1438 {
		t.Errorf("after second non-empty: NoResultRequests() = %d, want 1438", got)
	}
	w.AddFindRequest(2) // "sparrow"
	if got := w.NoResultRequests(); got != 1437 {
		t.Errorf("after third non-empty: NoResultRequests() = %d, want 1437", got)
	}
	if got := w.Size(); got != WindowSize {
		t.Errorf("Size() = %d, want %d", got, WindowSize)
	}
}

func TestWindowNeverExceedsCapacity(t *testing.T) {
	w := NewRequestWindow()
	for i := 0; i < 3*WindowSize; i++ {
		w.AddFindRequest(i % 2)
	}
	if got := w.Size(); got != WindowSize {
		t.Errorf("Size() = %d, want %d", got, WindowSize)
	}
	if got := w.NoResultRequests(); got != WindowSize/2 {
		t.Errorf("NoResultRequests() = %d, want %d", got, WindowSize/2)
	}
}
