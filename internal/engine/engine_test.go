package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	apperrors "github.com/mkraev/ranked-search-platform/pkg/errors"
)

func newEngine(t *testing.T, stopWords string) *Engine {
	t.Helper()
	e, err := NewFromString(stopWords)
	if err != nil {
		t.Fatalf("NewFromString(%q): %v", stopWords, err)
	}
	return e
}

func add(t *testing.T, e *Engine, id int, text string, status Status, ratings []int) {
	t.Helper()
	if err := e.AddDocument(id, text, status, ratings); err != nil {
		t.Fatalf("AddDocument(%d, %q): %v", id, text, err)
	}
}

func ids(docs []Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestAddDocumentValidation(t *testing.T) {
	e := newEngine(t, "in the")
	add(t, e, 1, "cat in the city", StatusActual, []int{1})

	cases := []struct {
		name    string
		id      int
		text    string
		wantErr error
	}{
		{"negative id", -1, "cat", apperrors.ErrNegativeID},
		{"duplicate id", 1, "cat", apperrors.ErrDuplicateID},
		{"control byte", 2, "ca\x02t", apperrors.ErrInvalidInput},
		{"all stop words", 2, "in the", apperrors.ErrInvalidInput},
		{"empty text", 2, "", apperrors.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := e.AddDocument(tc.id, tc.text, StatusActual, nil); !errors.Is(err, tc.wantErr) {
				t.Errorf("AddDocument error = %v, want %v", err, tc.wantErr)
			}
		})
	}
	if got := e.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount() = %d after rejected adds, want 1", got)
	}
}

func TestFindTopExcludesMinusWords(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 42, "cat in the city", StatusActual, []int{1, 2, 3})

	docs, err := e.FindTop("city -cat")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("FindTop(\"city -cat\") = %v, want empty", docs)
	}
	// A pure minus query matches nothing either.
	docs, err = e.FindTop("-city")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("FindTop(\"-city\") = %v, want empty", docs)
	}
}

func TestMatchDocument(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 42, "cat in the city", StatusActual, []int{1, 2, 3})

	words, status, err := e.MatchDocument("cat outside the city", 42)
	if err != nil {
		t.Fatalf("MatchDocument: %v", err)
	}
	if want := []string{"cat", "city", "the"}; !reflect.DeepEqual(words, want) {
		t.Errorf("matched words = %v, want %v", words, want)
	}
	if status != StatusActual {
		t.Errorf("status = %v, want ACTUAL", status)
	}

	words, _, err = e.MatchDocument("cat -city", 42)
	if err != nil {
		t.Fatalf("MatchDocument: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("minus word present: matched = %v, want empty", words)
	}

	if _, _, err := e.MatchDocument("cat", 404); !errors.Is(err, apperrors.ErrUnknownDocument) {
		t.Errorf("MatchDocument(404) error = %v, want ErrUnknownDocument", err)
	}
}

func TestMatchDocumentParallelAgrees(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 42, "cat in the city", StatusActual, []int{1, 2, 3})

	seq, seqStatus, err := e.MatchDocument("cat outside the city", 42)
	if err != nil {
		t.Fatalf("MatchDocument: %v", err)
	}
	par, parStatus, err := e.MatchDocumentParallel(context.Background(), "cat outside the city", 42)
	if err != nil {
		t.Fatalf("MatchDocumentParallel: %v", err)
	}
	if !reflect.DeepEqual(seq, par) || seqStatus != parStatus {
		t.Errorf("parallel match (%v, %v) != sequential (%v, %v)", par, parStatus, seq, seqStatus)
	}
}

func TestFindTopRelevanceOrder(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 1, "cat in the", StatusActual, []int{1, 2, 3})
	add(t, e, 2, "cat the", StatusActual, []int{1, 2, 3})
	add(t, e, 3, "cat in the city", StatusActual, []int{1, 2, 3})

	docs, err := e.FindTop("cat in the city")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if got := ids(docs); !reflect.DeepEqual(got, []int{3, 1, 2}) {
		t.Errorf("result order = %v, want [3 1 2]", got)
	}
	for i := 1; i < len(docs); i++ {
		prev, cur := docs[i-1], docs[i]
		if cur.Relevance-prev.Relevance >= relevanceEpsilon {
			t.Errorf("results not sorted: %v before %v", prev, cur)
		}
	}
}

func TestFindTopRelevanceMath(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 1, "the cat", StatusActual, nil)
	add(t, e, 2, "dog in park", StatusActual, nil)

	docs, err := e.FindTop("cat in park")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	wantDoc2 := 2 * (math.Log(2) / 3)
	wantDoc1 := math.Log(2) * 0.5
	if docs[0].ID != 2 || math.Abs(docs[0].Relevance-wantDoc2) > 1e-9 {
		t.Errorf("docs[0] = %v, want id 2 relevance %v", docs[0], wantDoc2)
	}
	if docs[1].ID != 1 || math.Abs(docs[1].Relevance-wantDoc1) > 1e-9 {
		t.Errorf("docs[1] = %v, want id 1 relevance %v", docs[1], wantDoc1)
	}
}

func TestAverageRating(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 1, "cat in the park", StatusActual, []int{2, 5, 3})
	add(t, e, 2, "dog in the park", StatusActual, []int{-3, -4, -2})
	add(t, e, 3, "rat in the park", StatusActual, []int{5, -4, 8, -5})
	add(t, e, 4, "bat in the park", StatusActual, nil)

	docs, err := e.FindTop("park")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	got := map[int]int{}
	for _, d := range docs {
		got[d.ID] = d.Rating
	}
	want := map[int]int{1: 3, 2: -3, 3: 1, 4: 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ratings = %v, want %v", got, want)
	}
}

func TestFindTopPredicateAndStatus(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 1, "cat in the park", StatusActual, []int{4})
	add(t, e, 2, "cat in the park", StatusBanned, []int{5})
	add(t, e, 3, "cat in the park", StatusActual, []int{2})
	add(t, e, 4, "cat in the park", StatusActual, []int{5})

	docs, err := e.FindTopFunc("cat in the park", func(id int, status Status, rating int) bool {
		return id > 1 && status == StatusActual && rating > 3
	})
	if err != nil {
		t.Fatalf("FindTopFunc: %v", err)
	}
	if got := ids(docs); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("predicate filter ids = %v, want [4]", got)
	}

	docs, err = e.FindTopByStatus("cat", StatusBanned)
	if err != nil {
		t.Fatalf("FindTopByStatus: %v", err)
	}
	if got := ids(docs); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("status filter ids = %v, want [2]", got)
	}

	// The default overload sees only ACTUAL documents.
	docs, err = e.FindTop("cat")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	for _, d := range docs {
		if d.ID == 2 {
			t.Error("default FindTop returned a BANNED document")
		}
	}
}

func TestStopWordsAreInvisible(t *testing.T) {
	withStop := newEngine(t, "in the")
	add(t, withStop, 42, "cat in the city", StatusActual, []int{1})
	docs, err := withStop.FindTop("in")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("stop-word query returned %v, want nothing", docs)
	}

	noStop := newEngine(t, "")
	add(t, noStop, 42, "cat in the city", StatusActual, []int{1})
	docs, err = noStop.FindTop("in")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if got := ids(docs); !reflect.DeepEqual(got, []int{42}) {
		t.Errorf("ids = %v, want [42]", got)
	}
}

func TestFindTopCapsAtFive(t *testing.T) {
	e := newEngine(t, "")
	for id := 0; id < 9; id++ {
		add(t, e, id, "common word", StatusActual, []int{id})
	}
	docs, err := e.FindTop("common")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if len(docs) != MaxResultDocumentCount {
		t.Fatalf("len = %d, want %d", len(docs), MaxResultDocumentCount)
	}
	// Identical relevance everywhere, so rating (= id here) decides.
	if got := ids(docs); !reflect.DeepEqual(got, []int{8, 7, 6, 5, 4}) {
		t.Errorf("ids = %v, want rating-descending [8 7 6 5 4]", got)
	}
}

func TestFullTiesKeepAscendingID(t *testing.T) {
	e := newEngine(t, "")
	for _, id := range []int{7, 3, 9, 1} {
		add(t, e, id, "same text here", StatusActual, []int{2})
	}
	docs, err := e.FindTop("same text")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if got := ids(docs); !reflect.DeepEqual(got, []int{1, 3, 7, 9}) {
		t.Errorf("ids = %v, want ascending on full tie", got)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	e := newEngine(t, "and with")
	add(t, e, 1, "white cat and fashionable collar", StatusActual, []int{8, -3})
	add(t, e, 2, "fluffy cat fluffy tail", StatusActual, []int{7, 2, 7})
	add(t, e, 3, "groomed dog expressive eyes", StatusActual, []int{5, -12, 2, 1})
	add(t, e, 4, "groomed starling evgeny", StatusBanned, []int{9})
	add(t, e, 5, "sleek cat with expressive eyes", StatusActual, []int{4, 4})

	for _, q := range []string{
		"fluffy groomed cat",
		"fluffy groomed cat -collar",
		"expressive eyes -tail",
		"starling",
		"absent",
	} {
		seq, err := e.FindTop(q)
		if err != nil {
			t.Fatalf("FindTop(%q): %v", q, err)
		}
		par, err := e.FindTopParallel(context.Background(), q)
		if err != nil {
			t.Fatalf("FindTopParallel(%q): %v", q, err)
		}
		if len(seq) != len(par) {
			t.Fatalf("query %q: sequential %v vs parallel %v", q, seq, par)
		}
		for i := range seq {
			if seq[i].ID != par[i].ID || seq[i].Rating != par[i].Rating {
				t.Errorf("query %q: position %d: sequential %v vs parallel %v", q, i, seq[i], par[i])
			}
			if math.Abs(seq[i].Relevance-par[i].Relevance) > relevanceEpsilon {
				t.Errorf("query %q: relevance diverged: %v vs %v", q, seq[i], par[i])
			}
		}
	}
}

func TestRemoveDocumentRoundTrip(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 1, "keep this one", StatusActual, []int{1})
	beforeCount := e.DocumentCount()
	beforeIDs := e.IDs()

	add(t, e, 5, "transient document words", StatusActual, []int{3})
	e.RemoveDocument(5)

	if got := e.DocumentCount(); got != beforeCount {
		t.Errorf("DocumentCount() = %d, want %d", got, beforeCount)
	}
	if got := e.IDs(); !reflect.DeepEqual(got, beforeIDs) {
		t.Errorf("IDs() = %v, want %v", got, beforeIDs)
	}
	if got := e.WordFrequencies(5); len(got) != 0 {
		t.Errorf("WordFrequencies(5) = %v, want empty", got)
	}
	docs, err := e.FindTop("transient")
	if err != nil {
		t.Fatalf("FindTop: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("removed document still found: %v", docs)
	}

	// Unknown removal is an idempotent no-op.
	e.RemoveDocument(5)
	e.RemoveDocumentParallel(context.Background(), 5)
	if got := e.DocumentCount(); got != beforeCount {
		t.Errorf("DocumentCount() after no-op removals = %d, want %d", got, beforeCount)
	}
}

func TestNthIDAndIteration(t *testing.T) {
	e := newEngine(t, "")
	for _, id := range []int{30, 10, 20} {
		add(t, e, id, "doc words", StatusActual, nil)
	}
	if got := e.IDs(); !reflect.DeepEqual(got, []int{10, 20, 30}) {
		t.Errorf("IDs() = %v, want ascending", got)
	}
	id, err := e.NthID(1)
	if err != nil || id != 20 {
		t.Errorf("NthID(1) = %d, %v; want 20", id, err)
	}
	if _, err := e.NthID(3); !errors.Is(err, apperrors.ErrUnknownDocument) {
		t.Errorf("NthID(3) error = %v, want ErrUnknownDocument", err)
	}
}

func TestQueryErrorsSurface(t *testing.T) {
	e := newEngine(t, "")
	add(t, e, 1, "cat", StatusActual, nil)

	if _, err := e.FindTop("--cat"); !errors.Is(err, apperrors.ErrInvalidMinusWord) {
		t.Errorf("FindTop(--cat) error = %v", err)
	}
	if _, err := e.FindTopParallel(context.Background(), "cat -"); !errors.Is(err, apperrors.ErrInvalidMinusWord) {
		t.Errorf("FindTopParallel(cat -) error = %v", err)
	}
	if _, _, err := e.MatchDocument("ca\x01t", 1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("MatchDocument control byte error = %v", err)
	}
}

func TestDocumentString(t *testing.T) {
	d := Document{ID: 2, Relevance: 0.402359, Rating: 2}
	want := "{ document_id = 2, relevance = 0.402359, rating = 2 }"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
