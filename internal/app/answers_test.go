package app_test

import (
	"reflect"
	"testing"

	"mscript-quiz-client/internal/app"
	"mscript-quiz-client/internal/domain"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "1", Prompt: "single", Options: []string{"A", "B", "C"}},
		{ID: "2", Prompt: "multi", Options: []string{"C", "D", "E"}, Multiple: true},
	}
}

func TestSingleSelectReplacesPriorSelection(t *testing.T) {
	store := app.NewAnswerStore(testQuestions())

	store.Record("1", "A", true, false)
	store.Record("1", "C", true, false)
	store.Record("1", "B", true, false)

	got := store.Selected("1")
	if !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("expected most recent selection [B], got %v", got)
	}
}

func TestMultiSelectToggleIsIdempotentAndCommutative(t *testing.T) {
	store := app.NewAnswerStore(testQuestions())

	store.Record("2", "E", true, true)
	store.Record("2", "C", true, true)
	store.Record("2", "C", true, true) // duplicate add
	store.Record("2", "D", true, true)
	store.Record("2", "D", false, true)
	store.Record("2", "D", false, true) // duplicate remove

	got := store.Selected("2")
	if !reflect.DeepEqual(got, []string{"C", "E"}) {
		t.Fatalf("expected [C E] in option order, got %v", got)
	}
}

func TestSnapshotNormalizesToOptionOrder(t *testing.T) {
	store := app.NewAnswerStore(testQuestions())

	store.Record("2", "E", true, true)
	store.Record("2", "D", true, true)
	store.Record("2", "C", true, true)
	store.Record("1", "A", true, false)

	snap := store.Snapshot()
	want := map[string][]string{
		"1": {"A"},
		"2": {"C", "D", "E"},
	}
	if !reflect.DeepEqual(snap, want) {
		t.Fatalf("expected %v, got %v", want, snap)
	}
}

func TestSnapshotOmitsEmptyEntriesAndIsDetached(t *testing.T) {
	store := app.NewAnswerStore(testQuestions())

	store.Record("2", "D", true, true)
	store.Record("2", "D", false, true)

	snap := store.Snapshot()
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap)
	}

	store.Record("1", "A", true, false)
	snap = store.Snapshot()
	store.Record("1", "B", true, false)
	if !reflect.DeepEqual(snap["1"], []string{"A"}) {
		t.Fatalf("snapshot must not observe later mutations, got %v", snap["1"])
	}
}

func TestRecordUnknownQuestionCreatesEntry(t *testing.T) {
	store := app.NewAnswerStore(testQuestions())

	store.Record("99", "X", true, true)
	if got := store.Selected("99"); !reflect.DeepEqual(got, []string{"X"}) {
		t.Fatalf("expected [X] for unknown question, got %v", got)
	}
}

func TestNavigatorClampsAtBounds(t *testing.T) {
	nav := app.NewNavigator(3)

	if nav.Prev() {
		t.Fatal("prev at cursor 0 must be a no-op")
	}
	if !nav.AtStart() {
		t.Fatal("expected AtStart at cursor 0")
	}
	if !nav.Next() || !nav.Next() {
		t.Fatal("expected two forward moves")
	}
	if nav.Next() {
		t.Fatal("next at last question must be a no-op")
	}
	if !nav.AtEnd() || nav.Cursor() != 2 {
		t.Fatalf("expected cursor pinned at 2, got %d", nav.Cursor())
	}
	if !nav.Prev() || nav.Cursor() != 1 {
		t.Fatalf("expected cursor 1 after prev, got %d", nav.Cursor())
	}
}
