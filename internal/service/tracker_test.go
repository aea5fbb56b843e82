package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/thoughtline/thoughtline/internal/domain"
)

func newTestTracker() *Tracker {
	return NewTracker(NewValidator(domain.CanonicalStages()))
}

func rawThought(seq, total int, overrides map[string]any) map[string]any {
	raw := map[string]any{
		"text":                 "step",
		"stage":                "MODEL",
		"sequenceNumber":       float64(seq),
		"estimatedTotal":       float64(total),
		"confidence":           0.5,
		"dependsOn":            []any{},
		"assumptions":          []any{},
		"continuationExpected": true,
	}
	for k, v := range overrides {
		raw[k] = v
	}
	return raw
}

func mustSubmit(t *testing.T, tr *Tracker, raw map[string]any) *domain.Summary {
	t.Helper()
	sum, err := tr.Submit(raw)
	if err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
	return sum
}

func rejectionOf(t *testing.T, err error) *domain.Rejection {
	t.Helper()
	if err == nil {
		t.Fatal("expected a rejection, got nil")
	}
	var rej *domain.Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected *domain.Rejection, got %T", err)
	}
	return rej
}

func TestTracker_FirstSubmission(t *testing.T) {
	tr := newTestTracker()

	sum := mustSubmit(t, tr, rawThought(1, 3, nil))

	if sum.HistoryLength != 1 {
		t.Fatalf("expected historyLength 1, got %d", sum.HistoryLength)
	}
	if sum.SequenceNumber != 1 || sum.EstimatedTotal != 3 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if tr.Len() != 1 {
		t.Fatalf("expected history length 1, got %d", tr.Len())
	}
}

func TestTracker_Scenario(t *testing.T) {
	tr := newTestTracker()

	sum := mustSubmit(t, tr, rawThought(1, 2, map[string]any{
		"text":  "A",
		"stage": "PROBLEM_DEFINITION",
	}))
	if sum.HistoryLength != 1 {
		t.Fatalf("expected historyLength 1, got %d", sum.HistoryLength)
	}

	sum = mustSubmit(t, tr, rawThought(2, 2, map[string]any{
		"dependsOn":            []any{float64(1)},
		"continuationExpected": false,
	}))
	if sum.HistoryLength != 2 {
		t.Fatalf("expected historyLength 2, got %d", sum.HistoryLength)
	}

	_, err := tr.Submit(rawThought(3, 3, map[string]any{
		"dependsOn": []any{float64(5)},
	}))
	rej := rejectionOf(t, err)
	if rej.Kind != domain.KindDependency {
		t.Fatalf("expected dependency rejection, got %s", rej.Kind)
	}
	if tr.Len() != 2 {
		t.Fatalf("history must be unchanged after rejection, got length %d", tr.Len())
	}
}

func TestTracker_FutureAndSelfDependencies(t *testing.T) {
	tests := []struct {
		name string
		dep  int
	}{
		{"self dependency", 2},
		{"future dependency", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTracker()
			mustSubmit(t, tr, rawThought(1, 3, nil))

			_, err := tr.Submit(rawThought(2, 3, map[string]any{
				"dependsOn": []any{float64(tt.dep)},
			}))
			rej := rejectionOf(t, err)
			if rej.Kind != domain.KindDependency {
				t.Fatalf("expected dependency rejection, got %s", rej.Kind)
			}
			if !strings.Contains(rej.Message, "future or current") {
				t.Fatalf("unexpected message: %s", rej.Message)
			}
			if tr.Len() != 1 {
				t.Fatalf("history must be unchanged, got length %d", tr.Len())
			}
		})
	}
}

func TestTracker_NonexistentDependency(t *testing.T) {
	tr := newTestTracker()
	mustSubmit(t, tr, rawThought(2, 3, nil)) // sequence numbers need not be contiguous

	_, err := tr.Submit(rawThought(3, 3, map[string]any{
		"dependsOn": []any{float64(1)}, // earlier than 3, but never accepted
	}))
	rej := rejectionOf(t, err)
	if rej.Kind != domain.KindDependency {
		t.Fatalf("expected dependency rejection, got %s", rej.Kind)
	}
	if !strings.Contains(rej.Message, "never accepted") {
		t.Fatalf("unexpected message: %s", rej.Message)
	}
}

func TestTracker_EstimatedTotalCorrection(t *testing.T) {
	tr := newTestTracker()
	mustSubmit(t, tr, rawThought(1, 2, nil))
	mustSubmit(t, tr, rawThought(2, 2, nil))

	// Sequence beyond the estimate: the total is raised, not rejected.
	sum := mustSubmit(t, tr, rawThought(5, 2, nil))
	if sum.EstimatedTotal != 5 {
		t.Fatalf("expected corrected estimatedTotal 5, got %d", sum.EstimatedTotal)
	}

	// The corrected value is stored, not just reported.
	history := tr.History()
	if got := history[len(history)-1].EstimatedTotal; got != 5 {
		t.Fatalf("expected stored estimatedTotal 5, got %d", got)
	}
	if tr.EstimatedTotal() != 5 {
		t.Fatalf("expected tracker estimate 5, got %d", tr.EstimatedTotal())
	}
}

func TestTracker_Revisions(t *testing.T) {
	revision := func(target int) map[string]any {
		return map[string]any{
			"revision": map[string]any{
				"isRevision":           true,
				"targetSequenceNumber": float64(target),
			},
		}
	}

	t.Run("valid revision", func(t *testing.T) {
		tr := newTestTracker()
		mustSubmit(t, tr, rawThought(1, 3, nil))

		sum := mustSubmit(t, tr, rawThought(2, 3, revision(1)))
		if !sum.IsRevision || sum.RevisionTarget != 1 {
			t.Fatalf("unexpected summary: %+v", sum)
		}
	})

	t.Run("future target", func(t *testing.T) {
		tr := newTestTracker()
		mustSubmit(t, tr, rawThought(1, 3, nil))

		_, err := tr.Submit(rawThought(2, 3, revision(4)))
		rej := rejectionOf(t, err)
		if rej.Kind != domain.KindRevision {
			t.Fatalf("expected revision rejection, got %s", rej.Kind)
		}
	})

	t.Run("same thought", func(t *testing.T) {
		tr := newTestTracker()
		mustSubmit(t, tr, rawThought(1, 3, nil))

		_, err := tr.Submit(rawThought(2, 3, revision(2)))
		rej := rejectionOf(t, err)
		if rej.Kind != domain.KindRevision {
			t.Fatalf("expected revision rejection, got %s", rej.Kind)
		}
	})

	t.Run("nonexistent target", func(t *testing.T) {
		tr := newTestTracker()
		mustSubmit(t, tr, rawThought(3, 4, nil))

		_, err := tr.Submit(rawThought(4, 4, revision(2)))
		rej := rejectionOf(t, err)
		if rej.Kind != domain.KindRevision {
			t.Fatalf("expected revision rejection, got %s", rej.Kind)
		}
		if !strings.Contains(rej.Message, "does not exist") {
			t.Fatalf("unexpected message: %s", rej.Message)
		}
	})

	t.Run("flag without target is allowed", func(t *testing.T) {
		tr := newTestTracker()
		mustSubmit(t, tr, rawThought(1, 2, nil))

		sum := mustSubmit(t, tr, rawThought(2, 2, map[string]any{
			"revision": map[string]any{"isRevision": true},
		}))
		if !sum.IsRevision || sum.RevisionTarget != 0 {
			t.Fatalf("unexpected summary: %+v", sum)
		}
	})
}

func TestTracker_RejectionContext(t *testing.T) {
	tr := newTestTracker()
	mustSubmit(t, tr, rawThought(1, 3, nil))

	bad := rawThought(2, 3, map[string]any{"confidence": 1.5})
	_, err := tr.Submit(bad)

	rej := rejectionOf(t, err)
	if rej.Kind != domain.KindRange {
		t.Fatalf("expected range rejection, got %s", rej.Kind)
	}
	if rej.HistoryLength != 1 {
		t.Fatalf("expected historyLength 1 in rejection, got %d", rej.HistoryLength)
	}
	if rej.LastSequence != 1 {
		t.Fatalf("expected lastSequence 1 in rejection, got %d", rej.LastSequence)
	}
	if rej.Input["confidence"] != 1.5 {
		t.Fatal("rejection must echo the raw input")
	}
}

func TestTracker_UsableAfterRejection(t *testing.T) {
	tr := newTestTracker()

	if _, err := tr.Submit(rawThought(1, 3, map[string]any{"confidence": 1.5})); err == nil {
		t.Fatal("expected rejection")
	}
	if tr.Len() != 0 {
		t.Fatalf("expected empty history, got %d", tr.Len())
	}

	// The tracker is not poisoned; a corrected record goes through.
	sum := mustSubmit(t, tr, rawThought(1, 3, nil))
	if sum.HistoryLength != 1 {
		t.Fatalf("expected historyLength 1, got %d", sum.HistoryLength)
	}
}

func TestTracker_SummaryFlags(t *testing.T) {
	tr := newTestTracker()
	mustSubmit(t, tr, rawThought(1, 3, nil))

	sum := mustSubmit(t, tr, rawThought(2, 3, map[string]any{
		"experiment": map[string]any{
			"description": "benchmark",
			"results":     "ok",
			"confidence":  0.3,
			"limitations": []any{},
		},
		"recheckRequest": map[string]any{
			"stageToRecheck": "MODEL",
			"reason":         "benchmark contradicts the model",
		},
	}))

	if !sum.HasExperiment {
		t.Fatal("expected hasExperiment")
	}
	if !sum.HasRecheckRequest {
		t.Fatal("expected hasRecheckRequest")
	}
}

func TestTracker_HistoryIsACopy(t *testing.T) {
	tr := newTestTracker()
	mustSubmit(t, tr, rawThought(1, 1, nil))

	h := tr.History()
	h[0].Text = "mutated"

	if tr.History()[0].Text != "step" {
		t.Fatal("History must return a copy")
	}
}
