package render

import (
	"strings"
	"testing"

	"github.com/thoughtline/thoughtline/internal/domain"
)

func TestConsole_RenderThought(t *testing.T) {
	var buf strings.Builder
	c := NewConsole(&buf)

	th := &domain.Thought{
		Text:           "Model the queue as M/M/1",
		Stage:          domain.StageModel,
		SequenceNumber: 3,
		EstimatedTotal: 5,
		Confidence:     0.4,
		DependsOn:      []int{1, 2},
		Assumptions:    []string{"arrivals are Poisson"},
	}
	sum := &domain.Summary{
		SequenceNumber: 3,
		EstimatedTotal: 5,
		Stage:          domain.StageModel,
	}

	if err := c.RenderThought(th, sum); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Thought 3/5", "MODEL", "M/M/1", "arrivals are Poisson", "[1 2]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsole_RenderRevision(t *testing.T) {
	var buf strings.Builder
	c := NewConsole(&buf)

	th := &domain.Thought{
		Text:           "Corrected constraint bound",
		Stage:          domain.StageConstraints,
		SequenceNumber: 4,
		EstimatedTotal: 5,
		Revision:       &domain.Revision{IsRevision: true, TargetSequenceNumber: 2},
	}
	sum := &domain.Summary{
		SequenceNumber: 4,
		EstimatedTotal: 5,
		Stage:          domain.StageConstraints,
		IsRevision:     true,
		RevisionTarget: 2,
	}

	if err := c.RenderThought(th, sum); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(buf.String(), "revises #2") {
		t.Errorf("output missing revision marker:\n%s", buf.String())
	}
}
