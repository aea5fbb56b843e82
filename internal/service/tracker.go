package service

import (
	"fmt"

	"github.com/thoughtline/thoughtline/internal/domain"
)

// Tracker owns the ordered, append-only history of accepted thoughts for
// one session. It is single-threaded: callers serialize Submit externally.
// A rejection never touches history and never poisons the tracker.
type Tracker struct {
	validator *Validator
	history   []domain.Thought
}

func NewTracker(validator *Validator) *Tracker {
	return &Tracker{validator: validator}
}

// Submit validates the raw record against the record-level contract, then
// against the accumulated history, and appends it on success. The returned
// error is always a *domain.Rejection.
func (t *Tracker) Submit(raw map[string]any) (*domain.Summary, error) {
	th, verr := t.validator.Validate(raw)
	if verr != nil {
		return nil, t.reject(raw, verr)
	}

	// The running total only ever moves up. Correcting it is a side effect
	// of acceptance, not a failure, and happens before the append so the
	// corrected value is both stored and reported.
	if th.SequenceNumber > th.EstimatedTotal {
		th.EstimatedTotal = th.SequenceNumber
	}

	for _, dep := range th.DependsOn {
		if dep >= th.SequenceNumber {
			return nil, t.reject(raw, &domain.ValidationError{
				Kind:    domain.KindDependency,
				Field:   "dependsOn",
				Message: fmt.Sprintf("dependsOn references a future or current thought: %d >= %d", dep, th.SequenceNumber),
			})
		}
		if !t.exists(dep) {
			return nil, t.reject(raw, &domain.ValidationError{
				Kind:    domain.KindDependency,
				Field:   "dependsOn",
				Message: fmt.Sprintf("dependsOn references a thought that was never accepted: %d", dep),
			})
		}
	}

	if th.IsRevision() && th.Revision.TargetSequenceNumber > 0 {
		target := th.Revision.TargetSequenceNumber
		if target >= th.SequenceNumber {
			return nil, t.reject(raw, &domain.ValidationError{
				Kind:    domain.KindRevision,
				Field:   "revision.targetSequenceNumber",
				Message: fmt.Sprintf("cannot revise a future or the same thought: %d >= %d", target, th.SequenceNumber),
			})
		}
		if !t.exists(target) {
			return nil, t.reject(raw, &domain.ValidationError{
				Kind:    domain.KindRevision,
				Field:   "revision.targetSequenceNumber",
				Message: fmt.Sprintf("revision target does not exist: %d", target),
			})
		}
	}

	t.history = append(t.history, *th)

	return &domain.Summary{
		SequenceNumber:       th.SequenceNumber,
		EstimatedTotal:       th.EstimatedTotal,
		ContinuationExpected: th.ContinuationExpected,
		Stage:                th.Stage,
		Confidence:           th.Confidence,
		HistoryLength:        len(t.history),
		IsRevision:           th.IsRevision(),
		RevisionTarget:       th.RevisionTarget(),
		HasExperiment:        th.Experiment != nil,
		HasRecheckRequest:    th.RecheckRequest != nil,
	}, nil
}

func (t *Tracker) reject(raw map[string]any, verr *domain.ValidationError) *domain.Rejection {
	return &domain.Rejection{
		Kind:          verr.Kind,
		Field:         verr.Field,
		Message:       verr.Message,
		Input:         raw,
		HistoryLength: len(t.history),
		LastSequence:  t.LastSequence(),
	}
}

func (t *Tracker) exists(seq int) bool {
	for _, th := range t.history {
		if th.SequenceNumber == seq {
			return true
		}
	}
	return false
}

// History returns a copy of the accepted thoughts in acceptance order.
func (t *Tracker) History() []domain.Thought {
	out := make([]domain.Thought, len(t.history))
	copy(out, t.history)
	return out
}

func (t *Tracker) Len() int {
	return len(t.history)
}

// LastSequence returns the sequence number of the most recently accepted
// thought, or 0 for an empty history.
func (t *Tracker) LastSequence() int {
	if len(t.history) == 0 {
		return 0
	}
	return t.history[len(t.history)-1].SequenceNumber
}

// EstimatedTotal returns the most recently accepted thought's running
// total estimate, or 0 for an empty history.
func (t *Tracker) EstimatedTotal() int {
	if len(t.history) == 0 {
		return 0
	}
	return t.history[len(t.history)-1].EstimatedTotal
}
