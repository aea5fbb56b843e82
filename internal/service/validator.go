package service

import (
	"fmt"
	"math"

	"github.com/thoughtline/thoughtline/internal/domain"
)

// Validator turns one untyped submission into a fully-typed Thought.
// It is stateless and checks each record in a fixed order, stopping at the
// first violation. Cross-record consistency (dependencies, revision targets)
// belongs to the Tracker, not here.
type Validator struct {
	stages domain.StageSet
}

func NewValidator(stages domain.StageSet) *Validator {
	return &Validator{stages: stages}
}

// Validate checks the raw record and returns the typed Thought, or the
// first violated constraint.
func (v *Validator) Validate(raw map[string]any) (*domain.Thought, *domain.ValidationError) {
	text, verr := requireString(raw, "text")
	if verr != nil {
		return nil, verr
	}

	stage, verr := v.requireStage(raw, "stage")
	if verr != nil {
		return nil, verr
	}

	seq, verr := requirePositiveInt(raw, "sequenceNumber")
	if verr != nil {
		return nil, verr
	}

	total, verr := requirePositiveInt(raw, "estimatedTotal")
	if verr != nil {
		return nil, verr
	}

	confidence, verr := requireUnitInterval(raw, "confidence")
	if verr != nil {
		return nil, verr
	}

	dependsOn, verr := requireIntSlice(raw, "dependsOn")
	if verr != nil {
		return nil, verr
	}

	assumptions, verr := requireStringSlice(raw, "assumptions")
	if verr != nil {
		return nil, verr
	}

	cont, verr := requireBool(raw, "continuationExpected")
	if verr != nil {
		return nil, verr
	}

	th := &domain.Thought{
		Text:                 text,
		Stage:                stage,
		SequenceNumber:       seq,
		EstimatedTotal:       total,
		Confidence:           confidence,
		DependsOn:            dependsOn,
		Assumptions:          assumptions,
		ContinuationExpected: cont,
	}

	if th.RecheckRequest, verr = v.validateRecheck(raw); verr != nil {
		return nil, verr
	}
	if th.Proof, verr = validateProof(raw); verr != nil {
		return nil, verr
	}
	if th.Experiment, verr = validateExperiment(raw); verr != nil {
		return nil, verr
	}
	if th.ImplementationNotes, verr = validateImplementationNotes(raw); verr != nil {
		return nil, verr
	}
	if th.Revision, verr = validateRevision(raw); verr != nil {
		return nil, verr
	}

	return th, nil
}

func (v *Validator) validateRecheck(raw map[string]any) (*domain.RecheckRequest, *domain.ValidationError) {
	obj, verr := optionalObject(raw, "recheckRequest")
	if obj == nil || verr != nil {
		return nil, verr
	}

	stageVal, ok := obj["stageToRecheck"].(string)
	if !ok || !v.stages.Valid(stageVal) {
		return nil, &domain.ValidationError{
			Kind:    domain.KindEnum,
			Field:   "recheckRequest.stageToRecheck",
			Message: fmt.Sprintf("recheckRequest.stageToRecheck must be one of %v, got %s", v.stages.Members(), received(obj["stageToRecheck"])),
		}
	}

	reason, ok := obj["reason"].(string)
	if !ok || reason == "" {
		return nil, shapeError("recheckRequest.reason", "a non-empty string", obj["reason"])
	}

	req := &domain.RecheckRequest{StageToRecheck: domain.Stage(stageVal), Reason: reason}

	if info, present := obj["newInformation"]; present {
		s, ok := info.(string)
		if !ok {
			return nil, shapeError("recheckRequest.newInformation", "a string", info)
		}
		req.NewInformation = s
	}

	return req, nil
}

func validateProof(raw map[string]any) (*domain.Proof, *domain.ValidationError) {
	obj, verr := optionalObject(raw, "proof")
	if obj == nil || verr != nil {
		return nil, verr
	}

	hypothesis, ok := obj["hypothesis"].(string)
	if !ok || hypothesis == "" {
		return nil, shapeError("proof.hypothesis", "a non-empty string", obj["hypothesis"])
	}
	validation, ok := obj["validation"].(string)
	if !ok || validation == "" {
		return nil, shapeError("proof.validation", "a non-empty string", obj["validation"])
	}

	return &domain.Proof{Hypothesis: hypothesis, Validation: validation}, nil
}

func validateExperiment(raw map[string]any) (*domain.Experiment, *domain.ValidationError) {
	obj, verr := optionalObject(raw, "experiment")
	if obj == nil || verr != nil {
		return nil, verr
	}

	description, ok := obj["description"].(string)
	if !ok || description == "" {
		return nil, shapeError("experiment.description", "a non-empty string", obj["description"])
	}
	results, ok := obj["results"].(string)
	if !ok || results == "" {
		return nil, shapeError("experiment.results", "a non-empty string", obj["results"])
	}

	confidence, verr := requireUnitInterval(obj, "experiment.confidence", "confidence")
	if verr != nil {
		return nil, verr
	}

	limitations, verr := stringSliceAt(obj, "experiment.limitations", "limitations")
	if verr != nil {
		return nil, verr
	}

	return &domain.Experiment{
		Description: description,
		Results:     results,
		Confidence:  confidence,
		Limitations: limitations,
	}, nil
}

func validateImplementationNotes(raw map[string]any) (*domain.ImplementationNotes, *domain.ValidationError) {
	obj, verr := optionalObject(raw, "implementationNotes")
	if obj == nil || verr != nil {
		return nil, verr
	}

	constraints, verr := stringSliceAt(obj, "implementationNotes.constraints", "constraints")
	if verr != nil {
		return nil, verr
	}

	solution, ok := obj["proposedSolution"].(string)
	if !ok || solution == "" {
		return nil, shapeError("implementationNotes.proposedSolution", "a non-empty string", obj["proposedSolution"])
	}

	return &domain.ImplementationNotes{Constraints: constraints, ProposedSolution: solution}, nil
}

func validateRevision(raw map[string]any) (*domain.Revision, *domain.ValidationError) {
	obj, verr := optionalObject(raw, "revision")
	if obj == nil || verr != nil {
		return nil, verr
	}

	rev := &domain.Revision{}

	isRevVal, isRevPresent := obj["isRevision"]
	if isRevPresent {
		b, ok := isRevVal.(bool)
		if !ok {
			return nil, shapeError("revision.isRevision", "a boolean", isRevVal)
		}
		rev.IsRevision = b
	}

	if target, present := obj["targetSequenceNumber"]; present {
		n, ok := asInt(target)
		if !ok || n <= 0 {
			return nil, shapeError("revision.targetSequenceNumber", "a positive integer", target)
		}
		// A revision target without the revision flag is a contradiction,
		// not a typo worth guessing at.
		if !rev.IsRevision {
			return nil, &domain.ValidationError{
				Kind:    domain.KindRevision,
				Field:   "revision.targetSequenceNumber",
				Message: "revision.targetSequenceNumber provided without isRevision set to true",
			}
		}
		rev.TargetSequenceNumber = n
	}

	return rev, nil
}

// received renders a value for a diagnostic: its JSON type, plus the value
// itself for small scalars.
func received(v any) string {
	switch t := v.(type) {
	case nil:
		return "nothing"
	case string:
		if len(t) <= 40 {
			return fmt.Sprintf("string %q", t)
		}
		return "string"
	case bool:
		return fmt.Sprintf("boolean %v", t)
	case float64:
		return fmt.Sprintf("number %v", t)
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func shapeError(field, expected string, got any) *domain.ValidationError {
	return &domain.ValidationError{
		Kind:    domain.KindShape,
		Field:   field,
		Message: fmt.Sprintf("%s must be %s, got %s", field, expected, received(got)),
	}
}

func requireString(raw map[string]any, field string) (string, *domain.ValidationError) {
	s, ok := raw[field].(string)
	if !ok || s == "" {
		return "", shapeError(field, "a non-empty string", raw[field])
	}
	return s, nil
}

func requireBool(raw map[string]any, field string) (bool, *domain.ValidationError) {
	b, ok := raw[field].(bool)
	if !ok {
		return false, shapeError(field, "a boolean", raw[field])
	}
	return b, nil
}

// asInt accepts the numeric forms a JSON decoder can hand us.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func requirePositiveInt(raw map[string]any, field string) (int, *domain.ValidationError) {
	v, present := raw[field]
	if !present {
		return 0, shapeError(field, "a positive integer", nil)
	}
	if _, ok := asFloat(v); !ok {
		return 0, shapeError(field, "a positive integer", v)
	}
	n, ok := asInt(v)
	if !ok || n <= 0 {
		return 0, &domain.ValidationError{
			Kind:    domain.KindRange,
			Field:   field,
			Message: fmt.Sprintf("%s must be a positive integer, got %s", field, received(v)),
		}
	}
	return n, nil
}

// requireUnitInterval checks a confidence value: numeric and within [0,1]
// inclusive. keys narrows the lookup when the value sits inside a nested
// object under a different key than the diagnostic field name.
func requireUnitInterval(raw map[string]any, field string, keys ...string) (float64, *domain.ValidationError) {
	key := field
	if len(keys) > 0 {
		key = keys[0]
	}
	v := raw[key]
	f, ok := asFloat(v)
	if !ok {
		return 0, shapeError(field, "a number", v)
	}
	if f < 0 || f > 1 {
		return 0, &domain.ValidationError{
			Kind:    domain.KindRange,
			Field:   field,
			Message: fmt.Sprintf("%s (uncertainty) must be between 0 and 1 inclusive, got %v", field, f),
		}
	}
	return f, nil
}

func requireIntSlice(raw map[string]any, field string) ([]int, *domain.ValidationError) {
	arr, ok := raw[field].([]any)
	if !ok {
		return nil, shapeError(field, "an array of integers", raw[field])
	}
	out := make([]int, 0, len(arr))
	for i, el := range arr {
		n, ok := asInt(el)
		if !ok {
			return nil, shapeError(fmt.Sprintf("%s[%d]", field, i), "an integer", el)
		}
		out = append(out, n)
	}
	return out, nil
}

func requireStringSlice(raw map[string]any, field string) ([]string, *domain.ValidationError) {
	return stringSliceAt(raw, field, field)
}

func stringSliceAt(raw map[string]any, field, key string) ([]string, *domain.ValidationError) {
	arr, ok := raw[key].([]any)
	if !ok {
		return nil, shapeError(field, "an array of strings", raw[key])
	}
	out := make([]string, 0, len(arr))
	for i, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, shapeError(fmt.Sprintf("%s[%d]", field, i), "a string", el)
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalObject(raw map[string]any, field string) (map[string]any, *domain.ValidationError) {
	v, present := raw[field]
	if !present || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, shapeError(field, "an object", v)
	}
	return obj, nil
}

func (v *Validator) requireStage(raw map[string]any, field string) (domain.Stage, *domain.ValidationError) {
	val, present := raw[field]
	if !present {
		return "", shapeError(field, "a stage name", nil)
	}
	s, ok := val.(string)
	if !ok {
		return "", shapeError(field, "a stage name", val)
	}
	if !v.stages.Valid(s) {
		return "", &domain.ValidationError{
			Kind:    domain.KindEnum,
			Field:   field,
			Message: fmt.Sprintf("%s must be one of %v, got %q", field, v.stages.Members(), s),
		}
	}
	return domain.Stage(s), nil
}
