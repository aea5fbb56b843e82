package domain

import "fmt"

// Stage is the methodology step a thought belongs to.
type Stage string

const (
	StageProblemDefinition Stage = "PROBLEM_DEFINITION"
	StageAbstraction       Stage = "ABSTRACTION"
	StageConstraints       Stage = "CONSTRAINTS"
	StageModel             Stage = "MODEL"
	StageProof             Stage = "PROOF"
	StageImplementation    Stage = "IMPLEMENTATION"
)

const (
	StageVariantCanonical = "canonical"
	StageVariantLegacy    = "legacy"
)

// StageSet is the closed five-member enumeration in effect for one deployment.
// The first member changed names over the methodology's history
// (ABSTRACTION became PROBLEM_DEFINITION); both sets are valid and the
// choice is startup configuration, not a runtime type.
type StageSet struct {
	variant string
	members [5]Stage
}

func CanonicalStages() StageSet {
	return StageSet{
		variant: StageVariantCanonical,
		members: [5]Stage{StageProblemDefinition, StageConstraints, StageModel, StageProof, StageImplementation},
	}
}

func LegacyStages() StageSet {
	return StageSet{
		variant: StageVariantLegacy,
		members: [5]Stage{StageAbstraction, StageConstraints, StageModel, StageProof, StageImplementation},
	}
}

// StagesForVariant resolves a configured variant name to its stage set.
func StagesForVariant(variant string) (StageSet, error) {
	switch variant {
	case StageVariantCanonical, "":
		return CanonicalStages(), nil
	case StageVariantLegacy:
		return LegacyStages(), nil
	}
	return StageSet{}, fmt.Errorf("unknown stage variant %q", variant)
}

func (s StageSet) Variant() string {
	return s.variant
}

func (s StageSet) Members() []Stage {
	out := make([]Stage, len(s.members))
	copy(out, s.members[:])
	return out
}

func (s StageSet) Valid(stage string) bool {
	for _, m := range s.members {
		if Stage(stage) == m {
			return true
		}
	}
	return false
}
