package domain

// Revision marks a thought as superseding an earlier one.
type Revision struct {
	IsRevision           bool `json:"isRevision"`
	TargetSequenceNumber int  `json:"targetSequenceNumber,omitempty"`
}

// RecheckRequest flags that a stage's conclusions should be revisited.
// It references a stage, never a specific sequence number.
type RecheckRequest struct {
	StageToRecheck Stage  `json:"stageToRecheck"`
	Reason         string `json:"reason"`
	NewInformation string `json:"newInformation,omitempty"`
}

type Proof struct {
	Hypothesis string `json:"hypothesis"`
	Validation string `json:"validation"`
}

type Experiment struct {
	Description string   `json:"description"`
	Results     string   `json:"results"`
	Confidence  float64  `json:"confidence"`
	Limitations []string `json:"limitations"`
}

type ImplementationNotes struct {
	Constraints      []string `json:"constraints"`
	ProposedSolution string   `json:"proposedSolution"`
}

// Thought is one validated, accepted step in the reasoning sequence.
// Confidence is the caller's uncertainty, in [0,1].
type Thought struct {
	Text                 string               `json:"text"`
	Stage                Stage                `json:"stage"`
	SequenceNumber       int                  `json:"sequenceNumber"`
	EstimatedTotal       int                  `json:"estimatedTotal"`
	Confidence           float64              `json:"confidence"`
	DependsOn            []int                `json:"dependsOn"`
	Assumptions          []string             `json:"assumptions"`
	ContinuationExpected bool                 `json:"continuationExpected"`
	Revision             *Revision            `json:"revision,omitempty"`
	RecheckRequest       *RecheckRequest      `json:"recheckRequest,omitempty"`
	Proof                *Proof               `json:"proof,omitempty"`
	Experiment           *Experiment          `json:"experiment,omitempty"`
	ImplementationNotes  *ImplementationNotes `json:"implementationNotes,omitempty"`
}

// IsRevision reports whether this thought revises an earlier one.
func (t *Thought) IsRevision() bool {
	return t.Revision != nil && t.Revision.IsRevision
}

// RevisionTarget returns the revised sequence number, or 0.
func (t *Thought) RevisionTarget() int {
	if t.Revision == nil || !t.Revision.IsRevision {
		return 0
	}
	return t.Revision.TargetSequenceNumber
}

// Summary is what the tracker reports back to the caller on acceptance.
type Summary struct {
	SequenceNumber       int     `json:"sequenceNumber"`
	EstimatedTotal       int     `json:"estimatedTotal"`
	ContinuationExpected bool    `json:"continuationExpected"`
	Stage                Stage   `json:"stage"`
	Confidence           float64 `json:"confidence"`
	HistoryLength        int     `json:"historyLength"`
	IsRevision           bool    `json:"isRevision"`
	RevisionTarget       int     `json:"revisionTarget,omitempty"`
	HasExperiment        bool    `json:"hasExperiment"`
	HasRecheckRequest    bool    `json:"hasRecheckRequest"`
}
