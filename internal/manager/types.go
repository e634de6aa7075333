package manager

import (
	"time"

	"breedd/internal/model"
)

// State represents the lifecycle state of the manager.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
)

// PipelineState is a step of one identification request. Requests move
// through the states in order; StateFailed is terminal.
type PipelineState string

const (
	StateReceived          PipelineState = "received"
	StatePreprocessed      PipelineState = "preprocessed"
	StateStage1Evaluated   PipelineState = "stage1_evaluated"
	StateStage2Selected    PipelineState = "stage2_model_selected"
	StateStage2Evaluated   PipelineState = "stage2_evaluated"
	StateResultAssembled   PipelineState = "result_assembled"
	StateSaliencyRequested PipelineState = "saliency_requested"
	StateDone              PipelineState = "done"
	StateFailed            PipelineState = "failed"
)

// Candidate is one ranked breed.
type Candidate struct {
	Label string
	// Confidence is a percentage in [0,100] rounded to 2 decimals.
	Confidence float64
}

// Prediction is the assembled result of both stages.
type Prediction struct {
	AnimalType           string
	AnimalTypeConfidence float64
	Breed                string
	BreedConfidence      float64
	// TopK is sorted by descending confidence; TopK[0] is the breed.
	TopK []Candidate
	// ProcessingTime spans Received to ResultAssembled.
	ProcessingTime time.Duration
	// ModelLoaded is false when any handle serves untrained weights.
	ModelLoaded bool
	// Classifier is the Stage-2 handle that produced the breed.
	Classifier *model.Classifier
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State State
	Err   string
}

// handleSlots are the admission primitives of one classifier.
type handleSlots struct {
	name     string
	genCh    chan struct{} // in-flight evaluations
	queueCh  chan struct{} // queue slots, held until the evaluation ends
	lastUsed time.Time
}
