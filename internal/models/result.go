package models

// ResultKind discriminates the payload of an agent result.
type ResultKind string

const (
	// ResultBatch carries a BatchResult from the expense evaluator.
	ResultBatch ResultKind = "batch"
	// ResultDecision carries a taxi reimbursement Decision.
	ResultDecision ResultKind = "decision"
	// ResultForm carries a request form the caller must complete.
	ResultForm ResultKind = "form"
	// ResultMissingInfo signals that the query could not be interpreted
	// as a well-formed request; Message explains what is needed.
	ResultMissingInfo ResultKind = "missing_info"
	// ResultFailure reports an internal fault as text instead of
	// propagating it. Message holds the failure description.
	ResultFailure ResultKind = "failure"
)

// Result is the value every agent operation returns. Exactly one
// payload field matching Kind is set; errors never cross the agent
// boundary as Go errors.
type Result struct {
	Kind     ResultKind    `json:"kind"`
	Batch    *BatchResult  `json:"batch,omitempty"`
	Decision *Decision     `json:"decision,omitempty"`
	Form     *FormResponse `json:"form,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// MissingInfo builds a missing-information result with the given
// caller-facing prompt.
func MissingInfo(message string) Result {
	return Result{Kind: ResultMissingInfo, Message: "MISSING_INFO: " + message}
}

// Failure builds a textual failure result.
func Failure(message string) Result {
	return Result{Kind: ResultFailure, Message: message}
}
