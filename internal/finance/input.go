package finance

import (
	"encoding/json"

	"github.com/garyjia/expense-compliance-agent/internal/models"
)

// QueryKind discriminates the outcome of classifying a raw query.
type QueryKind int

const (
	// QueryValidBatch means the query parsed into an expense batch.
	QueryValidBatch QueryKind = iota
	// QueryMissingInfo means the query was readable but lacks the
	// expenses field.
	QueryMissingInfo
	// QueryParseFault means the query could not be read at all.
	QueryParseFault
)

// Caller-facing prompts for the two recoverable classification
// outcomes.
const (
	PromptMissingExpenses = "请提供包含expenses字段的报销数据，格式为JSON"
	PromptInvalidJSON     = "请提供有效的JSON格式报销数据"
)

// ClassifiedQuery is the typed result of one classification pass.
// Batch is set only when Kind is QueryValidBatch.
type ClassifiedQuery struct {
	Kind  QueryKind
	Batch *models.ExpenseBatch
}

// Prompt returns the caller-facing explanation for a non-valid
// classification.
func (q ClassifiedQuery) Prompt() string {
	switch q.Kind {
	case QueryMissingInfo:
		return PromptMissingExpenses
	default:
		return PromptInvalidJSON
	}
}

// ClassifyQuery inspects a raw query once and dispatches it into
// exactly one of the three outcomes. Malformed input is always
// classified, never surfaced as an error.
func ClassifyQuery(query string) ClassifiedQuery {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(query), &fields); err != nil {
		if json.Valid([]byte(query)) {
			// Well-formed JSON that is not an object cannot carry an
			// expenses field.
			return ClassifiedQuery{Kind: QueryMissingInfo}
		}
		return ClassifiedQuery{Kind: QueryParseFault}
	}

	raw, ok := fields["expenses"]
	if !ok {
		return ClassifiedQuery{Kind: QueryMissingInfo}
	}

	var items []models.ExpenseItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return ClassifiedQuery{Kind: QueryParseFault}
	}

	return ClassifiedQuery{
		Kind:  QueryValidBatch,
		Batch: &models.ExpenseBatch{Expenses: items},
	}
}
