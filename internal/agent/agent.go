// Package agent exposes the policy engine behind the two operations an
// external request-handling layer calls: a synchronous invoke and an
// incremental stream. No error ever crosses these operations; every
// outcome, including internal faults, is a result value.
package agent

import (
	"context"

	"github.com/garyjia/expense-compliance-agent/internal/models"
	"github.com/garyjia/expense-compliance-agent/internal/streaming"
)

// Agent is one reimbursement evaluator behind the uniform call
// surface. The session id is opaque correlation context; the engine
// never consults it.
type Agent interface {
	// Name identifies the agent in routes and logs.
	Name() string

	// Invoke evaluates the query synchronously.
	Invoke(ctx context.Context, query, sessionID string) models.Result

	// Stream evaluates the query incrementally: zero or more progress
	// events, then exactly one terminal event whose payload matches
	// what Invoke would return for the same input.
	Stream(ctx context.Context, query, sessionID string) <-chan streaming.Event
}

// ExpenseExtractor turns free text into an expense batch. Optional:
// agents treat a nil extractor as "structured input only".
type ExpenseExtractor interface {
	ExtractExpenses(ctx context.Context, text string) (*models.ExpenseBatch, error)
}

// TaxiExtractor turns free text into taxi request fields.
type TaxiExtractor interface {
	ExtractTaxiQuery(ctx context.Context, text string) (*models.TaxiQuery, error)
}
