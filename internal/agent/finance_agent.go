package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/finance"
	"github.com/garyjia/expense-compliance-agent/internal/models"
	"github.com/garyjia/expense-compliance-agent/internal/streaming"
)

const financeProgressMessage = "正在处理报销合规性检查..."

// FinanceAgent evaluates categorized expense batches.
type FinanceAgent struct {
	evaluator *finance.Evaluator
	extractor ExpenseExtractor
	logger    *zap.Logger
}

// NewFinanceAgent creates the expense compliance agent. The extractor
// may be nil; free-text queries then resolve to missing-information
// results.
func NewFinanceAgent(evaluator *finance.Evaluator, extractor ExpenseExtractor, logger *zap.Logger) *FinanceAgent {
	return &FinanceAgent{
		evaluator: evaluator,
		extractor: extractor,
		logger:    logger,
	}
}

// Name implements Agent.
func (a *FinanceAgent) Name() string { return "finance" }

// Invoke classifies the query and evaluates the batch. Malformed input
// becomes a missing-information result; an unexpected fault becomes a
// textual failure result.
func (a *FinanceAgent) Invoke(ctx context.Context, query, sessionID string) (result models.Result) {
	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("Finance agent fault recovered",
				zap.String("session_id", sessionID),
				zap.Any("panic", p))
			result = models.Failure(fmt.Sprintf("处理报销请求时出错: %v", p))
		}
	}()

	classified := finance.ClassifyQuery(query)

	if classified.Kind == finance.QueryParseFault && a.extractor != nil {
		if batch, err := a.extractor.ExtractExpenses(ctx, query); err == nil {
			a.logger.Info("Free-text query extracted into expense batch",
				zap.String("session_id", sessionID))
			classified = finance.ClassifiedQuery{Kind: finance.QueryValidBatch, Batch: batch}
		} else {
			a.logger.Warn("Expense extraction failed, treating query as malformed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}

	if classified.Kind != finance.QueryValidBatch {
		return models.MissingInfo(classified.Prompt())
	}

	batchResult := a.evaluator.Evaluate(classified.Batch.Expenses)
	return models.Result{Kind: models.ResultBatch, Batch: batchResult}
}

// Stream implements Agent: one progress event announcing the check,
// then the terminal event with the synchronous result.
func (a *FinanceAgent) Stream(ctx context.Context, query, sessionID string) <-chan streaming.Event {
	return streaming.Run(func(r *streaming.Reporter) {
		r.Progress(financeProgressMessage)
		r.Done(a.Invoke(ctx, query, sessionID))
	})
}
