// Package finance evaluates categorized expense batches against the
// company reimbursement policy.
package finance

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/models"
	"github.com/garyjia/expense-compliance-agent/internal/policy"
)

// Evaluator applies the policy catalog to batches of expense items.
// Each call to Evaluate is independent; the daily meal accumulator is
// scoped to a single batch.
type Evaluator struct {
	catalog *policy.Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// NewEvaluator creates an evaluator over the given catalog.
func NewEvaluator(catalog *policy.Catalog, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// dayMeals is the per-date running state behind the daily meal count
// limit.
type dayMeals struct {
	count int
	total float64
}

// Evaluate checks every item in submission order and partitions the
// batch into compliant and non-compliant verdicts. Processing order is
// significant: the first N same-day meal items occupy the day's count
// slots, and every meal item consumes a slot whether or not it is
// compliant on other dimensions.
func (e *Evaluator) Evaluate(items []models.ExpenseItem) *models.BatchResult {
	result := &models.BatchResult{
		CompliantItems:    []models.ComplianceVerdict{},
		NonCompliantItems: []models.ComplianceVerdict{},
		ItemCount:         len(items),
	}

	dailyMeals := make(map[string]*dayMeals)
	evaluationTime := e.now()

	for _, item := range items {
		category, rule := e.catalog.RuleFor(item.Category)

		verdict := models.ComplianceVerdict{
			ExpenseItem: item,
			Compliant:   true,
		}

		if item.Amount > rule.Cap {
			verdict.Compliant = false
			verdict.Reasons = append(verdict.Reasons,
				fmt.Sprintf("超出%s最高限额%g元", category, rule.Cap))
		}

		if rule.RequiresInvoice && !item.HasInvoice {
			verdict.Compliant = false
			verdict.Reasons = append(verdict.Reasons,
				fmt.Sprintf("%s需要提供发票", category))
		}

		if category == models.CategoryMeals {
			date := item.EffectiveDate(evaluationTime)
			day := dailyMeals[date]
			if day == nil {
				day = &dayMeals{}
				dailyMeals[date] = day
			}
			// Every meal item counts toward the day's tally, compliant
			// or not.
			day.count++
			day.total += item.Amount

			if day.count > rule.DailyCountLimit {
				verdict.Compliant = false
				verdict.Reasons = append(verdict.Reasons,
					fmt.Sprintf("超出餐饮费每日%d次限制", rule.DailyCountLimit))
			}
		}

		if verdict.Compliant {
			result.CompliantItems = append(result.CompliantItems, verdict)
			result.CompliantTotal += item.Amount
		} else {
			result.NonCompliantItems = append(result.NonCompliantItems, verdict)
		}
	}

	result.CompliantCount = len(result.CompliantItems)
	result.NonCompliantCount = len(result.NonCompliantItems)

	e.logger.Info("Expense batch evaluated",
		zap.Int("item_count", result.ItemCount),
		zap.Int("compliant", result.CompliantCount),
		zap.Int("non_compliant", result.NonCompliantCount),
		zap.Float64("compliant_total", result.CompliantTotal))

	return result
}
