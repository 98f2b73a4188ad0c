package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/expense-compliance-agent/internal/models"
)

func TestClassifyValidBatch(t *testing.T) {
	query := `{"expenses": [{"类别": "交通费", "金额": 250, "日期": "2025-03-01", "是否有发票": true}]}`

	classified := ClassifyQuery(query)

	require.Equal(t, QueryValidBatch, classified.Kind)
	require.NotNil(t, classified.Batch)
	require.Len(t, classified.Batch.Expenses, 1)

	item := classified.Batch.Expenses[0]
	assert.Equal(t, models.CategoryTransport, item.Category)
	assert.Equal(t, 250.0, item.Amount)
	assert.True(t, item.HasInvoice)
}

func TestClassifyAmountAsString(t *testing.T) {
	query := `{"expenses": [{"类别": "餐饮费", "金额": "88.5", "是否有发票": true}]}`

	classified := ClassifyQuery(query)

	require.Equal(t, QueryValidBatch, classified.Kind)
	assert.Equal(t, 88.5, classified.Batch.Expenses[0].Amount)
}

func TestClassifyInvalidAmountCoercesToZero(t *testing.T) {
	query := `{"expenses": [{"类别": "餐饮费", "金额": "一百", "是否有发票": true}]}`

	classified := ClassifyQuery(query)

	require.Equal(t, QueryValidBatch, classified.Kind)
	assert.Equal(t, 0.0, classified.Batch.Expenses[0].Amount)
}

func TestClassifyEmptyExpensesList(t *testing.T) {
	classified := ClassifyQuery(`{"expenses": []}`)

	require.Equal(t, QueryValidBatch, classified.Kind)
	assert.Empty(t, classified.Batch.Expenses)
}

func TestClassifyMissingExpensesField(t *testing.T) {
	classified := ClassifyQuery(`{"items": []}`)

	assert.Equal(t, QueryMissingInfo, classified.Kind)
	assert.Nil(t, classified.Batch)
	assert.Equal(t, PromptMissingExpenses, classified.Prompt())
}

func TestClassifyNonObjectJSON(t *testing.T) {
	classified := ClassifyQuery(`[1, 2, 3]`)

	assert.Equal(t, QueryMissingInfo, classified.Kind)
}

func TestClassifyUnparseableQuery(t *testing.T) {
	classified := ClassifyQuery("我想报销差旅费")

	assert.Equal(t, QueryParseFault, classified.Kind)
	assert.Equal(t, PromptInvalidJSON, classified.Prompt())
}

func TestClassifyMalformedExpensesValue(t *testing.T) {
	classified := ClassifyQuery(`{"expenses": "not a list"}`)

	assert.Equal(t, QueryParseFault, classified.Kind)
}
