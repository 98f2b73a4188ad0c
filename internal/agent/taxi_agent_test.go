package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/ledger"
	"github.com/garyjia/expense-compliance-agent/internal/models"
	"github.com/garyjia/expense-compliance-agent/internal/streaming"
	"github.com/garyjia/expense-compliance-agent/internal/taxi"
	"github.com/garyjia/expense-compliance-agent/pkg/database"
)

type stubTaxiExtractor struct {
	query *models.TaxiQuery
	err   error
}

func (s *stubTaxiExtractor) ExtractTaxiQuery(ctx context.Context, text string) (*models.TaxiQuery, error) {
	return s.query, s.err
}

func newTaxiAgent(t *testing.T, extractor TaxiExtractor) *TaxiAgent {
	t.Helper()
	db, err := database.New(database.Config{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l, err := ledger.New(db, zap.NewNop())
	require.NoError(t, err)
	return NewTaxiAgent(taxi.NewService(l, zap.NewNop()), extractor, zap.NewNop())
}

func TestTaxiInvokeEmptyQueryIssuesForm(t *testing.T) {
	a := newTaxiAgent(t, nil)

	result := a.Invoke(context.Background(), `{}`, "session-1")

	require.Equal(t, models.ResultForm, result.Kind)
	require.NotNil(t, result.Form)
	assert.Contains(t, result.Form.FormData.RequestID, "request_id_")
	assert.Equal(t, "<上车地点>", result.Form.FormData.PickupLocation)
	assert.Contains(t, result.Form.Instructions, "上车地点")
	assert.Contains(t, result.Form.Instructions, "金额")
}

func TestTaxiInvokeCompletedFormApproved(t *testing.T) {
	a := newTaxiAgent(t, nil)

	first := a.Invoke(context.Background(), `{"pickup_location": "中关村资本大厦", "pickup_time": "23:30", "date": "2025-03-01", "amount": "45"}`, "session-1")
	require.Equal(t, models.ResultForm, first.Kind)
	assert.Empty(t, first.Form.Instructions)

	completed, err := json.Marshal(first.Form.FormData)
	require.NoError(t, err)

	second := a.Invoke(context.Background(), string(completed), "session-1")

	require.Equal(t, models.ResultDecision, second.Kind)
	assert.Equal(t, models.StatusApproved, second.Decision.Status)
	assert.Equal(t, first.Form.FormData.RequestID, second.Decision.RequestID)
}

func TestTaxiInvokeUnknownRequestIdRejected(t *testing.T) {
	a := newTaxiAgent(t, nil)

	query := `{"request_id": "request_id_forged", "pickup_location": "中关村资本大厦", "pickup_time": "23:30", "date": "2025-03-01", "amount": "45"}`
	result := a.Invoke(context.Background(), query, "session-1")

	require.Equal(t, models.ResultDecision, result.Kind)
	assert.Equal(t, models.StatusRejected, result.Decision.Status)
	assert.Equal(t, "无效的请求ID", result.Decision.Reason)
}

func TestTaxiInvokePartialFormKeepsRequestId(t *testing.T) {
	a := newTaxiAgent(t, nil)

	first := a.Invoke(context.Background(), `{}`, "session-1")
	require.Equal(t, models.ResultForm, first.Kind)
	id := first.Form.FormData.RequestID

	query := fmt.Sprintf(`{"request_id": %q, "pickup_location": "学院南路", "pickup_time": "22:00"}`, id)
	result := a.Invoke(context.Background(), query, "session-1")

	require.Equal(t, models.ResultForm, result.Kind)
	assert.Equal(t, id, result.Form.FormData.RequestID)
	assert.Contains(t, result.Form.Instructions, "乘车日期")
	assert.Contains(t, result.Form.Instructions, "金额")
	assert.NotContains(t, result.Form.Instructions, "上车地点")
}

func TestTaxiInvokePlaceholdersCountAsMissing(t *testing.T) {
	a := newTaxiAgent(t, nil)

	first := a.Invoke(context.Background(), `{}`, "session-1")
	require.Equal(t, models.ResultForm, first.Kind)

	// Echoing the issued form back unchanged must not approve anything.
	unchanged, err := json.Marshal(first.Form.FormData)
	require.NoError(t, err)

	result := a.Invoke(context.Background(), string(unchanged), "session-1")
	require.Equal(t, models.ResultForm, result.Kind)
	assert.Contains(t, result.Form.Instructions, "上车地点")
}

func TestTaxiInvokeFreeTextWithoutExtractor(t *testing.T) {
	a := newTaxiAgent(t, nil)

	result := a.Invoke(context.Background(), "昨晚加班打车回家", "session-1")

	assert.Equal(t, models.ResultMissingInfo, result.Kind)
}

func TestTaxiInvokeFreeTextViaExtractor(t *testing.T) {
	extractor := &stubTaxiExtractor{query: &models.TaxiQuery{
		PickupLocation: "中关村资本大厦",
		PickupTime:     "23:30",
		Date:           "2025-03-01",
		Amount:         "45",
	}}
	a := newTaxiAgent(t, extractor)

	result := a.Invoke(context.Background(), "昨晚23:30从中关村资本大厦打车，45元", "session-1")

	// Extracted fields carry no request id, so the flow starts with a
	// form exactly like a structured first contact.
	require.Equal(t, models.ResultForm, result.Kind)
	assert.Equal(t, "中关村资本大厦", result.Form.FormData.PickupLocation)
	assert.Contains(t, result.Form.FormData.RequestID, "request_id_")
}

func TestTaxiInvokeRecoversFromFault(t *testing.T) {
	a := NewTaxiAgent(nil, nil, zap.NewNop())

	result := a.Invoke(context.Background(), `{"request_id": "x", "pickup_location": "学院南路", "pickup_time": "22:00", "date": "2025-03-01", "amount": "45"}`, "session-1")

	assert.Equal(t, models.ResultFailure, result.Kind)
	assert.Contains(t, result.Message, "处理打车费报销请求时出错")
}

func TestTaxiStreamMatchesInvoke(t *testing.T) {
	a := newTaxiAgent(t, nil)

	first := a.Invoke(context.Background(), `{"pickup_location": "中关村资本大厦", "pickup_time": "23:30", "date": "2025-03-01", "amount": "45"}`, "session-1")
	require.Equal(t, models.ResultForm, first.Kind)
	completed, err := json.Marshal(first.Form.FormData)
	require.NoError(t, err)

	var events []streaming.Event
	for ev := range a.Stream(context.Background(), string(completed), "session-1") {
		events = append(events, ev)
	}

	require.Len(t, events, 2)
	assert.Equal(t, taxiProgressMessage, events[0].Updates)

	require.True(t, events[1].TaskComplete)
	streamed, ok := events[1].Content.(models.Result)
	require.True(t, ok)
	require.Equal(t, models.ResultDecision, streamed.Kind)
	assert.Equal(t, models.StatusApproved, streamed.Decision.Status)
}
