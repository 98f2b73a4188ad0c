package taxi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/ledger"
	"github.com/garyjia/expense-compliance-agent/internal/models"
	"github.com/garyjia/expense-compliance-agent/pkg/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.New(database.Config{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l, err := ledger.New(db, zap.NewNop())
	require.NoError(t, err)
	return NewService(l, zap.NewNop())
}

func TestReimburseApproved(t *testing.T) {
	s := newTestService(t)

	form, err := s.CreateRequestForm("", "", "", "")
	require.NoError(t, err)

	decision := s.Reimburse(form.RequestID, "中关村资本大厦", "23:30")

	assert.Equal(t, models.StatusApproved, decision.Status)
	assert.Equal(t, form.RequestID, decision.RequestID)
	assert.Empty(t, decision.Reason)
	assert.True(t, decision.Approved())
}

func TestReimburseUnknownIdShortCircuits(t *testing.T) {
	s := newTestService(t)

	// Location and time are both illegal too; the id check must decide.
	decision := s.Reimburse("request_id_forged", "望京", "12:00")

	assert.Equal(t, models.StatusRejected, decision.Status)
	assert.Equal(t, "无效的请求ID", decision.Reason)
}

func TestReimburseIllegalLocation(t *testing.T) {
	s := newTestService(t)

	form, err := s.CreateRequestForm("", "", "", "")
	require.NoError(t, err)

	decision := s.Reimburse(form.RequestID, "望京", "23:30")

	assert.Equal(t, models.StatusRejected, decision.Status)
	assert.Contains(t, decision.Reason, "上车地点'望京'不符合公司规定")
}

func TestReimburseIllegalTime(t *testing.T) {
	s := newTestService(t)

	form, err := s.CreateRequestForm("", "", "", "")
	require.NoError(t, err)

	decision := s.Reimburse(form.RequestID, "中关村资本大厦", "14:00")

	assert.Equal(t, models.StatusRejected, decision.Status)
	assert.Contains(t, decision.Reason, "不在允许的时间范围内")
}

func TestLocationCheckedBeforeTime(t *testing.T) {
	s := newTestService(t)

	form, err := s.CreateRequestForm("", "", "", "")
	require.NoError(t, err)

	decision := s.Reimburse(form.RequestID, "国贸", "14:00")

	assert.Equal(t, models.StatusRejected, decision.Status)
	assert.Contains(t, decision.Reason, "上车地点")
}

func TestCreateRequestFormPlaceholders(t *testing.T) {
	s := newTestService(t)

	form, err := s.CreateRequestForm("", "21:30", "", "35")
	require.NoError(t, err)

	assert.Contains(t, form.RequestID, "request_id_")
	assert.Equal(t, "<上车地点>", form.PickupLocation)
	assert.Equal(t, "21:30", form.PickupTime)
	assert.Equal(t, "<乘车日期>", form.Date)
	assert.Equal(t, "35", form.Amount)
}

func TestBuildFormResponse(t *testing.T) {
	s := newTestService(t)

	form, err := s.CreateRequestForm("学院南路", "", "", "")
	require.NoError(t, err)

	resp := BuildFormResponse(form, "请补全缺失的字段")

	assert.Equal(t, "form", resp.Type)
	assert.Equal(t, "object", resp.Form.Type)
	assert.Len(t, resp.Form.Properties, 5)
	assert.ElementsMatch(t,
		[]string{"pickup_location", "pickup_time", "date", "amount", "request_id"},
		resp.Form.Required)
	assert.Equal(t, *form, resp.FormData)
	assert.Equal(t, "请补全缺失的字段", resp.Instructions)
}
