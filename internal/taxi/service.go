package taxi

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/ledger"
	"github.com/garyjia/expense-compliance-agent/internal/models"
)

// Placeholder values for form fields the caller has not supplied yet.
const (
	placeholderLocation = "<上车地点>"
	placeholderTime     = "<上车时间（24小时制，如 21:30）>"
	placeholderDate     = "<乘车日期>"
	placeholderAmount   = "<打车费金额>"
)

// Service composes the taxi policy checks behind a request-id gate.
type Service struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewService creates a taxi reimbursement service over the given
// ledger.
func NewService(l *ledger.Ledger, logger *zap.Logger) *Service {
	return &Service{ledger: l, logger: logger}
}

// CreateRequestForm issues a fresh request id and returns the request
// descriptor. Fields the caller already supplied are carried through;
// the rest hold placeholders.
func (s *Service) CreateRequestForm(pickupLocation, pickupTime, date, amount string) (*models.TaxiRequestForm, error) {
	id, err := s.ledger.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create taxi request: %w", err)
	}

	form := &models.TaxiRequestForm{
		RequestID:      id,
		PickupLocation: pickupLocation,
		PickupTime:     pickupTime,
		Date:           date,
		Amount:         amount,
	}
	if form.PickupLocation == "" {
		form.PickupLocation = placeholderLocation
	}
	if form.PickupTime == "" {
		form.PickupTime = placeholderTime
	}
	if form.Date == "" {
		form.Date = placeholderDate
	}
	if form.Amount == "" {
		form.Amount = placeholderAmount
	}

	s.logger.Info("Taxi request form created", zap.String("request_id", id))
	return form, nil
}

// BuildFormResponse wraps a request descriptor in the form envelope a
// caller uses to complete the request.
func BuildFormResponse(form *models.TaxiRequestForm, instructions string) *models.FormResponse {
	return &models.FormResponse{
		Type: "form",
		Form: models.FormSchema{
			Type: "object",
			Properties: map[string]models.FormField{
				"pickup_location": {Type: "string", Description: "上车地点", Title: "上车地点"},
				"pickup_time":     {Type: "string", Description: "上车时间（24小时制，如 21:30）", Title: "上车时间"},
				"date":            {Type: "string", Format: "date", Description: "乘车日期", Title: "日期"},
				"amount":          {Type: "string", Format: "number", Description: "打车费金额", Title: "金额"},
				"request_id":      {Type: "string", Description: "请求ID", Title: "请求ID"},
			},
			Required: []string{"pickup_location", "pickup_time", "date", "amount", "request_id"},
		},
		FormData:     *form,
		Instructions: instructions,
	}
}

// Reimburse audits a taxi fare against company policy. Checks run in
// a fixed order (request id, then pickup location, then pickup time)
// and the first failure decides the rejection reason.
func (s *Service) Reimburse(requestID, pickupLocation, pickupTime string) *models.Decision {
	if !s.ledger.Contains(requestID) {
		return s.reject(requestID, "无效的请求ID")
	}

	if !IsValidPickupLocation(pickupLocation) {
		return s.reject(requestID,
			fmt.Sprintf("上车地点'%s'不符合公司规定，必须是中关村资本大厦附近", pickupLocation))
	}

	if ok, reason := ValidatePickupTime(pickupTime); !ok {
		return s.reject(requestID, reason)
	}

	s.logger.Info("Taxi reimbursement approved",
		zap.String("request_id", requestID),
		zap.String("pickup_location", pickupLocation),
		zap.String("pickup_time", pickupTime))
	return &models.Decision{RequestID: requestID, Status: models.StatusApproved}
}

func (s *Service) reject(requestID, reason string) *models.Decision {
	s.logger.Info("Taxi reimbursement rejected",
		zap.String("request_id", requestID),
		zap.String("reason", reason))
	return &models.Decision{
		RequestID: requestID,
		Status:    models.StatusRejected,
		Reason:    reason,
	}
}
