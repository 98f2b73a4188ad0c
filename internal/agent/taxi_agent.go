package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/models"
	"github.com/garyjia/expense-compliance-agent/internal/streaming"
	"github.com/garyjia/expense-compliance-agent/internal/taxi"
)

const taxiProgressMessage = "正在处理打车费报销请求..."

// TaxiAgent handles the taxi reimbursement flow: it issues request
// forms for incomplete queries and audits completed ones against the
// taxi policy.
type TaxiAgent struct {
	service   *taxi.Service
	extractor TaxiExtractor
	logger    *zap.Logger
}

// NewTaxiAgent creates the taxi reimbursement agent. The extractor may
// be nil.
func NewTaxiAgent(service *taxi.Service, extractor TaxiExtractor, logger *zap.Logger) *TaxiAgent {
	return &TaxiAgent{
		service:   service,
		extractor: extractor,
		logger:    logger,
	}
}

// Name implements Agent.
func (a *TaxiAgent) Name() string { return "taxi" }

// Invoke drives one step of the taxi flow. A query without a request
// id starts a new request and returns its form; a query with a request
// id but unfilled fields returns the form again; a complete query is
// audited and produces a decision.
func (a *TaxiAgent) Invoke(ctx context.Context, query, sessionID string) (result models.Result) {
	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("Taxi agent fault recovered",
				zap.String("session_id", sessionID),
				zap.Any("panic", p))
			result = models.Failure(fmt.Sprintf("处理打车费报销请求时出错: %v", p))
		}
	}()

	q, ok := parseTaxiQuery(query)
	if !ok && a.extractor != nil {
		extracted, err := a.extractor.ExtractTaxiQuery(ctx, query)
		if err == nil {
			a.logger.Info("Free-text query extracted into taxi request fields",
				zap.String("session_id", sessionID))
			q, ok = extracted, true
		} else {
			a.logger.Warn("Taxi field extraction failed, treating query as malformed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}
	if !ok {
		return models.MissingInfo("请提供JSON格式的打车费报销数据（上车地点、上车时间、乘车日期、金额）")
	}

	missing := missingTaxiFields(q)

	if q.RequestID == "" {
		form, err := a.service.CreateRequestForm(
			filled(q.PickupLocation), filled(q.PickupTime), filled(q.Date), filled(q.Amount))
		if err != nil {
			return models.Failure(fmt.Sprintf("处理打车费报销请求时出错: %v", err))
		}
		return formResult(form, missing)
	}

	if len(missing) > 0 {
		form := &models.TaxiRequestForm{
			RequestID:      q.RequestID,
			PickupLocation: q.PickupLocation,
			PickupTime:     q.PickupTime,
			Date:           q.Date,
			Amount:         q.Amount,
		}
		return formResult(form, missing)
	}

	decision := a.service.Reimburse(q.RequestID, q.PickupLocation, q.PickupTime)
	return models.Result{Kind: models.ResultDecision, Decision: decision}
}

// Stream implements Agent.
func (a *TaxiAgent) Stream(ctx context.Context, query, sessionID string) <-chan streaming.Event {
	return streaming.Run(func(r *streaming.Reporter) {
		r.Progress(taxiProgressMessage)
		r.Done(a.Invoke(ctx, query, sessionID))
	})
}

// parseTaxiQuery decodes a structured taxi query. Any JSON object
// qualifies; absent fields stay empty and drive the form flow.
func parseTaxiQuery(query string) (*models.TaxiQuery, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(query), &fields); err != nil {
		return nil, false
	}

	var q models.TaxiQuery
	if err := json.Unmarshal([]byte(query), &q); err != nil {
		return nil, false
	}
	return &q, true
}

// missingTaxiFields lists the caller-facing titles of fields that are
// still empty or placeholders.
func missingTaxiFields(q *models.TaxiQuery) []string {
	var missing []string
	if filled(q.PickupLocation) == "" {
		missing = append(missing, "上车地点")
	}
	if filled(q.PickupTime) == "" {
		missing = append(missing, "上车时间")
	}
	if filled(q.Date) == "" {
		missing = append(missing, "乘车日期")
	}
	if filled(q.Amount) == "" {
		missing = append(missing, "金额")
	}
	return missing
}

// filled normalizes a field value: placeholders count as unfilled.
func filled(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		return ""
	}
	return trimmed
}

func formResult(form *models.TaxiRequestForm, missing []string) models.Result {
	instructions := ""
	if len(missing) > 0 {
		instructions = "请补全以下字段：" + strings.Join(missing, "、")
	}
	return models.Result{
		Kind: models.ResultForm,
		Form: taxi.BuildFormResponse(form, instructions),
	}
}
