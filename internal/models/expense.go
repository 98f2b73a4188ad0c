package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Category classifies an expense item and selects the policy rule
// that applies to it.
type Category string

// Recognized expense categories. Anything else resolves to CategoryOther.
const (
	CategoryTransport Category = "交通费"
	CategoryMeals     Category = "餐饮费"
	CategoryLodging   Category = "住宿费"
	CategorySupplies  Category = "办公用品"
	CategoryOther     Category = "其他"
)

// DateLayout is the calendar-date format used on the wire and as the
// key of the daily meal accumulator.
const DateLayout = "2006-01-02"

// ExpenseItem is a single reimbursement line as submitted by the
// caller. Evaluation never mutates an item; verdicts carry a copy.
type ExpenseItem struct {
	Category   Category `json:"类别"`
	Amount     float64  `json:"金额"`
	Date       string   `json:"日期,omitempty"`
	HasInvoice bool     `json:"是否有发票"`
}

// UnmarshalJSON decodes an item leniently: the amount may arrive as a
// number or a numeric string, and anything unparseable coerces to 0.
// Missing fields take their zero values; an empty date is filled with
// the evaluation date by the evaluator.
func (e *ExpenseItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category   Category        `json:"类别"`
		Amount     json.RawMessage `json:"金额"`
		Date       string          `json:"日期"`
		HasInvoice bool            `json:"是否有发票"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	e.Category = raw.Category
	e.Date = raw.Date
	e.HasInvoice = raw.HasInvoice
	e.Amount = coerceAmount(raw.Amount)
	return nil
}

// coerceAmount accepts a JSON number or a numeric string and falls
// back to 0 for anything else.
func coerceAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if v, err := num.Float64(); err == nil {
			return v
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}

	return 0
}

// EffectiveDate returns the item's date, or today's date when the
// caller left it empty.
func (e *ExpenseItem) EffectiveDate(now time.Time) string {
	if e.Date == "" {
		return now.Format(DateLayout)
	}
	return e.Date
}

// ExpenseBatch is the input shape of the compliance evaluator: an
// ordered list of expense items under the "expenses" field.
type ExpenseBatch struct {
	Expenses []ExpenseItem `json:"expenses"`
}

// ComplianceVerdict is an annotated copy of a submitted item. Reasons
// is non-empty exactly when the item is non-compliant.
type ComplianceVerdict struct {
	ExpenseItem
	Compliant bool     `json:"合规"`
	Reasons   []string `json:"原因,omitempty"`
}

// BatchResult aggregates the per-item verdicts of one evaluation.
// CompliantCount+NonCompliantCount always equals ItemCount, and
// CompliantTotal is the sum of amounts over CompliantItems only.
type BatchResult struct {
	CompliantItems    []ComplianceVerdict `json:"合规报销"`
	NonCompliantItems []ComplianceVerdict `json:"不合规报销"`
	CompliantTotal    float64             `json:"合规报销总金额"`
	ItemCount         int                 `json:"报销项目总数"`
	CompliantCount    int                 `json:"合规项目数"`
	NonCompliantCount int                 `json:"不合规项目数"`
}
