package models

// DecisionStatus is the terminal state of a taxi reimbursement request.
type DecisionStatus string

const (
	StatusApproved DecisionStatus = "批准"
	StatusRejected DecisionStatus = "拒绝"
)

// Decision is the outcome of a taxi reimbursement check. Reason is set
// only on rejection.
type Decision struct {
	RequestID string         `json:"request_id"`
	Status    DecisionStatus `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

// Approved reports whether the decision approved the request.
func (d *Decision) Approved() bool {
	return d.Status == StatusApproved
}

// TaxiRequestForm is the request descriptor issued when a taxi
// reimbursement flow starts. Fields the caller has not supplied yet
// hold placeholder text.
type TaxiRequestForm struct {
	RequestID      string `json:"request_id"`
	PickupLocation string `json:"pickup_location"`
	PickupTime     string `json:"pickup_time"`
	Date           string `json:"date"`
	Amount         string `json:"amount"`
}

// TaxiQuery is the structured shape of a taxi reimbursement query.
// Empty or placeholder fields mean the caller has not supplied them
// yet.
type TaxiQuery struct {
	RequestID      string `json:"request_id"`
	PickupLocation string `json:"pickup_location"`
	PickupTime     string `json:"pickup_time"`
	Date           string `json:"date"`
	Amount         string `json:"amount"`
}

// FormField describes one property of a form schema.
type FormField struct {
	Type        string `json:"type"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description"`
	Title       string `json:"title"`
}

// FormSchema is the JSON-schema-shaped description of the fields a
// caller must fill in.
type FormSchema struct {
	Type       string               `json:"type"`
	Properties map[string]FormField `json:"properties"`
	Required   []string             `json:"required"`
}

// FormResponse is the envelope returned to a caller who still needs to
// complete a request form.
type FormResponse struct {
	Type         string          `json:"type"`
	Form         FormSchema      `json:"form"`
	FormData     TaxiRequestForm `json:"form_data"`
	Instructions string          `json:"instructions,omitempty"`
}
