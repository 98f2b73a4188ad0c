package server

// AgentCapabilities advertises the transport features the service
// supports.
type AgentCapabilities struct {
	Streaming bool `json:"streaming"`
}

// AgentSkill describes one evaluator the service exposes.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// AgentCard is the service's public self-description, served from the
// well-known discovery path.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	Skills             []AgentSkill      `json:"skills"`
}

// DefaultCard builds the card for the standard two-evaluator
// deployment at the given base URL.
func DefaultCard(url string) AgentCard {
	return AgentCard{
		Name:               "财务报销合规检查代理",
		Description:        "这个代理负责处理员工的报销请求，审核是否符合公司规定的各类报销标准。",
		URL:                url,
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text", "data"},
		DefaultOutputModes: []string{"text", "data"},
		Capabilities:       AgentCapabilities{Streaming: true},
		Skills: []AgentSkill{
			{
				ID:          "process_finance_reimbursement",
				Name:        "财务报销合规检查",
				Description: "根据公司规定审核和处理员工的各类报销申请。",
				Tags:        []string{"财务", "报销", "合规", "经费"},
				Examples:    []string{"我需要报销一些差旅费用", "帮我检查这些报销项目是否合规"},
			},
			{
				ID:          "process_taxi_reimbursement",
				Name:        "打车费报销审核",
				Description: "根据公司规定审核打车费用是否符合报销条件。",
				Tags:        []string{"财务", "报销", "打车"},
				Examples:    []string{"我想报销昨晚加班的打车费"},
			},
		},
	}
}
