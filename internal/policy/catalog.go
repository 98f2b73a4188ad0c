package policy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/garyjia/expense-compliance-agent/internal/models"
)

// CategoryRule is the reimbursement standard for one expense category.
type CategoryRule struct {
	Cap                   float64 `json:"最高限额"`
	RequiresInvoice       bool    `json:"需要发票"`
	DailyCountLimit       int     `json:"每日次数限制,omitempty"`
	RequiresExtraApproval bool    `json:"需要额外审批,omitempty"`
	Note                  string  `json:"备注,omitempty"`
}

// Catalog maps every expense category to its rule. RuleFor is total:
// unknown categories resolve to the 其他 rule, never an error.
type Catalog struct {
	rules map[models.Category]CategoryRule
}

// NewCatalog returns a catalog holding the company's default
// reimbursement standards.
func NewCatalog() *Catalog {
	return &Catalog{rules: defaultRules()}
}

func defaultRules() map[models.Category]CategoryRule {
	return map[models.Category]CategoryRule{
		models.CategoryTransport: {
			Cap:             300,
			RequiresInvoice: true,
			Note:            "火车限二等座，飞机限经济舱",
		},
		models.CategoryMeals: {
			Cap:             100,
			RequiresInvoice: true,
			DailyCountLimit: 3,
		},
		models.CategoryLodging: {
			Cap:             500,
			RequiresInvoice: true,
			Note:            "限标准间",
		},
		models.CategorySupplies: {
			Cap:             200,
			RequiresInvoice: true,
		},
		models.CategoryOther: {
			Cap:                   100,
			RequiresInvoice:       true,
			RequiresExtraApproval: true,
		},
	}
}

// LoadCatalog reads category rules from a JSON policies file. Rules in
// the file override the defaults category by category; categories the
// file does not mention keep their default rule. The 其他 fallback rule
// always exists.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policies file: %w", err)
	}

	var overrides map[models.Category]CategoryRule
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse policies file: %w", err)
	}

	rules := defaultRules()
	for category, rule := range overrides {
		rules[category] = rule
	}

	return &Catalog{rules: rules}, nil
}

// RuleFor returns the rule for the given category, falling back to the
// 其他 rule for anything unrecognized.
func (c *Catalog) RuleFor(category models.Category) (models.Category, CategoryRule) {
	if rule, ok := c.rules[category]; ok {
		return category, rule
	}
	return models.CategoryOther, c.rules[models.CategoryOther]
}
