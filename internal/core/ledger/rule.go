package ledger

import (
	"fmt"
	"strings"
)

// Rule designates the value field whose updates count as transactions on a table.
type Rule struct {
	Table          string `koanf:"table"`
	Field          string `koanf:"field"`           // value field watched in update payloads
	Type           string `koanf:"type"`            // transaction type label
	ReferenceField string `koanf:"reference_field"` // final-state field shown as the secondary id
	Description    string `koanf:"description"`     // fmt template, %v receives the new value
}

// DefaultRules returns the card credit and savings balance rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Table:          "cards",
			Field:          "credit_used",
			Type:           "card_transaction",
			ReferenceField: "card_id",
			Description:    "Credit used updated to %v",
		},
		{
			Table:          "savings_accounts",
			Field:          "balance",
			Type:           "savings_transaction",
			ReferenceField: "savings_account_id",
			Description:    "Balance updated to %v",
		},
	}
}

// Validate checks that a rule can produce transactions.
func (r Rule) Validate() error {
	if r.Table == "" {
		return fmt.Errorf("ledger rule: table must not be empty")
	}
	if r.Field == "" {
		return fmt.Errorf("ledger rule %q: field must not be empty", r.Table)
	}
	if r.Type == "" {
		return fmt.Errorf("ledger rule %q: type must not be empty", r.Table)
	}
	n, err := valueVerbs(r.Description)
	if err != nil {
		return fmt.Errorf("ledger rule %q: %w", r.Table, err)
	}
	if n > 1 {
		return fmt.Errorf("ledger rule %q: description takes at most one %%v, got %d", r.Table, n)
	}
	return nil
}

// valueVerbs counts %v in a description template. %v is the only verb a
// template may carry; %% is a literal percent sign.
func valueVerbs(template string) (int, error) {
	n := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 == len(template) {
			return 0, fmt.Errorf("description ends with a bare %%")
		}
		i++
		switch template[i] {
		case '%':
		case 'v':
			n++
		default:
			return 0, fmt.Errorf("description verb %%%c not supported, use %%v", template[i])
		}
	}
	return n, nil
}

func (r Rule) describe(value interface{}) string {
	if r.Description == "" {
		return fmt.Sprintf("%s updated to %v", r.Field, value)
	}
	if n, err := valueVerbs(r.Description); err != nil || n == 0 {
		return strings.ReplaceAll(r.Description, "%%", "%")
	}
	return fmt.Sprintf(r.Description, value)
}
