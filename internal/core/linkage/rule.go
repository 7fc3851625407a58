package linkage

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule links a dependent table to its owning table by rewriting the id prefix.
// A card "c7" becomes account "a7" under {StripPrefix: "c", SubstitutePrefix: "a"}.
// This is textual substitution, not a foreign key: ids that lack the prefix
// derive to themselves and match nothing.
type Rule struct {
	Name             string
	Table            string   // dependent table, e.g. cards
	StripPrefix      string   // prefix token removed from the dependent id
	SubstitutePrefix string   // prefix token put in its place
	TargetTable      string   // owning table, e.g. accounts
	Columns          []Column // projected dependent fields; empty means all, prefixed with Table
	Fingerprint      string   // SHA-256 of the rule file; empty for built-in rules
}

// Column projects one dependent field into the joined view, optionally renamed.
type Column struct {
	Field string `yaml:"field"`
	As    string `yaml:"as"`
}

// Name returns the output column name.
func (c Column) Name() string {
	if c.As != "" {
		return c.As
	}
	return c.Field
}

// DeriveKey maps a dependent entity id to the id of the entity owning it.
func (r Rule) DeriveKey(id string) string {
	if r.StripPrefix == "" || !strings.HasPrefix(id, r.StripPrefix) {
		return id
	}
	return r.SubstitutePrefix + strings.TrimPrefix(id, r.StripPrefix)
}

// DefaultRules returns the built-in account linkage: cards (c -> a) and
// savings_accounts (sa -> a), projecting the fields the joined report shows.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:             "cards_to_accounts",
			Table:            "cards",
			StripPrefix:      "c",
			SubstitutePrefix: "a",
			TargetTable:      "accounts",
			Columns: []Column{
				{Field: "card_id"},
				{Field: "card_number"},
				{Field: "credit_used"},
				{Field: "monthly_limit"},
				{Field: "status", As: "card_status"},
			},
		},
		{
			Name:             "savings_to_accounts",
			Table:            "savings_accounts",
			StripPrefix:      "sa",
			SubstitutePrefix: "a",
			TargetTable:      "accounts",
			Columns: []Column{
				{Field: "savings_account_id"},
				{Field: "balance"},
				{Field: "interest_rate_percent"},
				{Field: "status", As: "savings_status"},
			},
		},
	}
}

// rawRule is the on-disk YAML shape.
type rawRule struct {
	Name             string   `yaml:"name"`
	Table            string   `yaml:"table"`
	StripPrefix      string   `yaml:"strip_prefix"`
	SubstitutePrefix string   `yaml:"substitute_prefix"`
	TargetTable      string   `yaml:"target_table"`
	Columns          []Column `yaml:"columns"`
}

// FileSystemRuleRepository loads linkage rules from *.yaml files in a directory.
// Each file contains exactly one rule at the top level. Files are read in
// name order, which fixes the column order of the joined view.
type FileSystemRuleRepository struct {
	dir   string
	rules []Rule
}

// NewFileSystemRuleRepository creates a new repository and eagerly loads all rules
// from dir. Returns an error if any rule file is malformed or invalid.
func NewFileSystemRuleRepository(dir string) (*FileSystemRuleRepository, error) {
	repo := &FileSystemRuleRepository{dir: dir}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemRuleRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil // no rules directory: zero rules configured
	}
	if err != nil {
		return fmt.Errorf("linkage rule dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("linkage rule path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading linkage rule dir: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading rule file %s: %w", path, err)
		}

		var raw rawRule
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing rule file %s: %w", path, err)
		}
		if raw.Table == "" && raw.Name == "" {
			continue // skip empty / comment-only files
		}

		rule, err := raw.compile(e.Name())
		if err != nil {
			return err
		}
		if seen[rule.Table] {
			return fmt.Errorf("rule %q: duplicate rule for table %q (check multiple YAML files)", rule.Name, rule.Table)
		}
		seen[rule.Table] = true

		rule.Fingerprint = fmt.Sprintf("%x", sha256.Sum256(data))
		r.rules = append(r.rules, rule)
	}
	return nil
}

func (raw rawRule) compile(fileName string) (Rule, error) {
	name := raw.Name
	if name == "" {
		name = strings.TrimSuffix(strings.TrimSuffix(fileName, ".yaml"), ".yml")
	}

	if raw.Table == "" {
		return Rule{}, fmt.Errorf("rule %q: table must not be empty", name)
	}
	if raw.TargetTable == "" {
		return Rule{}, fmt.Errorf("rule %q: target_table must not be empty", name)
	}
	if raw.Table == raw.TargetTable {
		return Rule{}, fmt.Errorf("rule %q: table and target_table must differ", name)
	}
	if raw.StripPrefix == "" {
		return Rule{}, fmt.Errorf("rule %q: strip_prefix must not be empty", name)
	}

	names := make(map[string]bool, len(raw.Columns))
	for _, col := range raw.Columns {
		if col.Field == "" {
			return Rule{}, fmt.Errorf("rule %q: column field must not be empty", name)
		}
		if names[col.Name()] {
			return Rule{}, fmt.Errorf("rule %q: duplicate output column %q", name, col.Name())
		}
		names[col.Name()] = true
	}

	return Rule{
		Name:             name,
		Table:            raw.Table,
		StripPrefix:      raw.StripPrefix,
		SubstitutePrefix: raw.SubstitutePrefix,
		TargetTable:      raw.TargetTable,
		Columns:          raw.Columns,
	}, nil
}

// GetRules returns the loaded rules in file name order.
func (r *FileSystemRuleRepository) GetRules() []Rule {
	rules := make([]Rule, len(r.rules))
	copy(rules, r.rules)
	return rules
}

// LoadRules returns the rules in dir, or DefaultRules when dir is empty or holds none.
func LoadRules(dir string) ([]Rule, error) {
	if dir == "" {
		return DefaultRules(), nil
	}
	repo, err := NewFileSystemRuleRepository(dir)
	if err != nil {
		return nil, err
	}
	rules := repo.GetRules()
	if len(rules) == 0 {
		return DefaultRules(), nil
	}
	return rules, nil
}
