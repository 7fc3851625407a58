package linkage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRule(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

const loansRule = `
name: loans_to_accounts
table: loans
strip_prefix: l
substitute_prefix: a
target_table: accounts
columns:
  - field: principal
  - field: status
    as: loan_status
`

func TestFileSystemRuleRepository_Load(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "20_loans.yaml", loansRule)
	writeRule(t, dir, "10_cards.yml", "table: cards\nstrip_prefix: c\nsubstitute_prefix: a\ntarget_table: accounts\n")
	writeRule(t, dir, "00_empty.yaml", "# nothing configured yet\n")
	writeRule(t, dir, "notes.txt", "table: ignored")

	repo, err := NewFileSystemRuleRepository(dir)
	require.NoError(t, err)

	rules := repo.GetRules()
	require.Len(t, rules, 2)

	assert.Equal(t, "10_cards", rules[0].Name, "name defaults to the file stem")
	assert.Equal(t, "cards", rules[0].Table)
	assert.Empty(t, rules[0].Columns)

	assert.Equal(t, "loans_to_accounts", rules[1].Name)
	assert.Equal(t, []Column{{Field: "principal"}, {Field: "status", As: "loan_status"}}, rules[1].Columns)
	assert.Equal(t, "a42", rules[1].DeriveKey("l42"))
	assert.Len(t, rules[1].Fingerprint, 64)
	assert.NotEqual(t, rules[0].Fingerprint, rules[1].Fingerprint)

	// GetRules hands out a copy.
	rules[0].Table = "mutated"
	assert.Equal(t, "cards", repo.GetRules()[0].Table)
}

func TestFileSystemRuleRepository_MissingDir(t *testing.T) {
	repo, err := NewFileSystemRuleRepository(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Empty(t, repo.GetRules())
}

func TestFileSystemRuleRepository_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRule(t, filepath.Dir(path), "rules.yaml", loansRule)

	_, err := NewFileSystemRuleRepository(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestFileSystemRuleRepository_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "missing table", body: "name: x\nstrip_prefix: c\ntarget_table: accounts\n", wantErr: "table must not be empty"},
		{name: "missing target", body: "table: cards\nstrip_prefix: c\n", wantErr: "target_table must not be empty"},
		{name: "self link", body: "table: cards\nstrip_prefix: c\ntarget_table: cards\n", wantErr: "must differ"},
		{name: "missing prefix", body: "table: cards\ntarget_table: accounts\n", wantErr: "strip_prefix must not be empty"},
		{name: "column without field", body: "table: cards\nstrip_prefix: c\ntarget_table: accounts\ncolumns:\n  - as: x\n", wantErr: "column field must not be empty"},
		{name: "duplicate output", body: "table: cards\nstrip_prefix: c\ntarget_table: accounts\ncolumns:\n  - field: status\n  - field: state\n    as: status\n", wantErr: "duplicate output column"},
		{name: "bad yaml", body: "table: [cards\n", wantErr: "parsing rule file"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeRule(t, dir, "rule.yaml", tc.body)

			_, err := NewFileSystemRuleRepository(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFileSystemRuleRepository_DuplicateTable(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "a.yaml", loansRule)
	writeRule(t, dir, "b.yaml", loansRule)

	_, err := NewFileSystemRuleRepository(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate rule for table "loans"`)
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)

	rules, err = LoadRules(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules, "an empty rules dir falls back to the built-in rules")

	dir := t.TempDir()
	writeRule(t, dir, "loans.yaml", loansRule)
	rules, err = LoadRules(dir)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "loans", rules[0].Table)
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.Equal(t, "accounts", r.TargetTable)
		assert.Empty(t, r.Fingerprint)
	}
	assert.Equal(t, "card_status", rules[0].Columns[4].Name())
	assert.Equal(t, "savings_status", rules[1].Columns[3].Name())
}
