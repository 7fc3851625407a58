package linkage

import (
	"strings"

	"github.com/aevon-lab/event-replay/internal/core/replay"
)

// Row is one denormalized record: a primary entity plus at most one match per
// dependent table. Unmatched dependent columns hold nil. Key is the primary
// entity id the dependents were matched on.
type Row struct {
	Key    string
	Values map[string]interface{}
}

// Get returns the value of a column, nil when absent.
func (r Row) Get(column string) interface{} {
	return r.Values[column]
}

// View is the result of a join. Row count always equals the primary entity count.
type View struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Rows)
}

// HasColumn reports whether the view carries a column.
func (v *View) HasColumn(name string) bool {
	if v == nil {
		return false
	}
	for _, c := range v.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Linker joins dependent tables onto a primary table through linkage rules.
type Linker struct {
	rules []Rule
}

// NewLinker creates a linker over the given rules. Rule order fixes column order.
func NewLinker(rules []Rule) *Linker {
	return &Linker{rules: rules}
}

// KeyColumn names the join key column of a primary table: accounts -> account_id.
func KeyColumn(primaryTable string) string {
	return strings.TrimSuffix(primaryTable, "s") + "_id"
}

// Join left-joins every rule targeting primaryTable onto it.
// Dependent tables missing from tables, or empty, contribute no columns.
// When several dependents derive the same key the last one in table order wins.
func (l *Linker) Join(primaryTable string, tables map[string]*replay.TableState) *View {
	primary := tables[primaryTable]
	if primary.Len() == 0 {
		return &View{}
	}

	keyColumn := KeyColumn(primaryTable)
	columns := []string{keyColumn, replay.CreatedAtColumn, replay.LastUpdatedColumn}
	taken := map[string]bool{keyColumn: true, replay.CreatedAtColumn: true, replay.LastUpdatedColumn: true}

	var primaryFields []string
	for _, field := range primary.Columns() {
		if taken[field] {
			continue
		}
		taken[field] = true
		primaryFields = append(primaryFields, field)
		columns = append(columns, field)
	}

	var sides []side
	for _, rule := range l.rules {
		if rule.TargetTable != primaryTable {
			continue
		}
		dep := tables[rule.Table]
		if dep.Len() == 0 {
			continue
		}
		s := newSide(rule, dep, taken)
		for _, c := range s.columns {
			columns = append(columns, c.output)
		}
		sides = append(sides, s)
	}

	rows := make([]Row, 0, primary.Len())
	for _, rec := range primary.Records() {
		values := make(map[string]interface{}, len(columns))
		values[keyColumn] = keyValue(rec, keyColumn)
		values[replay.CreatedAtColumn] = rec.CreatedAt
		values[replay.LastUpdatedColumn] = rec.LastUpdated
		for _, field := range primaryFields {
			values[field] = rec.Fields[field]
		}

		for _, s := range sides {
			match := s.index[rec.ID]
			for _, c := range s.columns {
				if match == nil {
					values[c.output] = nil
					continue
				}
				values[c.output] = match.Fields[c.field]
			}
		}

		rows = append(rows, Row{Key: rec.ID, Values: values})
	}

	return &View{Columns: columns, Rows: rows}
}

// keyValue prefers the record's own key field (account_id) over its entity id.
// Matching always uses the entity id.
func keyValue(rec *replay.Record, keyColumn string) interface{} {
	if v, ok := rec.Get(keyColumn); ok && v != nil {
		return v
	}
	return rec.ID
}

// JoinAccounts joins cards and savings accounts onto accounts with the built-in rules.
func JoinAccounts(accounts, cards, savings *replay.TableState) *View {
	return NewLinker(DefaultRules()).Join("accounts", map[string]*replay.TableState{
		"accounts":         accounts,
		"cards":            cards,
		"savings_accounts": savings,
	})
}

type projectedColumn struct {
	field  string
	output string
}

type side struct {
	columns []projectedColumn
	index   map[string]*replay.Record
}

func newSide(rule Rule, dep *replay.TableState, taken map[string]bool) side {
	var cols []projectedColumn
	if len(rule.Columns) > 0 {
		for _, c := range rule.Columns {
			cols = append(cols, projectedColumn{field: c.Field, output: c.Name()})
		}
	} else {
		for _, field := range dep.Columns() {
			cols = append(cols, projectedColumn{field: field, output: rule.Table + "." + field})
		}
	}

	for i := range cols {
		if taken[cols[i].output] {
			cols[i].output = rule.Table + "." + cols[i].output
		}
		taken[cols[i].output] = true
	}

	index := make(map[string]*replay.Record, dep.Len())
	for _, rec := range dep.Records() {
		index[rule.DeriveKey(rec.ID)] = rec
	}

	return side{columns: cols, index: index}
}
