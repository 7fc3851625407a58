package ledger

import (
	"encoding/json"
	"testing"

	v1 "github.com/aevon-lab/event-replay/internal/api/v1"
	"github.com/aevon-lab/event-replay/internal/core/replay"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardsRule() Rule   { return DefaultRules()[0] }
func savingsRule() Rule { return DefaultRules()[1] }

func sourceOf(rule Rule, events ...*v1.Event) Source {
	return Source{Rule: rule, Events: events, State: replay.Replay(events)}
}

func TestExtract_OnlyValueFieldUpdates(t *testing.T) {
	src := sourceOf(cardsRule(),
		&v1.Event{ID: "c1", Op: v1.OpCreate, TS: 100, Data: map[string]interface{}{"card_id": "c1", "credit_used": json.Number("100")}},
		&v1.Event{ID: "c1", Op: v1.OpUpdate, TS: 200, Set: map[string]interface{}{"credit_used": json.Number("150")}},
		&v1.Event{ID: "c1", Op: v1.OpUpdate, TS: 300, Set: map[string]interface{}{"status": "ACTIVE"}},
	)

	txs := Extract(src)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, int64(200), tx.Timestamp)
	assert.Equal(t, "card_transaction", tx.Type)
	assert.Equal(t, "c1", tx.EntityID)
	assert.Equal(t, "c1", tx.Reference)
	assert.Equal(t, json.Number("150"), tx.Value)
	assert.True(t, decimal.NewFromInt(150).Equal(tx.Amount))
	assert.Equal(t, "Credit used updated to 150", tx.Description)
}

func TestExtract_ChronologicalAcrossTables(t *testing.T) {
	cards := sourceOf(cardsRule(),
		&v1.Event{ID: "c1", Op: v1.OpCreate, TS: 50, Data: map[string]interface{}{"card_id": "c1"}},
		&v1.Event{ID: "c1", Op: v1.OpUpdate, TS: 300, Set: map[string]interface{}{"credit_used": 300}},
		&v1.Event{ID: "c1", Op: v1.OpUpdate, TS: 100, Set: map[string]interface{}{"credit_used": 100}},
	)
	savings := sourceOf(savingsRule(),
		&v1.Event{ID: "sa1", Op: v1.OpCreate, TS: 60, Data: map[string]interface{}{"savings_account_id": "sa1"}},
		&v1.Event{ID: "sa1", Op: v1.OpUpdate, TS: 200, Set: map[string]interface{}{"balance": 200}},
	)

	txs := Extract(cards, savings)
	require.Len(t, txs, 3)
	assert.Equal(t, int64(100), txs[0].Timestamp)
	assert.Equal(t, int64(200), txs[1].Timestamp)
	assert.Equal(t, "savings_transaction", txs[1].Type)
	assert.Equal(t, "Balance updated to 200", txs[1].Description)
	assert.Equal(t, int64(300), txs[2].Timestamp)
}

func TestExtract_TiesKeepConcatenationOrder(t *testing.T) {
	cards := sourceOf(cardsRule(),
		&v1.Event{ID: "c1", Op: v1.OpCreate, TS: 1, Data: map[string]interface{}{"card_id": "c1"}},
		&v1.Event{ID: "c1", Op: v1.OpUpdate, TS: 500, Set: map[string]interface{}{"credit_used": 1}},
	)
	savings := sourceOf(savingsRule(),
		&v1.Event{ID: "sa1", Op: v1.OpCreate, TS: 1, Data: map[string]interface{}{"savings_account_id": "sa1"}},
		&v1.Event{ID: "sa1", Op: v1.OpUpdate, TS: 500, Set: map[string]interface{}{"balance": 2}},
	)

	txs := Extract(cards, savings)
	require.Len(t, txs, 2)
	assert.Equal(t, "card_transaction", txs[0].Type)
	assert.Equal(t, "savings_transaction", txs[1].Type)

	txs = Extract(savings, cards)
	assert.Equal(t, "savings_transaction", txs[0].Type)
}

func TestExtract_UnknownReference(t *testing.T) {
	events := []*v1.Event{
		// orphan update: never replayed, still a transaction
		{ID: "c9", Op: v1.OpUpdate, TS: 10, Set: map[string]interface{}{"credit_used": 5}},
		{ID: "c1", Op: v1.OpCreate, TS: 20, Data: map[string]interface{}{"card_number": "1111"}},
		{ID: "c1", Op: v1.OpUpdate, TS: 30, Set: map[string]interface{}{"credit_used": 7}},
	}

	txs := Extract(Source{Rule: cardsRule(), Events: events, State: replay.Replay(events)})
	require.Len(t, txs, 2)
	assert.Equal(t, UnknownReference, txs[0].Reference, "entity missing from final state")
	assert.Equal(t, UnknownReference, txs[1].Reference, "reference field missing from record")

	rule := cardsRule()
	rule.ReferenceField = "card_number"
	txs = Extract(Source{Rule: rule, Events: events, State: nil})
	assert.Equal(t, UnknownReference, txs[1].Reference, "no state at all")

	txs = Extract(Source{Rule: rule, Events: events, State: replay.Replay(events)})
	assert.Equal(t, "1111", txs[1].Reference)
}

func TestExtract_NoSources(t *testing.T) {
	require.Empty(t, Extract())
	require.Empty(t, Extract(Source{Rule: cardsRule()}))
}

func TestRule_Describe(t *testing.T) {
	assert.Equal(t, "Balance updated to 1.5", savingsRule().describe(1.5))
	assert.Equal(t, "limit updated to 10", Rule{Field: "limit"}.describe(10))
	assert.Equal(t, "Limit changed", Rule{Field: "limit", Description: "Limit changed"}.describe(10))
	assert.Equal(t, "Rate now 3%", Rule{Field: "rate", Description: "Rate now %v%%"}.describe(3))
	assert.Equal(t, "Rate changed by 100%", Rule{Field: "rate", Description: "Rate changed by 100%%"}.describe(3))
}

func TestRule_Validate(t *testing.T) {
	require.NoError(t, cardsRule().Validate())

	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{name: "no table", rule: Rule{Field: "f", Type: "t"}, wantErr: "table must not be empty"},
		{name: "no field", rule: Rule{Table: "cards", Type: "t"}, wantErr: "field must not be empty"},
		{name: "no type", rule: Rule{Table: "cards", Field: "f"}, wantErr: "type must not be empty"},
		{name: "two verbs", rule: Rule{Table: "cards", Field: "f", Type: "t", Description: "%v to %v"}, wantErr: "at most one"},
		{name: "integer verb", rule: Rule{Table: "cards", Field: "f", Type: "t", Description: "Credit %d"}, wantErr: "verb %d not supported"},
		{name: "string verb", rule: Rule{Table: "cards", Field: "f", Type: "t", Description: "%s"}, wantErr: "verb %s not supported"},
		{name: "bare percent", rule: Rule{Table: "cards", Field: "f", Type: "t", Description: "up 5%"}, wantErr: "bare %"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
	assert.Empty(t, s.ByType)
	assert.Zero(t, s.First)

	s = Summarize([]Transaction{
		{Timestamp: 100, Type: "card_transaction", Table: "cards", EntityID: "c1", Amount: decimal.NewFromInt(150)},
		{Timestamp: 200, Type: "savings_transaction", Table: "savings_accounts", EntityID: "sa1", Amount: decimal.NewFromInt(40)},
		{Timestamp: 300, Type: "card_transaction", Table: "cards", EntityID: "c1", Amount: decimal.NewFromInt(90)},
	})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, map[string]int{"card_transaction": 2, "savings_transaction": 1}, s.ByType)
	assert.Equal(t, 2, s.Entities)
	assert.Equal(t, int64(100), s.First)
	assert.Equal(t, int64(300), s.Last)
	assert.True(t, decimal.NewFromInt(150).Equal(s.Figures["card_transaction"][OpMax]))
	assert.True(t, decimal.NewFromInt(90).Equal(s.Figures["card_transaction"][OpLast]))
}
