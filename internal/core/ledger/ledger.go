package ledger

import (
	"fmt"
	"sort"
	"time"

	v1 "github.com/aevon-lab/event-replay/internal/api/v1"
	"github.com/aevon-lab/event-replay/internal/core/replay"
	"github.com/shopspring/decimal"
)

// UnknownReference is reported when the referenced entity or field is absent
// from the replayed state.
const UnknownReference = "Unknown"

// Transaction is one value-changing update. Value is the new absolute value
// carried by the update, not a delta.
type Transaction struct {
	Timestamp   int64
	Type        string
	Table       string
	EntityID    string
	Reference   string
	Value       interface{}
	Amount      decimal.Decimal
	Description string
}

// Time converts Timestamp (epoch milliseconds) to a time.Time.
func (t Transaction) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// Source binds a rule to the ordered events of its table and the state
// replayed from them.
type Source struct {
	Rule   Rule
	Events []*v1.Event
	State  *replay.TableState
}

// Extract scans every source's update events for changes to the rule's value
// field and returns them ordered by timestamp. Sources are concatenated in the
// order given; equal timestamps keep that order.
func Extract(sources ...Source) []Transaction {
	var txs []Transaction
	for _, src := range sources {
		for _, evt := range src.Events {
			if evt == nil || !evt.Changes(src.Rule.Field) {
				continue
			}
			value := evt.Set[src.Rule.Field]
			txs = append(txs, Transaction{
				Timestamp:   evt.TS,
				Type:        src.Rule.Type,
				Table:       src.Rule.Table,
				EntityID:    evt.ID,
				Reference:   reference(src.State, evt.ID, src.Rule.ReferenceField),
				Value:       value,
				Amount:      toDecimal(value),
				Description: src.Rule.describe(value),
			})
		}
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp < txs[j].Timestamp
	})
	return txs
}

func reference(state *replay.TableState, id, field string) string {
	rec := state.Get(id)
	if rec == nil || field == "" {
		return UnknownReference
	}
	v, ok := rec.Get(field)
	if !ok || v == nil {
		return UnknownReference
	}
	return fmt.Sprint(v)
}

// Summary aggregates a ledger for the closing report.
type Summary struct {
	Count    int
	ByType   map[string]int
	Figures  map[string]map[string]decimal.Decimal // type -> operator -> figure
	Entities int                                   // distinct table/entity pairs that transacted
	First    int64                                 // earliest timestamp; zero when Count is zero
	Last     int64
}

// Summarize counts transactions per type. txs is expected in ledger order.
func Summarize(txs []Transaction) Summary {
	s := Summary{ByType: make(map[string]int)}
	entities := make(map[string]bool)
	for i, tx := range txs {
		s.Count++
		s.ByType[tx.Type]++
		entities[tx.Table+"/"+tx.EntityID] = true
		if i == 0 || tx.Timestamp < s.First {
			s.First = tx.Timestamp
		}
		if i == 0 || tx.Timestamp > s.Last {
			s.Last = tx.Timestamp
		}
	}
	s.Entities = len(entities)
	s.Figures = Figures(txs)
	return s
}
