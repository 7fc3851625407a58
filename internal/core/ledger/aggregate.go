package ledger

import "github.com/shopspring/decimal"

// Operator names for per-type ledger figures.
const (
	OpCount = "count"
	OpMin   = "min"
	OpMax   = "max"
	OpLast  = "last"
)

// Aggregator defines how transaction amounts fold into one figure.
// To add a figure: implement this interface and register it in Operators.
type Aggregator interface {
	// Initial returns the figure after the first transaction of a type.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds the next amount, in ledger order, into the figure.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Operators is the registry of summary figures computed per transaction type.
var Operators = map[string]Aggregator{
	OpCount: countAgg{},
	OpMin:   minAgg{},
	OpMax:   maxAgg{},
	OpLast:  lastAgg{},
}

// countAgg increments by 1 per transaction. The amount is ignored.
type countAgg struct{}

func (countAgg) Initial(_ decimal.Decimal) decimal.Decimal    { return decimal.NewFromInt(1) }
func (countAgg) Apply(cur, _ decimal.Decimal) decimal.Decimal { return cur.Add(decimal.NewFromInt(1)) }

type minAgg struct{}

func (minAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (minAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.LessThan(cur) {
		return inc
	}
	return cur
}

type maxAgg struct{}

func (maxAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (maxAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.GreaterThan(cur) {
		return inc
	}
	return cur
}

// lastAgg keeps the most recent amount. Amounts are absolute values, so this
// is the value the ledger ends on.
type lastAgg struct{}

func (lastAgg) Initial(v decimal.Decimal) decimal.Decimal    { return v }
func (lastAgg) Apply(_, inc decimal.Decimal) decimal.Decimal { return inc }

// Figures folds every registered operator over the amounts of each
// transaction type, in ledger order.
func Figures(txs []Transaction) map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal)
	for _, tx := range txs {
		figs, seen := out[tx.Type]
		if !seen {
			figs = make(map[string]decimal.Decimal, len(Operators))
			out[tx.Type] = figs
		}
		for name, agg := range Operators {
			if !seen {
				figs[name] = agg.Initial(tx.Amount)
				continue
			}
			figs[name] = agg.Apply(figs[name], tx.Amount)
		}
	}
	return out
}
