package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExtractDecimal pulls a numeric value from a payload map by field name.
// Returns decimal.Zero if the field is missing, empty, or not a recognized numeric type.
// Event files are decoded with UseNumber, so json.Number is the common path and
// keeps the exact digits that were written.
func ExtractDecimal(data map[string]interface{}, field string) decimal.Decimal {
	if field == "" {
		return decimal.Zero
	}
	v, ok := data[field]
	if !ok {
		return decimal.Zero
	}
	return toDecimal(v)
}

func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(val)
	case float32:
		return decimal.NewFromFloat32(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case int32:
		return decimal.NewFromInt32(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err == nil {
			return d
		}
	case fmt.Stringer:
		d, err := decimal.NewFromString(val.String())
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}
