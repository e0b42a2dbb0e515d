package summary

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// floater is implemented by driver decimal types such as duckdb.Decimal.
type floater interface {
	Float64() float64
}

// toFloat converts a scanned value to float64. NULL becomes 0.
// Text is parsed, so a Volume stored as "750" reads as 750.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case *big.Int:
		f, _ := decimal.NewFromBigInt(x, 0).Float64()
		return f, nil
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, nil
	case []byte:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	case floater:
		return x.Float64(), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to a number", v)
	}
}

// parseNumber parses decimal text exactly before rounding to float64.
// Empty text counts as NULL.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// NaN and Inf spellings are not decimals.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("cannot parse %q as a number", s)
		}
		return f, nil
	}
	f, _ := d.Float64()
	return f, nil
}

// toInt converts a scanned value to int64. NULL becomes 0.
func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case *big.Int:
		if !x.IsInt64() {
			return 0, fmt.Errorf("integer %s out of range", x)
		}
		return x.Int64(), nil
	}

	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return int64(f), nil
}

// toText converts a scanned value to a string. NULL becomes "".
// Whole-number floats print without a fraction so a Brand of 58.0 reads "58".
func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
