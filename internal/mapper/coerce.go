package mapper

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fliaght/novelmof/internal/diagnostic"
	"github.com/fliaght/novelmof/internal/source"
)

// Mismatch describes a resolved value whose type differed from the
// expected kind.
type Mismatch struct {
	Reason diagnostic.Reason
	From   string
	To     Kind
	Detail string
}

// Diagnostic converts the mismatch into a log entry for path.
func (m *Mismatch) Diagnostic(path string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Path:   path,
		Reason: m.Reason,
		Detail: m.Detail,
	}
}

// Coerce converts a resolved value to kind. A nil value is a deliberate null
// and yields def without a mismatch. A value already of the expected kind is
// returned as is. Otherwise the coercion rule of the kind is applied: on
// success the converted value is returned with a recovered mismatch, on
// failure def is returned with an unrecoverable one.
func Coerce(value any, kind Kind, def any) (any, *Mismatch) {
	if value == nil {
		return def, nil
	}

	var (
		out any
		ok  bool
		err error
	)
	switch kind {
	case KindString:
		out, ok, err = toString(value)
	case KindInteger:
		out, ok, err = toInteger(value)
	case KindFloat:
		out, ok, err = toFloat(value)
	case KindBoolean:
		out, ok, err = toBoolean(value)
	case KindListOfString:
		out, ok, err = toStringList(value)
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}

	from := source.KindOf(value)
	if err != nil {
		return def, &Mismatch{
			Reason: diagnostic.ReasonUnrecoverable,
			From:   from,
			To:     kind,
			Detail: fmt.Sprintf("failed to convert %s %s to %s: %v, using default", from, preview(value), kind, err),
		}
	}
	if ok {
		return out, nil
	}
	return out, &Mismatch{
		Reason: diagnostic.ReasonRecovered,
		From:   from,
		To:     kind,
		Detail: fmt.Sprintf("expected %s, got %s %s, converted to %v", kind, from, preview(value), out),
	}
}

// Every toX helper returns the converted value, whether the input already
// had the expected kind, and an error when no rule applies.

func toString(v any) (any, bool, error) {
	switch x := v.(type) {
	case string:
		return x, true, nil
	case json.Number:
		return x.String(), false, nil
	case bool:
		return strconv.FormatBool(x), false, nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), false, nil
	case int64:
		return strconv.FormatInt(x, 10), false, nil
	case int:
		return strconv.Itoa(x), false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), false, nil
	}
	return string(b), false, nil
}

func toInteger(v any) (any, bool, error) {
	switch x := v.(type) {
	case json.Number:
		if source.IsIntegerLiteral(x) {
			n, err := x.Int64()
			if err != nil {
				return nil, false, fmt.Errorf("out of range")
			}
			return n, true, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, false, err
		}
		n, err := integral(f)
		return n, false, err
	case int64:
		return x, true, nil
	case int:
		return int64(x), true, nil
	case float64:
		n, err := integral(x)
		return n, false, err
	case bool:
		if x {
			return int64(1), false, nil
		}
		return int64(0), false, nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, false, nil
		}
		f, err := parseFiniteFloat(s)
		if err != nil {
			return nil, false, err
		}
		n, err := integral(f)
		return n, false, err
	}
	return nil, false, fmt.Errorf("not a number")
}

func toFloat(v any) (any, bool, error) {
	switch x := v.(type) {
	case json.Number:
		f, err := parseFiniteFloat(x.String())
		return f, true, err
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false, fmt.Errorf("not a finite number")
		}
		return x, true, nil
	case int64:
		return float64(x), true, nil
	case int:
		return float64(x), true, nil
	case bool:
		if x {
			return 1.0, false, nil
		}
		return 0.0, false, nil
	case string:
		f, err := parseFiniteFloat(strings.TrimSpace(x))
		return f, false, err
	}
	return nil, false, fmt.Errorf("not a number")
}

func toBoolean(v any) (any, bool, error) {
	switch x := v.(type) {
	case bool:
		return x, true, nil
	case string:
		switch strings.ToLower(x) {
		case "true", "1", "yes":
			return true, false, nil
		case "false", "0", "no":
			return false, false, nil
		}
		return nil, false, fmt.Errorf("%q is not a boolean token", x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, false, err
		}
		return f != 0, false, nil
	case float64:
		return x != 0, false, nil
	case int64:
		return x != 0, false, nil
	case int:
		return x != 0, false, nil
	case []any:
		return len(x) > 0, false, nil
	case []string:
		return len(x) > 0, false, nil
	case map[string]any:
		return len(x) > 0, false, nil
	}
	return nil, false, fmt.Errorf("unsupported type %T", v)
}

func toStringList(v any) (any, bool, error) {
	switch x := v.(type) {
	case []string:
		return append([]string{}, x...), true, nil
	case []any:
		out := make([]string, 0, len(x))
		exact := true
		for _, item := range x {
			if item == nil {
				exact = false
				continue
			}
			s, same, _ := toString(item)
			if !same {
				exact = false
			}
			out = append(out, s.(string))
		}
		return out, exact, nil
	case string:
		if items, ok := parseListLiteral(x); ok {
			return items, false, nil
		}
		return splitNames(x), false, nil
	}
	return nil, false, fmt.Errorf("cannot convert %s to a list", source.KindOf(v))
}

func parseFiniteFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int64(f), nil
}

func preview(v any) string {
	s, _, _ := toString(v)
	text := s.(string)
	if len(text) > 64 {
		text = text[:61] + "..."
	}
	return strconv.Quote(text)
}
