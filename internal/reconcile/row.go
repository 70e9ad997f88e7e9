package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Row is one loosely typed record as returned by the remote store. Keys may be
// cased or spelled differently between environments.
type Row map[string]any

// Field is a logical attribute together with the key spellings it may appear
// under, in preference order.
type Field struct {
	Name string
	Keys []string
}

// F builds a Field.
func F(name string, keys ...string) Field {
	return Field{Name: name, Keys: keys}
}

// Lookup resolves f against the row. Every candidate is first tried with an
// exact key match, in order; only then are the candidates matched
// case-insensitively against the row's keys (in sorted key order). The first
// non-nil value wins.
func (r Row) Lookup(f Field) (any, bool) {
	for _, k := range f.Keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}

	if len(r) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, want := range f.Keys {
		for _, k := range keys {
			if strings.EqualFold(k, want) && r[k] != nil {
				return r[k], true
			}
		}
	}
	return nil, false
}

// String resolves f and renders it as trimmed text. Empty text counts as missing.
func (r Row) String(f Field) (string, bool) {
	v, ok := r.Lookup(f)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(Stringify(v))
	return s, s != ""
}

// StringOr resolves f or returns def.
func (r Row) StringOr(f Field, def string) string {
	if s, ok := r.String(f); ok {
		return s
	}
	return def
}

// Number resolves f as a float. Numeric strings are accepted, including a
// decimal comma and a trailing percent sign.
func (r Row) Number(f Field) (float64, bool) {
	v, ok := r.Lookup(f)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Stringify renders the scalar types pgx and encoding/json produce.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case pgtype.Numeric:
		if f, ok := numericFloat(t); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	case [16]byte:
		return uuid.UUID(t).String()
	case fmt.Stringer:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case pgtype.Numeric:
		return numericFloat(t)
	default:
		s := strings.TrimSpace(Stringify(v))
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
}

func numericFloat(n pgtype.Numeric) (float64, bool) {
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}
