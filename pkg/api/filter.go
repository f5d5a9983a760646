package api

import (
	"fmt"
	"strings"
)

// Operator оператор фильтра строки
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpLt  Operator = "lt"
	OpIn  Operator = "in"
	OpIs  Operator = "is"
)

// Зарезервированные параметры запроса, не являющиеся фильтрами
const (
	ParamOrder  = "order"
	ParamLimit  = "limit"
	ParamSelect = "select"
)

// Filter is one horizontal filter of a table query, encoded as
// column=op.value (in takes a parenthesised list).
type Filter struct {
	Column string
	Op     Operator
	Values []string // Values одно значение, для in список
}

// Value returns the single operand of a non-list filter
func (f Filter) Value() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// Encode returns the query parameter value, without the column
func (f Filter) Encode() string {
	if f.Op == OpIn {
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = quoteListValue(v)
		}
		return string(f.Op) + ".(" + strings.Join(quoted, ",") + ")"
	}
	return string(f.Op) + "." + f.Value()
}

// ParseFilter parses the value of a column query parameter
func ParseFilter(column, raw string) (Filter, error) {
	opStr, operand, ok := strings.Cut(raw, ".")
	if !ok {
		return Filter{}, fmt.Errorf("filter %s: missing operator in %q", column, raw)
	}

	f := Filter{Column: column, Op: Operator(opStr)}
	switch f.Op {
	case OpEq, OpNeq, OpGt, OpLt:
		f.Values = []string{operand}
	case OpIs:
		switch operand {
		case "null", "true", "false":
		default:
			return Filter{}, fmt.Errorf("filter %s: is accepts null, true or false", column)
		}
		f.Values = []string{operand}
	case OpIn:
		values, err := parseList(operand)
		if err != nil {
			return Filter{}, fmt.Errorf("filter %s: %w", column, err)
		}
		f.Values = values
	default:
		return Filter{}, fmt.Errorf("filter %s: unsupported operator %q", column, opStr)
	}
	return f, nil
}

func quoteListValue(v string) string {
	if !strings.ContainsAny(v, `,()"\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// parseList разбирает "(a,\"b,c\",d)"
func parseList(s string) ([]string, error) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("in list must be parenthesised: %q", s)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		return []string{}, nil
	}

	var (
		values  []string
		current strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in list")
	}
	return append(values, current.String()), nil
}
