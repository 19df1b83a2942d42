package crm

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FilterOp is a field predicate operator.
type FilterOp string

const (
	OpExact     FilterOp = "exact"
	OpIExact    FilterOp = "iexact"
	OpIContains FilterOp = "icontains"
	OpLT        FilterOp = "lt"
	OpLTE       FilterOp = "lte"
	OpGT        FilterOp = "gt"
	OpGTE       FilterOp = "gte"
	OpIn        FilterOp = "in"
)

var validOps = map[FilterOp]bool{
	OpExact: true, OpIExact: true, OpIContains: true,
	OpLT: true, OpLTE: true, OpGT: true, OpGTE: true, OpIn: true,
}

// Filter is a single predicate. For OpIn, Value is a comma-separated list.
type Filter struct {
	Field string   `json:"field"`
	Op    FilterOp `json:"op"`
	Value string   `json:"value"`
}

// ListQuery selects and orders entities. OrderBy entries are field names,
// a leading "-" sorts descending. An empty OrderBy keeps the store order.
type ListQuery struct {
	OrderBy []string `json:"order_by,omitempty"`
	Filters []Filter `json:"filters,omitempty"`
}

// FieldKind determines how filter values are interpreted.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldTime
)

// Field maps a public field name to a column.
type Field struct {
	Column string
	Kind   FieldKind
}

// FieldSet is the whitelist of queryable fields of one entity.
type FieldSet map[string]Field

var (
	CustomerFields = FieldSet{
		"id":         {Column: "id", Kind: FieldText},
		"name":       {Column: "name", Kind: FieldText},
		"email":      {Column: "email", Kind: FieldText},
		"phone":      {Column: "phone", Kind: FieldText},
		"created_at": {Column: "created_at", Kind: FieldTime},
		"updated_at": {Column: "updated_at", Kind: FieldTime},
	}

	ProductFields = FieldSet{
		"id":         {Column: "id", Kind: FieldText},
		"name":       {Column: "name", Kind: FieldText},
		"price":      {Column: "price", Kind: FieldNumber},
		"stock":      {Column: "stock", Kind: FieldNumber},
		"created_at": {Column: "created_at", Kind: FieldTime},
		"updated_at": {Column: "updated_at", Kind: FieldTime},
	}

	OrderFields = FieldSet{
		"id":           {Column: "id", Kind: FieldText},
		"customer_id":  {Column: "customer_id", Kind: FieldText},
		"total_amount": {Column: "total_amount", Kind: FieldNumber},
		"order_date":   {Column: "order_date", Kind: FieldTime},
		"created_at":   {Column: "created_at", Kind: FieldTime},
		"updated_at":   {Column: "updated_at", Kind: FieldTime},
	}
)

// SortTerm is a parsed OrderBy entry.
type SortTerm struct {
	Column string
	Desc   bool
}

// ParseFilterKey splits a "field__op" key. A key without an operator
// suffix means OpExact.
func ParseFilterKey(key string) (string, FilterOp) {
	if field, op, ok := strings.Cut(key, "__"); ok {
		return field, FilterOp(op)
	}
	return key, OpExact
}

// SortTerms validates OrderBy against fields and resolves the columns.
func (q ListQuery) SortTerms(fields FieldSet) ([]SortTerm, error) {
	terms := make([]SortTerm, 0, len(q.OrderBy))
	for _, raw := range q.OrderBy {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")
		f, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown order field %q", ErrInvalidQuery, name)
		}
		terms = append(terms, SortTerm{Column: f.Column, Desc: desc})
	}
	return terms, nil
}

// Predicate is a validated filter ready to be bound to a statement.
type Predicate struct {
	Column string
	Op     FilterOp
	Args   []any
}

// Predicates validates the filters against fields and converts their values.
func (q ListQuery) Predicates(fields FieldSet) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(q.Filters))
	for _, flt := range q.Filters {
		f, ok := fields[flt.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter field %q", ErrInvalidQuery, flt.Field)
		}
		op := flt.Op
		if op == "" {
			op = OpExact
		}
		if !validOps[op] {
			return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, op)
		}
		if (op == OpIExact || op == OpIContains) && f.Kind != FieldText {
			return nil, fmt.Errorf("%w: %s is not supported on %s", ErrInvalidQuery, op, flt.Field)
		}

		raw := []string{flt.Value}
		if op == OpIn {
			raw = strings.Split(flt.Value, ",")
		}
		args := make([]any, 0, len(raw))
		for _, v := range raw {
			arg, err := convertValue(f.Kind, strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidQuery, flt.Field, err)
			}
			args = append(args, arg)
		}
		preds = append(preds, Predicate{Column: f.Column, Op: op, Args: args})
	}
	return preds, nil
}

func convertValue(kind FieldKind, v string) (any, error) {
	switch kind {
	case FieldNumber:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return d.InexactFloat64(), nil
	case FieldTime:
		t, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	default:
		return v, nil
	}
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", v)
}
