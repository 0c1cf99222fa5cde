// Package query holds the store-agnostic query options shared by every
// domain store.
package query

import "fmt"

// Option applies a modification to a Query.
type Option func(Query) Query

// Operator is a comparison applied by a Condition.
type Operator string

// Supported operators.
const (
	OpEqual        Operator = "="
	OpIn           Operator = "IN"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpBetween      Operator = "BETWEEN"
	OpOutside      Operator = "OUTSIDE"
)

// Query holds conditions, ordering, and pagination for store lookups.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
	offset     int
	params     map[string]any
}

// Build creates a Query from a set of options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the query conditions.
func (q Query) Conditions() []Condition {
	result := make([]Condition, len(q.conditions))
	copy(result, q.conditions)
	return result
}

// Orders returns the query ordering specifications.
func (q Query) Orders() []Order {
	result := make([]Order, len(q.orders))
	copy(result, q.orders)
	return result
}

// LimitValue returns the limit (0 means no limit).
func (q Query) LimitValue() int {
	return q.limit
}

// OffsetValue returns the offset.
func (q Query) OffsetValue() int {
	return q.offset
}

// Condition is a single field comparison.
type Condition struct {
	field string
	op    Operator
	value any
	upper any
}

// Field returns the condition field name.
func (c Condition) Field() string { return c.field }

// Operator returns the comparison operator.
func (c Condition) Operator() Operator { return c.op }

// Value returns the condition value (the lower bound for BETWEEN).
func (c Condition) Value() any { return c.value }

// Upper returns the upper bound of a BETWEEN or OUTSIDE condition.
func (c Condition) Upper() any { return c.upper }

// String returns a readable representation.
func (c Condition) String() string {
	switch c.op {
	case OpBetween:
		return fmt.Sprintf("%s BETWEEN %v AND %v", c.field, c.value, c.upper)
	case OpOutside:
		return fmt.Sprintf("(%s <= %v OR %s >= %v)", c.field, c.value, c.field, c.upper)
	}
	return fmt.Sprintf("%s %s %v", c.field, c.op, c.value)
}

// Order represents a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the order field name.
func (o Order) Field() string { return o.field }

// Ascending returns true for ASC, false for DESC.
func (o Order) Ascending() bool { return o.ascending }

func withCondition(c Condition) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, c)
		return q
	}
}

// WithCondition adds a field = value equality condition.
// Domain packages use this to define their own typed options.
func WithCondition(field string, value any) Option {
	return withCondition(Condition{field: field, op: OpEqual, value: value})
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) Option {
	return withCondition(Condition{field: field, op: OpIn, value: values})
}

// WithAtLeast adds a field >= value condition.
func WithAtLeast(field string, value any) Option {
	return withCondition(Condition{field: field, op: OpGreaterEqual, value: value})
}

// WithAtMost adds a field <= value condition.
func WithAtMost(field string, value any) Option {
	return withCondition(Condition{field: field, op: OpLessEqual, value: value})
}

// WithBetween adds an inclusive lower <= field <= upper condition.
func WithBetween(field string, lower, upper any) Option {
	return withCondition(Condition{field: field, op: OpBetween, value: lower, upper: upper})
}

// WithOutside adds a field <= lower OR field >= upper condition, the
// complement of the open interval (lower, upper).
func WithOutside(field string, lower, upper any) Option {
	return withCondition(Condition{field: field, op: OpOutside, value: lower, upper: upper})
}

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithIDIn filters by the "id" column using IN.
func WithIDIn(ids []int64) Option {
	return WithConditionIn("id", ids)
}

// WithLimit sets the maximum number of results.
func WithLimit(n int) Option {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// WithOffset sets the result offset.
func WithOffset(n int) Option {
	return func(q Query) Query {
		q.offset = n
		return q
	}
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc adds descending ordering on a field.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: false})
		return q
	}
}

// WithPagination returns limit and offset options for a page.
func WithPagination(limit, offset int) []Option {
	return []Option{WithLimit(limit), WithOffset(offset)}
}

// WithParam stores an arbitrary key-value pair on the query.
// Stores read these for lookups that are not plain column comparisons.
func WithParam(key string, value any) Option {
	return func(q Query) Query {
		if q.params == nil {
			q.params = make(map[string]any)
		}
		q.params[key] = value
		return q
	}
}

// Param retrieves a parameter by key.
func (q Query) Param(key string) (any, bool) {
	if q.params == nil {
		return nil, false
	}
	v, ok := q.params[key]
	return v, ok
}
