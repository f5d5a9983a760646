package api

import (
	"net/url"
	"strconv"

	"github.com/iudanet/jobtrail/pkg/api"
)

// Query собирает фильтры, сортировку и лимит для выборки из таблицы.
// Методы возвращают тот же *Query для цепочек вызовов.
type Query struct {
	order   string
	filters []api.Filter
	limit   int
}

// NewQuery создает пустой запрос
func NewQuery() *Query {
	return &Query{}
}

func (q *Query) add(column string, op api.Operator, values ...string) *Query {
	q.filters = append(q.filters, api.Filter{Column: column, Op: op, Values: values})
	return q
}

// Eq column = value
func (q *Query) Eq(column, value string) *Query { return q.add(column, api.OpEq, value) }

// Neq column <> value
func (q *Query) Neq(column, value string) *Query { return q.add(column, api.OpNeq, value) }

// Gt column > value
func (q *Query) Gt(column, value string) *Query { return q.add(column, api.OpGt, value) }

// Lt column < value
func (q *Query) Lt(column, value string) *Query { return q.add(column, api.OpLt, value) }

// In column IN (values)
func (q *Query) In(column string, values ...string) *Query {
	return q.add(column, api.OpIn, values...)
}

// Is column IS null/true/false
func (q *Query) Is(column, value string) *Query { return q.add(column, api.OpIs, value) }

// Order sorts by column
func (q *Query) Order(column string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.order = column + "." + dir
	return q
}

// Limit ограничивает количество строк, 0 без ограничения
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Values encodes the query as URL parameters
func (q *Query) Values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	for _, f := range q.filters {
		v.Add(f.Column, f.Encode())
	}
	if q.order != "" {
		v.Set(api.ParamOrder, q.order)
	}
	if q.limit > 0 {
		v.Set(api.ParamLimit, strconv.Itoa(q.limit))
	}
	return v
}
