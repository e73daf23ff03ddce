// Package query translates flat request parameters into structured
// collection filters with comparison operators, pagination and sort.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

const (
	paramPage  = "_page"
	paramLimit = "_limit"
	paramSort  = "_sort"
	paramOrder = "_order"
)

const (
	suffixGte = "_gte"
	suffixLte = "_lte"
	suffixNe  = "_ne"
)

// Condition is the set of predicates applied to one field. All set
// predicates must hold (conjunction).
type Condition struct {
	Eq    any
	HasEq bool
	Gte   any
	Lte   any
	Ne    any
}

// Filter maps field names to their conditions. All fields must match.
// A nil or empty Filter matches every document.
type Filter map[string]*Condition

// Options are the pagination and sort parameters of a list query.
type Options struct {
	Page  int
	Limit int
	Sort  string
	Desc  bool
}

func (o Options) Skip() int {
	return (o.Page - 1) * o.Limit
}

// Eq builds a single-field equality filter.
func Eq(field string, value any) Filter {
	return Filter{field: &Condition{Eq: value, HasEq: true}}
}

func (f Filter) condition(field string) *Condition {
	cond, ok := f[field]
	if !ok {
		cond = &Condition{}
		f[field] = cond
	}
	return cond
}

// ParseValues compiles query-string parameters into a filter plus
// pagination/sort options.
//
// Reserved parameters start with an underscore: _page, _limit, _sort
// and _order. Any other underscore-prefixed key is ignored. Remaining
// keys become filter conditions: the suffixes _gte, _lte and _ne
// select comparison operators, everything else is an equality check.
func ParseValues(values url.Values) (Filter, Options) {
	filter := Filter{}
	opts := Options{Page: DefaultPage, Limit: DefaultLimit}

	for key := range values {
		value := values.Get(key)

		if strings.HasPrefix(key, "_") {
			switch key {
			case paramPage:
				if page, err := strconv.Atoi(value); err == nil && page >= 1 {
					opts.Page = page
				}
			case paramLimit:
				if limit, err := strconv.Atoi(value); err == nil && limit >= 1 {
					opts.Limit = limit
				}
			case paramSort:
				opts.Sort = value
			case paramOrder:
				opts.Desc = value == "desc"
			}
			continue
		}

		switch {
		case strings.HasSuffix(key, suffixGte):
			filter.condition(strings.TrimSuffix(key, suffixGte)).Gte = value
		case strings.HasSuffix(key, suffixLte):
			filter.condition(strings.TrimSuffix(key, suffixLte)).Lte = value
		case strings.HasSuffix(key, suffixNe):
			filter.condition(strings.TrimSuffix(key, suffixNe)).Ne = value
		default:
			cond := filter.condition(key)
			cond.Eq = value
			cond.HasEq = true
		}
	}

	return filter, opts
}

// ParseBody compiles a raw filter object posted in a request body.
// Field values are either plain equality values or operator objects
// of the form {"$gte": v, "$lte": v, "$ne": v}.
func ParseBody(body map[string]any) Filter {
	filter := Filter{}

	for field, value := range body {
		ops, ok := value.(map[string]any)
		if !ok || !hasOperatorKeys(ops) {
			cond := filter.condition(field)
			cond.Eq = value
			cond.HasEq = true
			continue
		}

		cond := filter.condition(field)
		for op, operand := range ops {
			switch op {
			case "$gte":
				cond.Gte = operand
			case "$lte":
				cond.Lte = operand
			case "$ne":
				cond.Ne = operand
			}
		}
	}

	return filter
}

func hasOperatorKeys(m map[string]any) bool {
	for k := range m {
		switch k {
		case "$gte", "$lte", "$ne":
			return true
		}
	}
	return false
}

// Matches reports whether every condition of the filter holds for doc.
func (f Filter) Matches(doc map[string]any) bool {
	for field, cond := range f {
		value, present := doc[field]

		if cond.HasEq {
			if !present || !looseEqual(value, cond.Eq) {
				return false
			}
		}
		if cond.Gte != nil {
			if !present || Compare(value, cond.Gte) < 0 {
				return false
			}
		}
		if cond.Lte != nil {
			if !present || Compare(value, cond.Lte) > 0 {
				return false
			}
		}
		// An absent field is never equal to the operand, so _ne holds.
		if cond.Ne != nil && present && looseEqual(value, cond.Ne) {
			return false
		}
	}
	return true
}
