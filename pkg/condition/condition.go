// Package condition provides the boolean predicates that gate branch and option-lock nodes.
//
// A condition reads a value from game state through a query and compares it with a constant.
// Queries are read-only accessors supplied by the host game.
package condition

import (
	"cmp"
	"fmt"
	"strings"
)

// Comparison is the operator applied between the queried value and the compare value.
type Comparison string

const (
	Equal          Comparison = "=="
	NotEqual       Comparison = "!="
	Greater        Comparison = ">"
	Less           Comparison = "<"
	GreaterOrEqual Comparison = ">="
	LessOrEqual    Comparison = "<="
)

var comparisonAliases = map[string]Comparison{
	"==": Equal, "=": Equal, "eq": Equal,
	"!=": NotEqual, "ne": NotEqual,
	">": Greater, "gt": Greater,
	"<": Less, "lt": Less,
	">=": GreaterOrEqual, "gte": GreaterOrEqual, "ge": GreaterOrEqual,
	"<=": LessOrEqual, "lte": LessOrEqual, "le": LessOrEqual,
}

// ParseComparison accepts the operator symbols and their short word forms (eq, gt, lte...).
// An empty string defaults to Equal.
func ParseComparison(s string) (Comparison, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Equal, nil
	}
	if c, ok := comparisonAliases[s]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown comparison %q", s)
}

// Valid reports whether c is a known operator.
func (c Comparison) Valid() bool {
	switch c {
	case Equal, NotEqual, Greater, Less, GreaterOrEqual, LessOrEqual:
		return true
	}
	return false
}

func compare[T cmp.Ordered](c Comparison, got, want T) bool {
	switch c {
	case NotEqual:
		return got != want
	case Greater:
		return got > want
	case Less:
		return got < want
	case GreaterOrEqual:
		return got >= want
	case LessOrEqual:
		return got <= want
	default:
		return got == want
	}
}

// Condition is a boolean predicate over game state.
type Condition interface {
	// IsMet evaluates the query and applies the comparison.
	// An invalid condition is never met.
	IsMet() bool
	// IsValidCondition reports whether the condition is fully configured.
	IsValidCondition() bool
	// String describes the condition for graph views and logs.
	String() string
}

// Int compares an integer query against Value.
type Int struct {
	Name  string
	Query IntQuery
	Op    Comparison
	Value int
}

func (c *Int) IsMet() bool {
	if !c.IsValidCondition() {
		return false
	}
	return compare(c.Op, c.Query.Execute(), c.Value)
}

func (c *Int) IsValidCondition() bool {
	return c != nil && c.Query != nil && c.Query.IsValidQuery() && (c.Op == "" || c.Op.Valid())
}

func (c *Int) String() string {
	return fmt.Sprintf("%s %s %d", describe(c.Name), opOrDefault(c.Op), c.Value)
}

// Float compares a floating-point query against Value.
type Float struct {
	Name  string
	Query FloatQuery
	Op    Comparison
	Value float64
}

func (c *Float) IsMet() bool {
	if !c.IsValidCondition() {
		return false
	}
	return compare(c.Op, c.Query.Execute(), c.Value)
}

func (c *Float) IsValidCondition() bool {
	return c != nil && c.Query != nil && c.Query.IsValidQuery() && (c.Op == "" || c.Op.Valid())
}

func (c *Float) String() string {
	return fmt.Sprintf("%s %s %g", describe(c.Name), opOrDefault(c.Op), c.Value)
}

// Bool checks a boolean query. Only Equal and NotEqual are meaningful.
type Bool struct {
	Name  string
	Query BoolQuery
	Op    Comparison
	Value bool
}

func (c *Bool) IsMet() bool {
	if !c.IsValidCondition() {
		return false
	}
	got := c.Query.Execute()
	if c.Op == NotEqual {
		return got != c.Value
	}
	return got == c.Value
}

func (c *Bool) IsValidCondition() bool {
	if c == nil || c.Query == nil || !c.Query.IsValidQuery() {
		return false
	}
	return c.Op == "" || c.Op == Equal || c.Op == NotEqual
}

func (c *Bool) String() string {
	return fmt.Sprintf("%s %s %t", describe(c.Name), opOrDefault(c.Op), c.Value)
}

func describe(name string) string {
	if name == "" {
		return "?"
	}
	return name
}

func opOrDefault(c Comparison) Comparison {
	if c == "" {
		return Equal
	}
	return c
}
