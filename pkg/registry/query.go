package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// intRef, floatRef and boolRef resolve their query by name at evaluation time.

type intRef struct {
	r    *Registry
	name string
}

func (q intRef) Execute() int {
	if inner, ok := q.r.intQuery(q.name); ok {
		return inner.Execute()
	}
	return 0
}

func (q intRef) IsValidQuery() bool {
	inner, ok := q.r.intQuery(q.name)
	return ok && inner.IsValidQuery()
}

type floatRef struct {
	r    *Registry
	name string
}

func (q floatRef) Execute() float64 {
	if inner, ok := q.r.floatQuery(q.name); ok {
		return inner.Execute()
	}
	return 0
}

func (q floatRef) IsValidQuery() bool {
	inner, ok := q.r.floatQuery(q.name)
	return ok && inner.IsValidQuery()
}

type boolRef struct {
	r    *Registry
	name string
}

func (q boolRef) Execute() bool {
	if inner, ok := q.r.boolQuery(q.name); ok {
		return inner.Execute()
	}
	return false
}

func (q boolRef) IsValidQuery() bool {
	inner, ok := q.r.boolQuery(q.name)
	return ok && inner.IsValidQuery()
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("cannot use %T as int", v)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("cannot use %T as float", v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return true, nil
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("cannot use %T as bool", v)
}
