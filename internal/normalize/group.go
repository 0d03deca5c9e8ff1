package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GroupIDs normalizes a w3c.json group value to a list of integer ids.
// It accepts a numeric string, an integer, or a sequence of either; one bad
// element invalidates the whole value.
func GroupIDs(v any) ([]int, error) {
	switch t := v.(type) {
	case []int:
		return append([]int{}, t...), nil
	case []string:
		ids := make([]int, 0, len(t))
		for _, s := range t {
			id, err := groupID(s)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	case []any:
		ids := make([]int, 0, len(t))
		for _, e := range t {
			id, err := groupID(e)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	id, err := groupID(v)
	if err != nil {
		return nil, err
	}
	return []int{id}, nil
}

func groupID(v any) (int, error) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, err
		}
		return bounded(n)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return bounded(n)
		}
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return integral(f)
	case float64:
		return integral(t)
	case int:
		return bounded(int64(t))
	case int64:
		return bounded(t)
	case int32:
		return int(t), nil
	}
	return 0, fmt.Errorf("group id %v (%T) is not an integer", v, v)
}

// Group ids fit in 32 bits whatever form they arrive in.
func bounded(n int64) (int, error) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("group id %d is out of range", n)
	}
	return int(n), nil
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("group id %v is not an integer", f)
	}
	return int(f), nil
}

// truthy mirrors what counts as "set" in a decoded JSON document.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return true
}
