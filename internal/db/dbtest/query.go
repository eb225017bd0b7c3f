package dbtest

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// matches evaluates the supported query subset against a document source:
// match_all, term, match, match_phrase, range and bool.
func matches(q gjson.Result, source []byte) (bool, error) {
	if !q.Exists() || q.Type == gjson.Null {
		return true, nil
	}
	if !q.IsObject() {
		return false, fmt.Errorf("query must be an object")
	}

	var (
		kind   string
		clause gjson.Result
		n      int
	)
	q.ForEach(func(k, v gjson.Result) bool {
		kind, clause = k.String(), v
		n++
		return true
	})
	if n != 1 {
		return false, fmt.Errorf("query must have exactly one clause, got %d", n)
	}

	switch kind {
	case "match_all":
		return true, nil
	case "term":
		field, want := fieldClause(clause, "value")
		got := gjson.GetBytes(source, field)
		return got.Exists() && equal(got, want), nil
	case "match", "match_phrase":
		field, want := fieldClause(clause, "query")
		got := gjson.GetBytes(source, field)
		if !got.Exists() {
			return false, nil
		}
		if got.Type == gjson.String {
			return strings.Contains(strings.ToLower(got.Str), strings.ToLower(want.String())), nil
		}
		return equal(got, want), nil
	case "range":
		return matchRange(clause, source), nil
	case "bool":
		return matchBool(clause, source)
	default:
		return false, fmt.Errorf("unknown query [%s]", kind)
	}
}

// fieldClause unpacks {"field": v} and {"field": {"<key>": v}}.
func fieldClause(clause gjson.Result, key string) (string, gjson.Result) {
	var (
		field string
		val   gjson.Result
	)
	clause.ForEach(func(k, v gjson.Result) bool {
		field, val = k.String(), v
		return false
	})
	if val.IsObject() {
		val = val.Get(key)
	}
	return field, val
}

func equal(a, b gjson.Result) bool {
	if a.Type == gjson.Number || b.Type == gjson.Number {
		return a.Float() == b.Float()
	}
	return a.String() == b.String()
}

func matchRange(clause gjson.Result, source []byte) bool {
	field, bounds := "", gjson.Result{}
	clause.ForEach(func(k, v gjson.Result) bool {
		field, bounds = k.String(), v
		return false
	})
	got := gjson.GetBytes(source, field)
	if !got.Exists() {
		return false
	}
	cmp := func(b gjson.Result) int {
		if got.Type == gjson.Number || b.Type == gjson.Number {
			switch {
			case got.Float() < b.Float():
				return -1
			case got.Float() > b.Float():
				return 1
			}
			return 0
		}
		return strings.Compare(got.String(), b.String())
	}
	ok := true
	bounds.ForEach(func(k, v gjson.Result) bool {
		switch k.String() {
		case "gt":
			ok = cmp(v) > 0
		case "gte":
			ok = cmp(v) >= 0
		case "lt":
			ok = cmp(v) < 0
		case "lte":
			ok = cmp(v) <= 0
		}
		return ok
	})
	return ok
}

func matchBool(clause gjson.Result, source []byte) (bool, error) {
	each := func(key string, fn func(bool) bool) error {
		var err error
		list := clause.Get(key)
		items := list.Array()
		if list.IsObject() {
			items = []gjson.Result{list}
		}
		for _, sub := range items {
			ok, e := matches(sub, source)
			if e != nil {
				err = e
				break
			}
			if !fn(ok) {
				break
			}
		}
		return err
	}

	result := true
	for _, key := range []string{"must", "filter"} {
		if err := each(key, func(ok bool) bool { result = result && ok; return result }); err != nil {
			return false, err
		}
	}
	if !result {
		return false, nil
	}
	if err := each("must_not", func(ok bool) bool { result = result && !ok; return result }); err != nil {
		return false, err
	}
	if !result {
		return false, nil
	}

	should := clause.Get("should")
	if !should.Exists() || (len(should.Array()) == 0 && !should.IsObject()) {
		return true, nil
	}
	if clause.Get("must").Exists() || clause.Get("filter").Exists() {
		return true, nil
	}
	hit := false
	if err := each("should", func(ok bool) bool { hit = hit || ok; return !hit }); err != nil {
		return false, err
	}
	return hit, nil
}
