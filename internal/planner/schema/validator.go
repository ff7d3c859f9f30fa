package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Result is the outcome of a validation: either Valid with the (possibly
// repaired) payload, or a list of human-readable violations, one per error,
// each prefixed with the path of the offending field.
type Result struct {
	Valid   bool
	Errors  []string
	Payload map[string]interface{}
}

// ErrorString joins all violations for error details.
func (r *Result) ErrorString() string {
	return strings.Join(r.Errors, "; ")
}

var (
	cacheMu  sync.RWMutex
	compiled = map[*Schema]*gojsonschema.Schema{}
)

// How many strip/coerce rounds may run before a payload is rejected as
// structurally wrong.
const maxRepairPasses = 2

// Validate checks payload against s, compiling s at most once per *Schema
// identity. Two structurally identical Schema values compile separately.
//
// Validation is lenient-but-strict: all violations are collected in one
// pass; numeric strings are coerced to numbers where the schema expects a
// number, and unknown properties are stripped, when doing so resolves the
// violation. Structurally wrong data is still rejected. The input payload is
// never mutated; repairs are applied to a deep copy returned in
// Result.Payload.
func Validate(s *Schema, payload map[string]interface{}) *Result {
	schema, err := compile(s)
	if err != nil {
		return &Result{Valid: false, Errors: []string{fmt.Sprintf("(root): schema compilation failed: %v", err)}}
	}

	doc := deepCopyMap(payload)

	for pass := 0; ; pass++ {
		res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return &Result{Valid: false, Errors: []string{fmt.Sprintf("(root): %v", err)}}
		}
		if res.Valid() {
			return &Result{Valid: true, Payload: doc}
		}
		if pass >= maxRepairPasses || !repair(doc, res.Errors()) {
			return failure(res)
		}
	}
}

func compile(s *Schema) (*gojsonschema.Schema, error) {
	cacheMu.RLock()
	if c, ok := compiled[s]; ok {
		cacheMu.RUnlock()
		return c, nil
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if c, ok := compiled[s]; ok {
		return c, nil
	}
	c, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.Definition))
	if err != nil {
		return nil, err
	}
	compiled[s] = c
	return c, nil
}

func compiledCount() int {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	return len(compiled)
}

func failure(res *gojsonschema.Result) *Result {
	errs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		errs = append(errs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	sort.Strings(errs)
	return &Result{Valid: false, Errors: errs}
}

// repair applies the two tolerated fixes: strip additional properties and
// coerce numeric strings. Returns false when no violation was repairable.
func repair(doc map[string]interface{}, errs []gojsonschema.ResultError) bool {
	repaired := false
	for _, e := range errs {
		switch e.Type() {
		case "additional_property_not_allowed":
			prop, _ := e.Details()["property"].(string)
			if prop == "" {
				continue
			}
			if obj, ok := valueAt(doc, e.Field()).(map[string]interface{}); ok {
				if _, exists := obj[prop]; exists {
					delete(obj, prop)
					repaired = true
				}
			}
		case "invalid_type":
			expected, _ := e.Details()["expected"].(string)
			if !strings.Contains(expected, "number") && !strings.Contains(expected, "integer") {
				continue
			}
			str, ok := valueAt(doc, e.Field()).(string)
			if !ok {
				continue
			}
			num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
			if err != nil {
				continue
			}
			if setAt(doc, e.Field(), num) {
				repaired = true
			}
		}
	}
	return repaired
}

// valueAt resolves a dotted gojsonschema field path ("days.0.activities.1")
// against the document. "(root)" resolves to the document itself.
func valueAt(doc map[string]interface{}, field string) interface{} {
	if field == "" || field == "(root)" {
		return doc
	}
	var cur interface{} = doc
	for _, seg := range strings.Split(field, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			cur = node[seg]
		case []interface{}:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			cur = node[idx]
		default:
			return nil
		}
	}
	return cur
}

func setAt(doc map[string]interface{}, field string, value interface{}) bool {
	if field == "" || field == "(root)" {
		return false
	}
	segs := strings.Split(field, ".")
	parent := valueAt(doc, strings.Join(segs[:len(segs)-1], "."))
	last := segs[len(segs)-1]
	switch node := parent.(type) {
	case map[string]interface{}:
		node[last] = value
		return true
	case []interface{}:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(node) {
			return false
		}
		node[idx] = value
		return true
	}
	return false
}

func deepCopyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
