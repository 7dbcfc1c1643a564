package script

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/dop251/goja"

	"reqchain/internal/types"
)

// makeExpect builds the fluent assertion object returned by rc.expect.
// Every terminal check appends one outcome to the result in call order,
// pass or fail alike. The .not property flips the checks.
func (s *Sandbox) makeExpect(vm *goja.Runtime, res *types.ScriptResult, actual goja.Value, negated bool) *goja.Object {
	obj := vm.NewObject()

	record := func(passed bool, verb, expected string) {
		if negated {
			passed = !passed
			verb = "not " + verb
		}
		outcome := types.AssertionOutcome{
			Passed:   passed,
			Expected: expected,
			Actual:   describe(actual),
		}
		if passed {
			outcome.Message = "expected " + outcome.Actual + " " + verb + " " + expected
		} else {
			outcome.Message = "expected " + outcome.Actual + " " + verb + " " + expected + ", but it did not"
		}
		if expected == "" {
			outcome.Message = strings.TrimRight(outcome.Message, " ")
		}
		res.Assertions = append(res.Assertions, outcome)
	}

	obj.Set("toBe", func(expected goja.Value) {
		// Strict equality: NaN is never toBe NaN, +0 toBe -0 holds.
		record(actual.StrictEquals(expected), "to be", describe(expected))
	})

	obj.Set("toEqual", func(expected goja.Value) {
		a := types.NormalizeValue(actual.Export())
		b := types.NormalizeValue(expected.Export())
		record(reflect.DeepEqual(a, b), "to equal", describe(expected))
	})

	obj.Set("toContain", func(expected goja.Value) {
		record(contains(actual, expected), "to contain", describe(expected))
	})

	obj.Set("toBeTruthy", func() {
		record(actual.ToBoolean(), "to be truthy", "")
	})

	obj.Set("toBeNull", func() {
		record(goja.IsNull(actual), "to be null", "")
	})

	obj.Set("toBeGreaterThan", func(expected goja.Value) {
		record(actual.ToFloat() > expected.ToFloat(), "to be greater than", describe(expected))
	})

	obj.Set("toBeLessThan", func(expected goja.Value) {
		record(actual.ToFloat() < expected.ToFloat(), "to be less than", describe(expected))
	})

	obj.Set("toMatch", func(pattern string) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			record(false, "to match", pattern)
			return
		}
		record(re.MatchString(actual.String()), "to match", pattern)
	})

	if !negated {
		obj.Set("not", s.makeExpect(vm, res, actual, true))
	}

	return obj
}

// contains implements substring containment for strings and element
// membership for sequences.
func contains(actual, expected goja.Value) bool {
	switch a := types.NormalizeValue(actual.Export()).(type) {
	case string:
		if s, ok := expected.Export().(string); ok {
			return strings.Contains(a, s)
		}
		return strings.Contains(a, describe(expected))
	case []any:
		want := types.NormalizeValue(expected.Export())
		for _, item := range a {
			if reflect.DeepEqual(item, want) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
