package filter

import (
	"math"
	"strings"

	"alertdesk.app/intake/internal/jsonpath"
	"alertdesk.app/intake/internal/model"
)

// operatorFunc compares the resolved field against the rule operand. present is
// false when the path is missing or resolves to null.
type operatorFunc func(value any, present bool, operand string) bool

var operators = map[model.Operator]operatorFunc{
	model.OperatorEquals:      opEquals,
	model.OperatorNotEquals:   opNotEquals,
	model.OperatorContains:    opContains,
	model.OperatorNotContains: opNotContains,
	model.OperatorRegex:       opRegex,
	model.OperatorGreaterThan: opGreaterThan,
	model.OperatorLessThan:    opLessThan,
	model.OperatorExists:      opExists,
	model.OperatorNotExists:   opNotExists,
}

// Evaluate reports whether rule matches payload. It never fails: unknown
// operators and invalid patterns evaluate to false.
func Evaluate(rule model.FilterRule, payload any) bool {
	fn, ok := operators[rule.Operator]
	if !ok {
		return false
	}
	value, present := jsonpath.Present(payload, rule.FieldPath)
	return fn(value, present, rule.Value)
}

func opEquals(value any, present bool, operand string) bool {
	return present && jsonpath.String(value) == operand
}

func opNotEquals(value any, present bool, operand string) bool {
	return !opEquals(value, present, operand)
}

func opContains(value any, present bool, operand string) bool {
	return present && strings.Contains(jsonpath.String(value), operand)
}

func opNotContains(value any, present bool, operand string) bool {
	return !opContains(value, present, operand)
}

func opRegex(value any, present bool, operand string) bool {
	if !present {
		return false
	}
	re, ok := compilePattern(operand)
	if !ok {
		return false
	}
	return re.MatchString(jsonpath.String(value))
}

func opGreaterThan(value any, present bool, operand string) bool {
	return present && compare(value, operand) > 0
}

func opLessThan(value any, present bool, operand string) bool {
	return present && compare(value, operand) < 0
}

func opExists(_ any, present bool, _ string) bool {
	return present
}

func opNotExists(_ any, present bool, _ string) bool {
	return !present
}

// compare returns -1, 0 or 1, and 0 whenever either side is NaN so that both
// ordering operators fail on non-numeric input.
func compare(value any, operand string) int {
	a := jsonpath.Number(value)
	b := jsonpath.Number(operand)
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
