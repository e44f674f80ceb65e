// Package filter decides whether an alert payload should become a ticket.
//
// Rules run in one pass ordered by ascending priority with insertion order
// breaking ties. The first enabled rule that matches decides: exclude rules
// reject and include rules admit. When nothing matches, the alert is rejected
// only if at least one enabled include rule exists.
package filter

import (
	"errors"
	"fmt"
	"sort"

	"alertdesk.app/intake/internal/model"
)

var ErrPatternTooLong = fmt.Errorf("regex pattern exceeds %d bytes", maxPatternLength)

var errUnknownOperator = errors.New("unknown operator")

const (
	ReasonNoRules        = "no filter rules configured"
	ReasonNoIncludeMatch = "alert did not match any include rule"
	ReasonNoMatch        = "no filter rule matched"
)

type Decision struct {
	Admit  bool
	Reason string
	// Rule is the rule that decided, nil when the outcome came from defaults.
	Rule *model.FilterRule
}

// Decide applies rules to payload. rules must be in insertion order; Decide
// does not modify the slice.
func Decide(rules []model.FilterRule, payload any) Decision {
	if len(rules) == 0 {
		return Decision{Admit: true, Reason: ReasonNoRules}
	}

	ordered := make([]model.FilterRule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	hasInclude := false
	for i := range ordered {
		rule := &ordered[i]
		if rule.FilterType == model.FilterTypeInclude {
			hasInclude = true
		}
		if !Evaluate(*rule, payload) {
			continue
		}
		switch rule.FilterType {
		case model.FilterTypeExclude:
			return Decision{Admit: false, Reason: fmt.Sprintf("excluded by filter rule %q", rule.Name), Rule: rule}
		case model.FilterTypeInclude:
			return Decision{Admit: true, Reason: fmt.Sprintf("included by filter rule %q", rule.Name), Rule: rule}
		}
	}

	if hasInclude {
		return Decision{Admit: false, Reason: ReasonNoIncludeMatch}
	}
	return Decision{Admit: true, Reason: ReasonNoMatch}
}

// ValidateRule checks a rule before it is stored.
func ValidateRule(rule model.FilterRule) error {
	if !rule.FilterType.IsValid() {
		return fmt.Errorf("unknown filter type %q", rule.FilterType)
	}
	if _, ok := operators[rule.Operator]; !ok {
		return fmt.Errorf("%w %q", errUnknownOperator, rule.Operator)
	}
	if rule.Operator == model.OperatorRegex {
		if err := ValidatePattern(rule.Value); err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
	}
	return nil
}
