package filter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"alertdesk.app/intake/internal/filter"
	"alertdesk.app/intake/internal/model"
)

func include(name, path string, op model.Operator, value string, priority int32) model.FilterRule {
	return model.FilterRule{Name: name, Enabled: true, FilterType: model.FilterTypeInclude, FieldPath: path, Operator: op, Value: value, Priority: priority}
}

func exclude(name, path string, op model.Operator, value string, priority int32) model.FilterRule {
	r := include(name, path, op, value, priority)
	r.FilterType = model.FilterTypeExclude
	return r
}

var _ = Describe("Decide", func() {
	It("admits when no rules are configured", func() {
		d := filter.Decide(nil, decode(`{"severity":"info"}`))
		Expect(d.Admit).To(BeTrue())
		Expect(d.Reason).To(Equal(filter.ReasonNoRules))
		Expect(d.Rule).To(BeNil())
	})

	It("rejects on a matching exclude rule", func() {
		rules := []model.FilterRule{exclude("drop info", "severity", model.OperatorEquals, "info", 0)}

		d := filter.Decide(rules, decode(`{"severity":"info"}`))
		Expect(d.Admit).To(BeFalse())
		Expect(d.Reason).To(ContainSubstring("drop info"))
		Expect(d.Rule.Name).To(Equal("drop info"))
	})

	It("admits when an exclude-only set does not match", func() {
		rules := []model.FilterRule{exclude("drop info", "severity", model.OperatorEquals, "info", 0)}

		d := filter.Decide(rules, decode(`{"severity":"critical"}`))
		Expect(d.Admit).To(BeTrue())
		Expect(d.Reason).To(Equal(filter.ReasonNoMatch))
	})

	It("rejects when include rules exist and none match", func() {
		rules := []model.FilterRule{include("prod only", "env", model.OperatorEquals, "prod", 0)}

		d := filter.Decide(rules, decode(`{"env":"staging"}`))
		Expect(d.Admit).To(BeFalse())
		Expect(d.Reason).To(Equal(filter.ReasonNoIncludeMatch))
	})

	It("lets a lower priority value win regardless of type", func() {
		rules := []model.FilterRule{
			include("keep critical", "severity", model.OperatorEquals, "critical", 2),
			exclude("drop staging", "env", model.OperatorEquals, "staging", 1),
		}

		d := filter.Decide(rules, decode(`{"severity":"critical","env":"staging"}`))
		Expect(d.Admit).To(BeFalse())
		Expect(d.Rule.Name).To(Equal("drop staging"))

		rules[0].Priority = 0
		d = filter.Decide(rules, decode(`{"severity":"critical","env":"staging"}`))
		Expect(d.Admit).To(BeTrue())
		Expect(d.Rule.Name).To(Equal("keep critical"))
	})

	It("breaks priority ties by insertion order", func() {
		rules := []model.FilterRule{
			exclude("first", "severity", model.OperatorExists, "", 5),
			include("second", "severity", model.OperatorExists, "", 5),
		}

		d := filter.Decide(rules, decode(`{"severity":"high"}`))
		Expect(d.Admit).To(BeFalse())
		Expect(d.Rule.Name).To(Equal("first"))

		rules[0], rules[1] = rules[1], rules[0]
		d = filter.Decide(rules, decode(`{"severity":"high"}`))
		Expect(d.Admit).To(BeTrue())
		Expect(d.Rule.Name).To(Equal("second"))
	})

	It("skips disabled rules", func() {
		disabled := exclude("disabled", "severity", model.OperatorEquals, "info", 0)
		disabled.Enabled = false
		rules := []model.FilterRule{disabled}

		d := filter.Decide(rules, decode(`{"severity":"info"}`))
		Expect(d.Admit).To(BeTrue())
	})

	It("ignores disabled include rules when falling through", func() {
		disabled := include("disabled include", "env", model.OperatorEquals, "prod", 0)
		disabled.Enabled = false
		rules := []model.FilterRule{disabled, exclude("drop info", "severity", model.OperatorEquals, "info", 1)}

		d := filter.Decide(rules, decode(`{"env":"staging","severity":"high"}`))
		Expect(d.Admit).To(BeTrue())
		Expect(d.Reason).To(Equal(filter.ReasonNoMatch))
	})

	It("does not reorder the caller's slice", func() {
		rules := []model.FilterRule{
			include("b", "x", model.OperatorExists, "", 9),
			include("a", "x", model.OperatorExists, "", 1),
		}
		filter.Decide(rules, decode(`{}`))
		Expect(rules[0].Name).To(Equal("b"))
	})

	It("is deterministic for a fixed rule list", func() {
		rules := []model.FilterRule{
			include("i", "severity", model.OperatorRegex, "^(high|critical)$", 3),
			exclude("e", "host", model.OperatorContains, "test", 3),
		}
		payload := decode(`{"severity":"high","host":"test-01"}`)
		first := filter.Decide(rules, payload)
		for range 10 {
			Expect(filter.Decide(rules, payload)).To(Equal(first))
		}
	})
})

var _ = Describe("ValidateRule", func() {
	It("accepts a well-formed rule", func() {
		Expect(filter.ValidateRule(include("ok", "a", model.OperatorEquals, "b", 0))).To(Succeed())
	})

	It("rejects unknown operators and filter types", func() {
		Expect(filter.ValidateRule(include("bad", "a", model.Operator("like"), "b", 0))).NotTo(Succeed())
		r := include("bad", "a", model.OperatorEquals, "b", 0)
		r.FilterType = "maybe"
		Expect(filter.ValidateRule(r)).NotTo(Succeed())
	})

	It("rejects uncompilable regex values", func() {
		Expect(filter.ValidateRule(include("bad", "a", model.OperatorRegex, "(", 0))).NotTo(Succeed())
	})
})
