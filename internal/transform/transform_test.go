package transform_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"alertdesk.app/intake/internal/transform"
)

var _ = Describe("Apply", func() {
	DescribeTable("text transforms",
		func(name transform.Name, in any, expected any) {
			Expect(transform.Apply(name, in)).To(Equal(expected))
		},
		Entry("uppercase", transform.Uppercase, "disk full", "DISK FULL"),
		Entry("lowercase", transform.Lowercase, "CRITICAL", "critical"),
		Entry("trim", transform.Trim, "  padded \n", "padded"),
		Entry("uppercase stringifies numbers", transform.Uppercase, json.Number("42"), "42"),
		Entry("lowercase stringifies booleans", transform.Lowercase, true, "true"),
	)

	DescribeTable("severity_to_priority",
		func(in any, expected string) {
			Expect(transform.Apply(transform.SeverityToPriority, in)).To(Equal(expected))
		},
		Entry("critical", "critical", "critical"),
		Entry("upper-case CRITICAL", "CRITICAL", "critical"),
		Entry("high", "high", "high"),
		Entry("major", "Major", "high"),
		Entry("warning", "warning", "medium"),
		Entry("medium", "medium", "medium"),
		Entry("minor", "minor", "low"),
		Entry("low", "low", "low"),
		Entry("info", "INFO", "low"),
		Entry("informational", "informational", "low"),
		Entry("surrounding spaces", " high ", "high"),
		Entry("unknown token", "catastrophic", "medium"),
		Entry("numeric severity", float64(3), "medium"),
	)

	It("passes values through unknown transforms", func() {
		Expect(transform.Apply("reverse", "abc")).To(Equal("abc"))
		Expect(transform.Apply("reverse", float64(7))).To(Equal(float64(7)))
	})

	It("passes values through when no transform is named", func() {
		Expect(transform.Apply("", "Mixed Case")).To(Equal("Mixed Case"))
	})

	It("passes absent and empty input through unchanged", func() {
		Expect(transform.Apply(transform.Uppercase, nil)).To(BeNil())
		Expect(transform.Apply(transform.SeverityToPriority, "")).To(Equal(""))
	})

	It("reports which names are known", func() {
		for _, name := range transform.Names() {
			Expect(transform.IsKnown(name)).To(BeTrue())
		}
		Expect(transform.IsKnown("reverse")).To(BeFalse())
	})
})
