package jsonpath_test

import (
	"encoding/json"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"alertdesk.app/intake/internal/jsonpath"
)

func mustDecode(raw string) any {
	v, err := jsonpath.Decode([]byte(raw))
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Lookup", func() {
	var payload any

	BeforeEach(func() {
		payload = mustDecode(`{
			"severity": "critical",
			"alert": {"level": "high", "labels": {"team": "db"}},
			"alerts": [{"name": "disk"}, {"name": "cpu"}],
			"count": 5,
			"cleared": null
		}`)
	})

	It("resolves a top-level key", func() {
		v, ok := jsonpath.Lookup(payload, "severity")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("critical"))
	})

	It("resolves nested keys", func() {
		v, ok := jsonpath.Lookup(payload, "alert.labels.team")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("db"))
	})

	It("indexes arrays with numeric segments", func() {
		v, ok := jsonpath.Lookup(payload, "alerts.1.name")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("cpu"))
	})

	It("returns the root for an empty path", func() {
		v, ok := jsonpath.Lookup(payload, "")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(payload))
	})

	DescribeTable("absent paths",
		func(path string) {
			v, ok := jsonpath.Lookup(payload, path)
			Expect(ok).To(BeFalse())
			Expect(v).To(BeNil())
		},
		Entry("missing key", "missing"),
		Entry("missing nested key", "alert.missing.deeper"),
		Entry("traversal through a string", "severity.level"),
		Entry("traversal through a number", "count.value"),
		Entry("array index out of range", "alerts.7.name"),
		Entry("non-numeric array segment", "alerts.first"),
		Entry("traversal through null", "cleared.reason"),
	)

	It("reports null as present from Lookup but absent from Present", func() {
		v, ok := jsonpath.Lookup(payload, "cleared")
		Expect(ok).To(BeTrue())
		Expect(v).To(BeNil())

		_, ok = jsonpath.Present(payload, "cleared")
		Expect(ok).To(BeFalse())
	})

	It("handles non-object roots", func() {
		_, ok := jsonpath.Lookup("plain", "a")
		Expect(ok).To(BeFalse())
		_, ok = jsonpath.Lookup(nil, "a")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("String", func() {
	DescribeTable("coercion",
		func(v any, expected string) {
			Expect(jsonpath.String(v)).To(Equal(expected))
		},
		Entry("string", "disk full", "disk full"),
		Entry("integral float", float64(5), "5"),
		Entry("fractional float", 2.5, "2.5"),
		Entry("json number", json.Number("12345678901234567890"), "12345678901234567890"),
		Entry("true", true, "true"),
		Entry("nil", nil, ""),
		Entry("object", map[string]any{"a": "b"}, `{"a":"b"}`),
		Entry("array", []any{"x", float64(1)}, `["x",1]`),
	)
})

var _ = Describe("Number", func() {
	DescribeTable("numeric values",
		func(v any, expected float64) {
			Expect(jsonpath.Number(v)).To(Equal(expected))
		},
		Entry("float", 3.5, 3.5),
		Entry("json number", json.Number("42"), float64(42)),
		Entry("numeric string", " 90 ", float64(90)),
		Entry("true", true, float64(1)),
		Entry("false", false, float64(0)),
	)

	DescribeTable("non-numeric values are NaN",
		func(v any) {
			Expect(math.IsNaN(jsonpath.Number(v))).To(BeTrue())
		},
		Entry("word", "high"),
		Entry("empty string", ""),
		Entry("nil", nil),
		Entry("object", map[string]any{}),
	)
})

var _ = Describe("Decode", func() {
	It("keeps numbers as json.Number", func() {
		v := mustDecode(`{"id": 9007199254740993}`)
		id, ok := jsonpath.Lookup(v, "id")
		Expect(ok).To(BeTrue())
		Expect(jsonpath.String(id)).To(Equal("9007199254740993"))
	})

	It("rejects invalid JSON", func() {
		_, err := jsonpath.Decode([]byte(`{"a":`))
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("rejects data after the value",
		func(raw string) {
			_, err := jsonpath.Decode([]byte(raw))
			Expect(err).To(HaveOccurred())
		},
		Entry("second value", `{"a":1} {"b":2}`),
		Entry("stray closing brace", `{"a":1}}`),
		Entry("stray closing bracket", `{"a":1}]`),
		Entry("stray closing bracket after array", `[1,2]]`),
		Entry("trailing garbage", `{"a":1} x`),
	)

	It("accepts trailing whitespace", func() {
		v, err := jsonpath.Decode([]byte("{\"a\":1}\n  "))
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(HaveKey("a"))
	})
})
