package model

import "time"

type FilterType string

const (
	FilterTypeInclude FilterType = "include"
	FilterTypeExclude FilterType = "exclude"
)

func (t FilterType) IsValid() bool {
	return t == FilterTypeInclude || t == FilterTypeExclude
}

type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "not_equals"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "not_contains"
	OperatorRegex       Operator = "regex"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
	OperatorExists      Operator = "exists"
	OperatorNotExists   Operator = "not_exists"
)

var operators = []Operator{
	OperatorEquals, OperatorNotEquals,
	OperatorContains, OperatorNotContains,
	OperatorRegex,
	OperatorGreaterThan, OperatorLessThan,
	OperatorExists, OperatorNotExists,
}

func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

func (o Operator) IsValid() bool {
	for _, op := range operators {
		if op == o {
			return true
		}
	}
	return false
}

// FilterRule decides whether an alert becomes a ticket. Rules are evaluated
// by ascending Priority; equal priorities keep insertion order.
type FilterRule struct {
	ID            int64      `json:"id"`
	IntegrationID int64      `json:"integrationId"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	Enabled       bool       `json:"enabled"`
	FilterType    FilterType `json:"filterType"`
	FieldPath     string     `json:"fieldPath"`
	Operator      Operator   `json:"operator"`
	Value         string     `json:"value"`
	Priority      int32      `json:"priority"`
	CreatedAt     time.Time  `json:"createdAt"`
}
