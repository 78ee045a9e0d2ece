/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/richie6280/docstore/errors"
)

// Operator is a whitelisted comparison used in field conditions.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

var operatorAliases = map[string]Operator{
	"=":  OpEqual,
	"==": OpEqual,
	"!=": OpNotEqual,
	"<>": OpNotEqual,
	"<":  OpLess,
	"<=": OpLessOrEqual,
	">":  OpGreater,
	">=": OpGreaterOrEqual,
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ParseOperator maps user input such as "==" or "<>" to an Operator.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorAliases[strings.TrimSpace(s)]
	if !ok {
		return "", errors.NewValidationError("operator",
			fmt.Sprintf("unsupported operator %q, expected one of %s", s, strings.Join(SupportedOperators(), " ")))
	}
	return op, nil
}

// SupportedOperators lists accepted operator spellings in stable order.
func SupportedOperators() []string {
	keys := lo.Keys(operatorAliases)
	slices.Sort(keys)
	return keys
}

// ValidateField rejects anything other than a dotted identifier path.
func ValidateField(field string) error {
	if !fieldPattern.MatchString(field) {
		return errors.NewValidationError("field", fmt.Sprintf("invalid field path %q", field))
	}
	return nil
}

// Condition selects items whose Field compares to Value with Op.
// Field and Op are validated; Value is always sent as a bound parameter.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// NewCondition validates field and operator and builds a Condition.
func NewCondition(field, operator string, value any) (Condition, error) {
	if err := ValidateField(field); err != nil {
		return Condition{}, err
	}
	op, err := ParseOperator(operator)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: field, Op: op, Value: value}, nil
}

// IDEquals is the condition used for id lookups.
func IDEquals(id string) Condition {
	return Condition{Field: IDField, Op: OpEqual, Value: id}
}

// Path splits the field into its dotted segments.
func (c Condition) Path() []string {
	return strings.Split(c.Field, ".")
}

// Validate re-checks a Condition built without NewCondition.
func (c Condition) Validate() error {
	if err := ValidateField(c.Field); err != nil {
		return err
	}
	if _, ok := lo.Find(lo.Values(operatorAliases), func(op Operator) bool { return op == c.Op }); !ok {
		return errors.NewValidationError("operator", fmt.Sprintf("unsupported operator %q", c.Op))
	}
	return nil
}
