/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richie6280/docstore/errors"
)

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in      string
		want    Operator
		wantErr bool
	}{
		{"=", OpEqual, false},
		{"==", OpEqual, false},
		{" == ", OpEqual, false},
		{"!=", OpNotEqual, false},
		{"<>", OpNotEqual, false},
		{"<", OpLess, false},
		{"<=", OpLessOrEqual, false},
		{">", OpGreater, false},
		{">=", OpGreaterOrEqual, false},
		{"LIKE", "", true},
		{"= 1 OR 1", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOperator(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateField(t *testing.T) {
	valid := []string{"id", "name", "_ts", "detail.age", "a1.b_2.c"}
	for _, f := range valid {
		assert.NoError(t, ValidateField(f), f)
	}

	invalid := []string{"", "1name", "name;", "detail..age", ".name", "name.", "c.name = 'x' OR 1=1", `name"]`, "na me"}
	for _, f := range invalid {
		assert.True(t, errors.IsValidationError(ValidateField(f)), f)
	}
}

func TestNewCondition(t *testing.T) {
	cond, err := NewCondition("detail.age", "==", 30)
	require.NoError(t, err)
	assert.Equal(t, Condition{Field: "detail.age", Op: OpEqual, Value: 30}, cond)
	assert.Equal(t, []string{"detail", "age"}, cond.Path())

	_, err = NewCondition("name", "LIKE", "a")
	assert.True(t, errors.IsValidationError(err))

	assert.NoError(t, IDEquals("1").Validate())
	assert.Error(t, Condition{Field: "id", Op: "~"}.Validate())
}

func TestSupportedOperatorsIsStable(t *testing.T) {
	assert.Equal(t, []string{"!=", "<", "<=", "<>", "=", "==", ">", ">="}, SupportedOperators())
}
