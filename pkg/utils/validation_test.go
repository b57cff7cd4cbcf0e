package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Category string `json:"category" validate:"required"`
	Start    string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	Workers  int    `yaml:"workers" validate:"min=1,max=8"`
}

func TestFieldProblems(t *testing.T) {
	assert.Nil(t, FieldProblems(sample{Category: "cs.LG", Start: "2024-01-01", Workers: 2}))

	problems := FieldProblems(sample{Start: "01/02/2024", Workers: 9})
	require.Len(t, problems, 3)
	assert.Equal(t, FieldProblem{Field: "category", Reason: "is required"}, problems[0])
	assert.Equal(t, FieldProblem{Field: "start", Reason: "must be a date in 2006-01-02 format"}, problems[1])
	assert.Equal(t, FieldProblem{Field: "workers", Reason: "must be at most 8"}, problems[2])
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Category: "x", Workers: 1}))
	err := ValidateStruct(sample{Workers: 1})
	assert.EqualError(t, err, "category is required")
}
