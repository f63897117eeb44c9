package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStructPasses(t *testing.T) {
	type input struct {
		Name string `validate:"required,max=10"`
	}
	assert.NoError(t, ValidateStruct(input{Name: "ok"}))
}

func TestValidateStructMessages(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
		Kind string `validate:"omitempty,oneof=draft active"`
	}

	err := ValidateStruct(input{Kind: "bogus"})
	require.Error(t, err)
	assert.Equal(t, "name is required, kind must be one of: draft active", err.Error())
}

func TestValidateStructMessageWithPercent(t *testing.T) {
	type input struct {
		Discount string `validate:"required,oneof=50% 75%"`
	}

	// Percent signs in tag params must come through verbatim, not as
	// printf directives
	err := ValidateStruct(input{Discount: "10%"})
	require.Error(t, err)
	assert.Equal(t, "discount must be one of: 50% 75%", err.Error())
}
