package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID     string `json:"id" validate:"required"`
	Amount int    `json:"amount" validate:"min=1,max=32000"`
}

type sample struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=150,username"`
	Items    []item `json:"ingredients" validate:"required,min=1,dive"`
}

func TestValidateStructValid(t *testing.T) {
	err := ValidateStruct(sample{
		Email:    "cook@example.com",
		Username: "cook.book+1",
		Items:    []item{{ID: "x", Amount: 32000}},
	})
	assert.NoError(t, err)
}

func TestValidateStructFieldErrors(t *testing.T) {
	err := ValidateStruct(sample{
		Email:    "not-an-email",
		Username: "bad name!",
		Items:    []item{{ID: "x", Amount: 1}, {ID: "", Amount: 32001}},
	})
	require.Error(t, err)

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, []string{"Enter a valid email address."}, errs["email"])
	assert.Contains(t, errs["username"][0], "Enter a valid username")
	assert.Equal(t, []string{"This field is required."}, errs["ingredients[1].id"])
	assert.Equal(t, []string{"Ensure this value is less than or equal to 32000."}, errs["ingredients[1].amount"])
	assert.NotContains(t, errs, "ingredients[0].amount")
}

func TestValidateStructEmptyList(t *testing.T) {
	err := ValidateStruct(sample{Email: "a@b.co", Username: "a", Items: []item{}})
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"Ensure this field has at least 1 elements."}, errs["ingredients"])
}

func TestErrorsAddAndErr(t *testing.T) {
	errs := Errors{}
	assert.NoError(t, errs.Err())

	errs.Add("ingredients", "Ingredients must be unique.")
	errs.Add("ingredients", "Unknown ingredient.")
	require.Error(t, errs.Err())
	assert.Equal(t, "validation failed: ingredients: Ingredients must be unique. Unknown ingredient.", errs.Error())
}

func TestValidateStructMaxBytes(t *testing.T) {
	type secret struct {
		Password string `json:"password" validate:"required,maxbytes=4"`
	}
	assert.NoError(t, ValidateStruct(secret{Password: "abcd"}))

	// Four runes, eight bytes.
	var errs Errors
	require.ErrorAs(t, ValidateStruct(secret{Password: "ääää"}), &errs)
	assert.Equal(t, []string{"Ensure this field has no more than 4 bytes."}, errs["password"])
}
