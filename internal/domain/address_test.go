package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validUSAddress() Address {
	return Address{
		Street1: "1209 Orange St",
		City:    "Wilmington",
		State:   "DE",
		ZipCode: "19801",
		Country: DefaultCountry,
	}
}

func TestAddressValidate_ValidUSAddress(t *testing.T) {
	assert.Empty(t, validUSAddress().Validate())
}

func TestAddressValidate_MissingRequiredFields(t *testing.T) {
	errs := Address{Country: DefaultCountry}.Validate()
	assert.NotEmpty(t, errs)
	assert.Contains(t, errs, "Street address is required")
	assert.Contains(t, errs, "City is required")
	assert.Contains(t, errs, "State is required")
	assert.Contains(t, errs, "Zip code is required")
}

func TestAddressValidate_USStateCodeEnforced(t *testing.T) {
	a := validUSAddress()
	a.State = "ZZ"

	errs := a.Validate()
	assert.Contains(t, errs, "State must be a valid US state code")

	a.State = "CA"
	assert.Empty(t, a.Validate())
}

func TestAddressValidate_ForeignStateIsFreeText(t *testing.T) {
	a := validUSAddress()
	a.Country = "Canada"
	a.State = "Ontario"
	assert.Empty(t, a.Validate())

	// Outside the US the region may be blank entirely.
	a.State = ""
	assert.Empty(t, a.Validate())
}

func TestIsUSStateCode(t *testing.T) {
	assert.True(t, IsUSStateCode("DE"))
	assert.True(t, IsUSStateCode("DC"))
	assert.True(t, IsUSStateCode("PR"))
	assert.False(t, IsUSStateCode("ZZ"))
	assert.False(t, IsUSStateCode("de")) // case-sensitive
	assert.False(t, IsUSStateCode(""))
}
