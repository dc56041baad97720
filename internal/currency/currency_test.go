package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseDisplayInput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "0,00"},
		{"0", "0,00"},
		{"5", "0,05"},
		{"50", "0,50"},
		{"150", "1,50"},
		{"1500", "15,00"},
		{"150000", "1.500,00"},
		{"123456789", "1.234.567,89"},
		{"1a5b0", "1,50"},
		{"R$ 1.500,00", "1.500,00"},
		{"000150", "1,50"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseDisplayInput(c.in), "input %q", c.in)
	}
}

func TestParseDisplayInput_Idempotent(t *testing.T) {
	for _, in := range []string{"", "7", "150", "150000", "999999999"} {
		once := ParseDisplayInput(in)
		assert.Equal(t, once, ParseDisplayInput(once))
	}
}

func TestToNumeric_RoundTrip(t *testing.T) {
	cases := []struct {
		digits string
		cents  int64
	}{
		{"", 0},
		{"1", 1},
		{"150", 150},
		{"150000", 150000},
		{"123456789", 123456789},
	}
	for _, c := range cases {
		got, err := ToNumeric(ParseDisplayInput(c.digits))
		assert.NoError(t, err)
		want := decimal.New(c.cents, -2)
		assert.True(t, want.Equal(got), "digits %q: want %s got %s", c.digits, want, got)
	}
}

func TestToNumeric_Invalid(t *testing.T) {
	_, err := ToNumeric("abc")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.500,00", FormatAmount(decimal.New(150000, -2)))
	assert.Equal(t, "0,00", FormatAmount(decimal.Zero))
	assert.Equal(t, "80,50", FormatAmount(decimal.New(8050, -2)))
	assert.Equal(t, "-1.500,00", FormatAmount(decimal.New(-150000, -2)))
}

func TestToDisplay(t *testing.T) {
	assert.Equal(t, "R$ 1.500,00", ToDisplay(decimal.New(150000, -2)))
	assert.Equal(t, "R$ 0,00", ToDisplay(decimal.Zero))
	assert.Equal(t, "R$ 80,50", ToDisplay(decimal.New(8050, -2)))
	assert.Equal(t, "R$ 1.234.567,89", ToDisplay(decimal.New(123456789, -2)))
}
