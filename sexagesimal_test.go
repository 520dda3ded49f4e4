package indiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIndiFloat_Decimal(t *testing.T) {
	f, ok := parseIndiFloat("13.3")
	assert.True(t, ok)
	assert.Equal(t, 13.3, f)
}

func TestParseIndiFloat_Sexagesimal(t *testing.T) {
	f, ok := parseIndiFloat("10:30:00")
	assert.True(t, ok)
	assert.InDelta(t, 10.5, f, 1e-9)
}

func TestParseIndiFloat_SexagesimalNegative(t *testing.T) {
	f, ok := parseIndiFloat("-10:30:00")
	assert.True(t, ok)
	assert.InDelta(t, -10.5, f, 1e-9)
}

func TestParseIndiFloat_TwoComponent(t *testing.T) {
	f, ok := parseIndiFloat("10:30")
	assert.True(t, ok)
	assert.InDelta(t, 10.5, f, 1e-9)
}

func TestParseIndiFloat_Space(t *testing.T) {
	f, ok := parseIndiFloat("10 30 00")
	assert.True(t, ok)
	assert.InDelta(t, 10.5, f, 1e-9)
}

func TestParseIndiFloat_Invalid(t *testing.T) {
	_, ok := parseIndiFloat("not a number")
	assert.False(t, ok)
}

func TestFormatIndiFloat_AlwaysDecimal(t *testing.T) {
	assert.Equal(t, "10.5", formatIndiFloat(10.5))
	assert.Equal(t, "0", formatIndiFloat(0))
}
