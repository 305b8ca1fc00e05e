package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, Range{Min: 1, Max: 2}.Validate("temp"))
	assert.NoError(t, Range{Min: math.Inf(-1), Max: math.Inf(1)}.Validate("temp"))

	assert.EqualError(t, Range{Min: 3, Max: 2}.Validate("precip"), "precip_min must not be greater than precip_max")
	assert.Error(t, Range{Min: math.NaN(), Max: 2}.Validate("temp"))
	assert.Error(t, Range{Min: 1, Max: math.NaN()}.Validate("temp"))
}

func TestRangeClamp(t *testing.T) {
	b := Range{Min: 0.5, Max: 35}

	assert.Equal(t, Range{Min: 5, Max: 30}, b.Clamp(Range{Min: 5, Max: 30}))
	assert.Equal(t, b, b.Clamp(Range{Min: math.Inf(-1), Max: math.Inf(1)}))
	assert.Equal(t, Range{Min: 35, Max: 35}, b.Clamp(Range{Min: 40, Max: 50}))
}
