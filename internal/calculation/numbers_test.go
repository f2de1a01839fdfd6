package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"30000", "30000", true},
		{"30 000", "30000", true},
		{"30\u00a0000", "30000", true},
		{"1190,5", "1190.5", true},
		{"1190.5", "1190.5", true},
		{"-12", "-12", true},
		{"", "0", false},
		{"  ", "0", false},
		{"n/a", "0", false},
		{"9,9 %", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			}
		})
	}
}

func TestNullAmount(t *testing.T) {
	assert.False(t, nullAmount("10", false).Valid, "absent cell")
	assert.False(t, nullAmount("x", true).Valid)

	v := nullAmount("10", true)
	assert.True(t, v.Valid)
	assert.True(t, decimal.NewFromInt(10).Equal(v.Decimal))
}
