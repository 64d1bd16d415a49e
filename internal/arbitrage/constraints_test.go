package arbitrage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(values map[string]string) func(string) string {
	return func(name string) string {
		return values[name]
	}
}

func TestDefaultConstraints(t *testing.T) {
	c := DefaultConstraints()

	assert.Equal(t, 50_000_000.0, c.Wallet)
	assert.Equal(t, 230.0, c.Cargo)
	assert.Equal(t, 1_000_000.0, c.MinProfit)
	assert.Equal(t, 10, c.Limit)
	assert.NoError(t, c.Validate())
}

func TestParseConstraints(t *testing.T) {
	tests := []struct {
		name      string
		values    map[string]string
		want      Constraints
		wantField string
	}{
		{
			name:   "all defaults",
			values: map[string]string{},
			want:   DefaultConstraints(),
		},
		{
			name: "explicit values",
			values: map[string]string{
				"wallet":     "10000",
				"cargo":      "1000.5",
				"min_profit": "100",
				"limit":      "3",
			},
			want: Constraints{Wallet: 10_000, Cargo: 1000.5, MinProfit: 100, Limit: 3},
		},
		{
			name:   "whitespace is ignored",
			values: map[string]string{"wallet": " 5 ", "limit": " "},
			want:   Constraints{Wallet: 5, Cargo: DefaultCargo, MinProfit: DefaultMinProfit, Limit: DefaultLimit},
		},
		{
			name:   "zero limit is valid",
			values: map[string]string{"limit": "0"},
			want:   Constraints{Wallet: DefaultWallet, Cargo: DefaultCargo, MinProfit: DefaultMinProfit, Limit: 0},
		},
		{name: "negative wallet", values: map[string]string{"wallet": "-1"}, wantField: "wallet"},
		{name: "non-numeric cargo", values: map[string]string{"cargo": "lots"}, wantField: "cargo"},
		{name: "negative min profit", values: map[string]string{"min_profit": "-0.5"}, wantField: "min_profit"},
		{name: "fractional limit", values: map[string]string{"limit": "2.5"}, wantField: "limit"},
		{name: "negative limit", values: map[string]string{"limit": "-3"}, wantField: "limit"},
		{name: "nan wallet", values: map[string]string{"wallet": "NaN"}, wantField: "wallet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConstraints(params(tt.values))

			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConstraints))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestConstraintsValidate(t *testing.T) {
	err := Constraints{Wallet: 1, Cargo: 1, MinProfit: 1, Limit: -2}.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "limit", verr.Field)
	assert.Equal(t, "-2", verr.Value)

	assert.NoError(t, Constraints{}.Validate())
}
