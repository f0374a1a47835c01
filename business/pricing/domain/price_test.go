package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFallbackPrice(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{TokenEthereum, "2500"},
		{TokenMatic, "0.8"},
		{TokenAvalanche, "35"},
		{TokenBNB, "300"},
		{"fantom", "100"},
	}
	for _, tt := range tests {
		if got := FallbackPrice(tt.id); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("FallbackPrice(%s) = %s, want %s", tt.id, got, tt.want)
		}
	}
}
