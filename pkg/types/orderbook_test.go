package types

import (
	"testing"
)

func TestBookPayload_Best(t *testing.T) {
	tests := []struct {
		name     string
		payload  BookPayload
		wantSell *OrderQuote
		wantBuy  *OrderQuote
	}{
		{
			name:    "empty_book",
			payload: BookPayload{},
		},
		{
			name: "sorted_book_uses_first_entries",
			payload: BookPayload{
				Sell: []OrderQuote{{Price: 100, VolumeRemain: 50}, {Price: 110, VolumeRemain: 5}},
				Buy:  []OrderQuote{{Price: 90, VolumeRemain: 10}, {Price: 80, VolumeRemain: 100}},
			},
			wantSell: &OrderQuote{Price: 100, VolumeRemain: 50},
			wantBuy:  &OrderQuote{Price: 90, VolumeRemain: 10},
		},
		{
			name: "unsorted_book_picks_extremes",
			payload: BookPayload{
				Sell: []OrderQuote{{Price: 120, VolumeRemain: 1}, {Price: 99, VolumeRemain: 7}},
				Buy:  []OrderQuote{{Price: 70, VolumeRemain: 1}, {Price: 95, VolumeRemain: 3}},
			},
			wantSell: &OrderQuote{Price: 99, VolumeRemain: 7},
			wantBuy:  &OrderQuote{Price: 95, VolumeRemain: 3},
		},
		{
			name: "invalid_entries_ignored",
			payload: BookPayload{
				Sell: []OrderQuote{{Price: 0, VolumeRemain: 10}, {Price: -5, VolumeRemain: 10}},
				Buy:  []OrderQuote{{Price: 50, VolumeRemain: -1}, {Price: 40, VolumeRemain: 2}},
			},
			wantBuy: &OrderQuote{Price: 40, VolumeRemain: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.payload.Best()
			checkQuote(t, "sell", got.Sell, tt.wantSell)
			checkQuote(t, "buy", got.Buy, tt.wantBuy)
		})
	}
}

func checkQuote(t *testing.T, side string, got *OrderQuote, want *OrderQuote) {
	t.Helper()

	if want == nil {
		if got != nil {
			t.Errorf("%s = %+v, want nil", side, *got)
		}
		return
	}

	if got == nil {
		t.Fatalf("%s = nil, want %+v", side, *want)
	}

	if *got != *want {
		t.Errorf("%s = %+v, want %+v", side, *got, *want)
	}
}

func TestItem_UnitVolume(t *testing.T) {
	vol := 10.0
	neg := -1.0

	if got := (Item{ID: 1, Volume: &vol}).UnitVolume(); got != 10 {
		t.Errorf("UnitVolume() = %v, want 10", got)
	}
	if got := (Item{ID: 1}).UnitVolume(); got != 0 {
		t.Errorf("UnitVolume() with nil volume = %v, want 0", got)
	}
	if got := (Item{ID: 1, Volume: &neg}).UnitVolume(); got != 0 {
		t.Errorf("UnitVolume() with negative volume = %v, want 0", got)
	}
}

func TestItem_DisplayName(t *testing.T) {
	if got := (Item{ID: 34, Name: "Tritanium"}).DisplayName(); got != "Tritanium" {
		t.Errorf("DisplayName() = %q, want %q", got, "Tritanium")
	}
	if got := (Item{ID: 34}).DisplayName(); got != "34" {
		t.Errorf("DisplayName() = %q, want %q", got, "34")
	}
}

func TestAPIError_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{status: 200, want: false},
		{status: 404, want: false},
		{status: 420, want: true},
		{status: 429, want: true},
		{status: 502, want: true},
	}

	for _, tt := range tests {
		err := &APIError{StatusCode: tt.status, Endpoint: "/markets/1/orders/"}
		if got := err.Retryable(); got != tt.want {
			t.Errorf("Retryable() for %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}
