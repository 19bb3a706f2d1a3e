package price

import (
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"comma decimal", "49,90", 49.90, true},
		{"dot decimal", "19.99", 19.99, true},
		{"trailing euro", "19,99 €", 19.99, true},
		{"thousands dot", "1.299,00", 1299.00, true},
		{"plain integer rejected", "2", 0, false},
		{"reference code rejected", "305.332.14", 0, false},
		{"letters rejected", "Chaise", 0, false},
		{"empty", "", 0, false},
		{"percentage rejected", "-20%", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"euro string", "19,99 €", 19.99, true},
		{"plain number", "3", 3, true},
		{"currency prefix", "EUR 12.50", 12.50, true},
		{"zero rejected", "0", 0, false},
		{"negative rejected", "-5,00", 0, false},
		{"garbage rejected", "n/a", 0, false},
		{"rounds to cents", "10.578", 10.58, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestDivideByQuantity(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		quantity int
		want     float64
	}{
		{"even split", 39.98, 2, 19.99},
		{"repeating decimal rounds", 89.70, 3, 29.90},
		{"thirds round to cents", 100.00, 3, 33.33},
		{"quantity one untouched", 49.90, 1, 49.90},
		{"quantity zero untouched", 49.90, 0, 49.90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DivideByQuantity(tt.total, tt.quantity), 0.001)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 29.90, Round2(29.899999999999998), 0.0001)
	assert.InDelta(t, 10.58, Round2(10.578), 0.0001)
}

func TestFormatEUR(t *testing.T) {
	// Rendering is delegated to go-money; what this package owns is the
	// float-to-cents conversion.
	assert.Equal(t, money.New(4990, money.EUR).Display(), FormatEUR(49.90))
	assert.Equal(t, money.New(1999, money.EUR).Display(), FormatEUR(19.99))
	assert.Equal(t, money.New(30, money.EUR).Display(), FormatEUR(0.299999))
}
