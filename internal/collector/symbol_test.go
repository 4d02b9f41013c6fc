package collector

import (
	"errors"
	"testing"

	"github.com/newthinker/taengine/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input        string
		defaultQuote string
		expected     string
	}{
		// bare base gets the default quote
		{"BTC", "USDT", "BTCUSDT"},
		{"eth", "USDT", "ETHUSDT"},
		{"BTC", "", "BTC"},

		// separators
		{"BTC-USDT", "USDT", "BTCUSDT"},
		{"btc/usdt", "USDT", "BTCUSDT"},
		{"BTC_USDT", "", "BTCUSDT"},
		{" btcusdt ", "", "BTCUSDT"},

		// quote other than the default
		{"BTC-BUSD", "USDT", "BTCBUSD"},
		{"ETH/BTC", "USDT", "ETHBTC"},
		{"SOL-FDUSD", "USDT", "SOLFDUSD"},

		{"", "USDT", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeSymbol(tc.input, tc.defaultQuote))
		})
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		symbol        string
		expectedBase  string
		expectedQuote string
	}{
		{"BTCUSDT", "BTC", "USDT"},
		{"ETHBTC", "ETH", "BTC"},
		{"BTCBUSD", "BTC", "BUSD"},
		{"DOGEUSDT", "DOGE", "USDT"},
		{"SOLFDUSD", "SOL", "FDUSD"},
		{"btcusdc", "BTC", "USDC"},
		{"USDT", "USDT", ""},
		{"AAPL", "AAPL", ""},
	}

	for _, tc := range tests {
		t.Run(tc.symbol, func(t *testing.T) {
			base, quote := ParseSymbol(tc.symbol)
			assert.Equal(t, tc.expectedBase, base)
			assert.Equal(t, tc.expectedQuote, quote)
		})
	}
}

func TestValidateSymbol(t *testing.T) {
	assert.NoError(t, ValidateSymbol("BTCUSDT"))
	assert.NoError(t, ValidateSymbol("1000SHIBUSDT"))

	for _, bad := range []string{"", "B", "btcusdt", "BTC/USDT", "../ETC", "THISSYMBOLISWAYTOOLONG1"} {
		err := ValidateSymbol(bad)
		assert.True(t, errors.Is(err, core.ErrInvalidArgument), "ValidateSymbol(%q) = %v", bad, err)
	}
}
