package collector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/newthinker/taengine/internal/core"
)

// Quote currencies in detection order; longer codes sharing a suffix come
// first.
var quoteCurrencies = []string{"USDT", "USDC", "FDUSD", "BUSD", "TUSD", "BTC", "ETH", "BNB", "EUR", "TRY"}

var validSymbol = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// NormalizeSymbol converts various input formats to the exchange form
// (e.g. BTCUSDT). "btc-usdt", "BTC/USDT" and "btc_usdt" all normalize to
// BTCUSDT; a bare base like "BTC" gets defaultQuote appended.
func NormalizeSymbol(input string, defaultQuote string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("-", "", "/", "", "_", "").Replace(s)

	if _, quote := ParseSymbol(s); quote != "" {
		return s
	}
	return s + strings.ToUpper(defaultQuote)
}

// ParseSymbol splits a normalized symbol into base and quote,
// "BTCUSDT" -> ("BTC", "USDT"). Quote is empty when none is recognized.
func ParseSymbol(symbol string) (base, quote string) {
	s := strings.ToUpper(symbol)
	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}
	return s, ""
}

// ValidateSymbol checks that a normalized symbol is usable as a request
// parameter and as an archive path segment.
func ValidateSymbol(symbol string) error {
	if !validSymbol.MatchString(symbol) {
		return core.WrapError(core.ErrInvalidArgument, fmt.Errorf("invalid symbol %q", symbol))
	}
	return nil
}
