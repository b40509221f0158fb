package currency

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUSD_RoundTripsForEverySupportedCode(t *testing.T) {
	for _, code := range Supported() {
		usd, err := ToUSD(123.45, code)
		require.NoError(t, err, code)
		back, err := FromUSD(usd, code)
		require.NoError(t, err, code)
		assert.InDelta(t, 123.45, back, 1e-9, code)
	}
}

func TestToUSD_CaseInsensitive(t *testing.T) {
	usd, err := ToUSD(85, "eur")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, usd, 1e-9)
	assert.True(t, IsSupported(" gbp "))
}

func TestToUSD_Unsupported(t *testing.T) {
	_, err := ToUSD(10, "XXX")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupportedCurrency))
	assert.False(t, IsSupported("XXX"))

	_, err = FromUSD(10, "")
	require.True(t, errors.Is(err, ErrUnsupportedCurrency))
}

func TestExchangeRate(t *testing.T) {
	r, err := ExchangeRate("USD", "usd")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)

	r, err = ExchangeRate("EUR", "JPY")
	require.NoError(t, err)
	assert.InDelta(t, 110.0/0.85, r, 1e-9)

	_, err = ExchangeRate("EUR", "XXX")
	require.True(t, errors.Is(err, ErrUnsupportedCurrency))
}

func TestSupported_SortedAndDefensiveCopy(t *testing.T) {
	codes := Supported()
	require.NotEmpty(t, codes)
	for i := 1; i < len(codes); i++ {
		require.Less(t, codes[i-1], codes[i])
	}
	codes[0] = "MUTATED"
	assert.NotEqual(t, "MUTATED", Supported()[0])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$10.50", Format(10.5, "USD"))
	assert.Equal(t, "¥1200", Format(1200.4, "jpy"))
	assert.Equal(t, "Bs3.00", Format(3, "BOB"))
	assert.Equal(t, "د.إ12.00", Format(12, "aed"))
	assert.Equal(t, "៛4100", Format(4100, "KHR"))
	assert.Equal(t, "Nu.7.25", Format(7.25, "BTN"))
	assert.Equal(t, "XXX3.00", Format(3, "XXX"))
}

func TestFormat_EverySupportedCodeHasSymbol(t *testing.T) {
	for _, code := range Supported() {
		_, ok := symbols[code]
		assert.True(t, ok, "no symbol for %s", code)
	}
	assert.Len(t, symbols, len(rates))
}
