// Package currency converts donor-entered amounts to and from the USD base currency
// using a static rate table.
package currency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Base is the normalization currency used for reporting.
const Base = "USD"

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// rates are units of a currency per one USD.
var rates = map[string]float64{
	"USD": 1.0, "EUR": 0.85, "GBP": 0.73, "JPY": 110.0, "CAD": 1.25,
	"AUD": 1.35, "CHF": 0.92, "CNY": 6.45, "INR": 74.5, "BRL": 5.2,
	"MXN": 20.1, "KRW": 1180.0, "SGD": 1.35, "HKD": 7.8, "NOK": 8.5,
	"SEK": 8.7, "DKK": 6.3, "PLN": 3.9, "CZK": 21.5, "HUF": 300.0,
	"RUB": 73.5, "ZAR": 14.8, "TRY": 8.5, "ILS": 3.2, "AED": 3.67,
	"SAR": 3.75, "THB": 33.0, "MYR": 4.2, "IDR": 14300.0, "PHP": 50.5,
	"VND": 23000.0, "NZD": 1.4, "CLP": 800.0, "COP": 3800.0, "PEN": 3.6,
	"ARS": 100.0, "UYU": 43.0, "BOB": 6.9, "PYG": 7000.0, "BGN": 1.66,
	"RON": 4.2, "HRK": 6.4, "RSD": 100.0, "MKD": 52.0, "ALL": 104.0,
	"ISK": 130.0, "MDL": 17.8, "UAH": 27.0, "BYN": 2.5, "KZT": 425.0,
	"UZS": 10700.0, "KGS": 84.5, "TJS": 11.3, "TMT": 3.5, "AZN": 1.7,
	"GEL": 3.1, "AMD": 520.0, "LBP": 1500.0, "JOD": 0.71, "KWD": 0.30,
	"BHD": 0.38, "QAR": 3.64, "OMR": 0.38, "YER": 250.0, "AFN": 78.0,
	"PKR": 160.0, "LKR": 200.0, "BDT": 85.0, "NPR": 119.0, "BTN": 74.5,
	"MVR": 15.4, "MMK": 1770.0, "KHR": 4100.0, "LAK": 9500.0, "MOP": 8.0,
	"TWD": 28.0, "MNT": 2850.0,
}

var symbols = map[string]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥", "CAD": "C$",
	"AUD": "A$", "CHF": "CHF", "CNY": "¥", "INR": "₹", "BRL": "R$",
	"MXN": "$", "KRW": "₩", "SGD": "S$", "HKD": "HK$", "NOK": "kr",
	"SEK": "kr", "DKK": "kr", "PLN": "zł", "CZK": "Kč", "HUF": "Ft",
	"RUB": "₽", "ZAR": "R", "TRY": "₺", "ILS": "₪", "AED": "د.إ",
	"SAR": "﷼", "THB": "฿", "MYR": "RM", "IDR": "Rp", "PHP": "₱",
	"VND": "₫", "NZD": "NZ$", "CLP": "$", "COP": "$", "PEN": "S/",
	"ARS": "$", "UYU": "$U", "BOB": "Bs", "PYG": "₲", "BGN": "лв",
	"RON": "lei", "HRK": "kn", "RSD": "дин", "MKD": "ден", "ALL": "L",
	"ISK": "kr", "MDL": "L", "UAH": "₴", "BYN": "Br", "KZT": "₸",
	"UZS": "лв", "KGS": "лв", "TJS": "SM", "TMT": "T", "AZN": "₼",
	"GEL": "₾", "AMD": "֏", "LBP": "ل.ل", "JOD": "د.ا", "KWD": "د.ك",
	"BHD": "د.ب", "QAR": "ر.ق", "OMR": "ر.ع.", "YER": "﷼", "AFN": "؋",
	"PKR": "₨", "LKR": "₨", "BDT": "৳", "NPR": "₨", "BTN": "Nu.",
	"MVR": ".ރ", "MMK": "K", "KHR": "៛", "LAK": "₭", "MOP": "MOP$",
	"TWD": "NT$", "MNT": "₮",
}

// zeroDecimal currencies are formatted without minor units.
var zeroDecimal = []string{"JPY", "KRW", "VND", "IDR", "UZS", "KHR", "LAK", "MMK", "MNT"}

var supported = func() []string {
	codes := lo.Keys(rates)
	sort.Strings(codes)
	return codes
}()

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsSupported(code string) bool {
	_, ok := rates[Normalize(code)]
	return ok
}

// Supported returns the supported codes in alphabetical order.
func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

func rate(code string) (float64, error) {
	r, ok := rates[Normalize(code)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return r, nil
}

// ToUSD converts amount expressed in code to the base currency.
func ToUSD(amount float64, code string) (float64, error) {
	r, err := rate(code)
	if err != nil {
		return 0, err
	}
	return amount / r, nil
}

// FromUSD converts a base currency amount into code.
func FromUSD(usd float64, code string) (float64, error) {
	r, err := rate(code)
	if err != nil {
		return 0, err
	}
	return usd * r, nil
}

// ExchangeRate returns how many units of to one unit of from buys.
func ExchangeRate(from, to string) (float64, error) {
	if Normalize(from) == Normalize(to) {
		return 1.0, nil
	}
	fr, err := rate(from)
	if err != nil {
		return 0, err
	}
	tr, err := rate(to)
	if err != nil {
		return 0, err
	}
	return tr / fr, nil
}

// Format renders amount with the currency symbol, falling back to the code.
func Format(amount float64, code string) string {
	c := Normalize(code)
	sym, ok := symbols[c]
	if !ok {
		sym = c
	}
	if lo.Contains(zeroDecimal, c) {
		return fmt.Sprintf("%s%.0f", sym, amount)
	}
	return fmt.Sprintf("%s%.2f", sym, amount)
}
