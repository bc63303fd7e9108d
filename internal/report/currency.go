package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders amount with the currency's fraction digits and
// separators, followed by its ISO code, e.g. "1,234.50 MAD".
func FormatCurrency(amount decimal.Decimal, currency string) string {
	fraction, dec, thousand := 2, ".", ","
	if cur := money.GetCurrency(currency); cur != nil {
		fraction, dec, thousand = cur.Fraction, cur.Decimal, cur.Thousand
	}

	minor := amount.Shift(int32(fraction)).Round(0).IntPart()
	return money.NewFormatter(fraction, dec, thousand, currency, "1 $").Format(minor)
}
