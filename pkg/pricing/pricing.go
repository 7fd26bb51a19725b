// Package pricing formats Korean Won amounts and derives discount rates for display.
package pricing

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	wonPrinter = message.NewPrinter(language.Korean)
	wonSymbol  = wonPrinter.Sprint(currency.NarrowSymbol(currency.KRW))
)

// Discountable exposes the two price fields a discount is derived from.
type Discountable interface {
	RegularPrice() float64
	SaleAmount() (float64, bool)
}

// FormatPrice renders price as a ko-KR Won string with no fractional digits,
// e.g. 1234567 -> "₩1,234,567" and -1500 -> "-₩1,500".
// Fractions round half away from zero. NaN and infinities render as zero.
func FormatPrice(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		price = 0
	}
	amount := math.Round(price)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + wonSymbol + wonPrinter.Sprintf("%.0f", math.Abs(amount))
}

// DiscountRate returns the whole percentage by which the sale price undercuts
// the regular price. ok is false when there is no sale price, when the sale
// price is not lower than the regular price, or when either value is invalid.
func DiscountRate(p Discountable) (rate int, ok bool) {
	if p == nil {
		return 0, false
	}
	sale, onSale := p.SaleAmount()
	if !onSale {
		return 0, false
	}
	price := p.RegularPrice()
	if !valid(price) || !valid(sale) || price <= 0 || sale < 0 {
		return 0, false
	}
	if sale >= price {
		return 0, false
	}
	return int(math.Round((1 - sale/price) * 100)), true
}

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
