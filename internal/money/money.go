// Package money renders paise amounts as rupee strings for notices and receipts.
package money

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Symbol returns the display symbol for the store currency.
func Symbol() string {
	return printer.Sprint(currency.NarrowSymbol(currency.INR))
}

// Format renders cents (paise) as e.g. "₹1,300.00".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, Symbol(), printer.Sprintf("%d", cents/100), cents%100)
}

// FromRupees converts a whole-rupee price into paise.
func FromRupees(rupees int64) int64 {
	return rupees * 100
}
