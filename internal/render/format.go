package render

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// SalesLabel formats a payment total for the sales tile, e.g. "R$ 1,234".
// Halves round to even.
func SalesLabel(total decimal.Decimal) string {
	return printer.Sprintf("R$ %d", total.RoundBank(0).IntPart())
}

// OrdersLabel formats the order-item total for the orders tile.
func OrdersLabel(orders int64) string {
	return printer.Sprintf("%d Orders", orders)
}

func Score(v float64) string {
	return printer.Sprintf("%.2f", v)
}
