package display

import (
	"fmt"
	"strings"

	"github.com/VincentSun9339/order-book/src/models"
)

// RenderBook formats a book summary for human display, sell side on top
// ordered worst to best so the spread sits in the middle of the output.
// It only reads the summary and never touches the book itself.
func RenderBook(summary models.BookSummary) string {
	var b strings.Builder

	b.WriteString("Sell side:\n")
	if len(summary.Offers) == 0 {
		b.WriteString("EMPTY\n")
	}
	for i := len(summary.Offers) - 1; i >= 0; i-- {
		level := summary.Offers[i]
		fmt.Fprintf(&b, "(%d) Price=%s, Total units=%d\n", i+1, level.Price, level.Quantity)
	}

	b.WriteString("Buy side:\n")
	if len(summary.Bids) == 0 {
		b.WriteString("EMPTY\n")
	}
	for i, level := range summary.Bids {
		fmt.Fprintf(&b, "(%d) Price=%s, Total units=%d\n", i+1, level.Price, level.Quantity)
	}

	return b.String()
}
