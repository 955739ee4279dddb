package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrEmptyPrice = errors.New("empty price")

// CartItem is one line of a cart as the remote service reports it.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
}

// CartPayload is the body of every cart endpoint. Items is nil when the field was
// absent or null, and non-nil (possibly empty) when the server sent a list.
type CartPayload struct {
	Items []*CartItem `json:"items"`
}

// ParsePrice turns a currency-formatted price ("₹1,250.50", "Rs. 99") into a decimal.
func ParsePrice(price string) (decimal.Decimal, error) {
	s := strings.TrimSpace(price)
	if s == "" {
		return decimal.Zero, ErrEmptyPrice
	}
	s = strings.ReplaceAll(trimCurrencyPrefix(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", price, err)
	}
	return d, nil
}

// trimCurrencyPrefix drops a leading symbol or code such as "₹", "$" or "Rs.".
// A '.' only counts as part of the prefix when it follows a letter, so ".50"
// and "-5" keep their meaning.
func trimCurrencyPrefix(s string) string {
	prevLetter := false
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
			prevLetter = true
		case r == '.' && prevLetter:
			prevLetter = false
		case unicode.IsSymbol(r) || unicode.IsSpace(r):
			prevLetter = false
		default:
			return s[i:]
		}
	}
	return ""
}

// Displayable reports whether an item should be rendered and counted.
func Displayable(item *CartItem) bool {
	return item != nil && strings.TrimSpace(item.Price) != ""
}

// VisibleItems filters out nil holes and priceless items without touching the input.
func VisibleItems(items []*CartItem) []CartItem {
	visible := make([]CartItem, 0, len(items))
	for _, item := range items {
		if Displayable(item) {
			visible = append(visible, *item)
		}
	}
	return visible
}

// Subtotal sums price × quantity over displayable items. Prices that fail to parse
// contribute zero.
func Subtotal(items []*CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if !Displayable(item) {
			continue
		}
		price, err := ParsePrice(item.Price)
		if err != nil {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// FormatAmount renders an amount the way prices are displayed: glyph plus two decimals.
func FormatAmount(glyph string, amount decimal.Decimal) string {
	return glyph + amount.StringFixed(2)
}
