// Package fare prices a flight offer together with the chosen extras.
package fare

import (
	"math"
	"strings"
)

// TaxRate is applied to the base fare only.
const TaxRate = 0.10

// AddOnPrices maps an extra to its surcharge. Extras not listed are free.
var AddOnPrices = map[string]float64{
	"Extra Baggage":       30,
	"Priority Boarding":   15,
	"Seat: Extra Legroom": 25,
}

// LineItem is a single priced extra
type LineItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Quote is the price breakdown shown before booking
type Quote struct {
	BaseFare float64    `json:"baseFare"`
	AddOns   []LineItem `json:"addOns"`
	Taxes    float64    `json:"taxes"`
	Total    float64    `json:"total"`
}

// Calculate builds a quote for baseFare plus extras. Blank and duplicate extras are ignored.
func Calculate(baseFare float64, extras []string) Quote {
	q := Quote{BaseFare: round(baseFare), AddOns: []LineItem{}}

	seen := make(map[string]bool, len(extras))
	var addOns float64
	for _, e := range extras {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		amount := AddOnPrices[e]
		q.AddOns = append(q.AddOns, LineItem{Name: e, Amount: amount})
		addOns += amount
	}

	q.Taxes = round(baseFare * TaxRate)
	q.Total = round(baseFare + addOns + q.Taxes)
	return q
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
