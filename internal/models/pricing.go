package models

import "fmt"

// TaxRatePercent is the flat GST applied to the cart subtotal.
const TaxRatePercent = 18

// DeliveryCharge is fixed at zero under the current free-delivery policy.
const DeliveryCharge int64 = 0

// TaxOn computes the tax on a subtotal in minor units, rounded to the
// nearest unit.
func TaxOn(subtotal int64) int64 {
	return (subtotal*TaxRatePercent + 50) / 100
}

// PercentOf computes pct% of an amount in minor units, rounded to the
// nearest unit. Used for coupon discounts.
func PercentOf(amount int64, pct int) int64 {
	return (amount*int64(pct) + 50) / 100
}

// FormatMinor renders a minor-unit amount for display, e.g. 153400 -> "₹1534.00".
// Stored amounts stay integral; division by 100 happens only here.
func FormatMinor(amount int64, symbol string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, amount/100, amount%100)
}

type CheckoutSummary struct {
	Subtotal        int64  `json:"subtotal"`
	Tax             int64  `json:"tax"`
	DeliveryCharge  int64  `json:"deliveryCharge"`
	Total           int64  `json:"total"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}
