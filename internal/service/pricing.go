package service

import (
	"errors"

	"github.com/dineops/api/internal/database"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDiscountPct = errors.New("discount_pct must be between 0 and 100")
	ErrInvalidTaxPct      = errors.New("tax percentages must not be negative")
	ErrInvalidExtraCharge = errors.New("extra_charges must not be negative")
	ErrInvalidAmountPaid  = errors.New("amount_paid must not be negative")
)

// PricingInputs carries the rate fields applied to an order's subtotal.
// Percentages are whole numbers, e.g. 5 for 5%.
type PricingInputs struct {
	Subtotal     decimal.Decimal
	DiscountPct  decimal.Decimal
	GstApplied   bool
	GstPct       decimal.Decimal
	VatPct       decimal.Decimal
	ExtraCharges decimal.Decimal
	AmountPaid   decimal.Decimal
}

type PricingResult struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	GstAmount      decimal.Decimal
	VatAmount      decimal.Decimal
	TaxTotal       decimal.Decimal
	ExtraCharges   decimal.Decimal
	GrandTotal     decimal.Decimal
	PaymentStatus  database.PaymentStatus
}

var oneHundred = decimal.NewFromInt(100)

// CalculatePricing derives an order's monetary breakdown from its subtotal.
// The discount applies to the subtotal, taxes apply to the discounted
// amount, and extra charges are added last. Each intermediate amount is
// rounded to two decimal places before the next step uses it, so the stored
// fields always sum exactly to the grand total.
func CalculatePricing(in PricingInputs) (PricingResult, error) {
	if in.DiscountPct.IsNegative() || in.DiscountPct.GreaterThan(oneHundred) {
		return PricingResult{}, ErrInvalidDiscountPct
	}
	if in.GstPct.IsNegative() || in.VatPct.IsNegative() {
		return PricingResult{}, ErrInvalidTaxPct
	}
	if in.ExtraCharges.IsNegative() {
		return PricingResult{}, ErrInvalidExtraCharge
	}
	if in.AmountPaid.IsNegative() {
		return PricingResult{}, ErrInvalidAmountPaid
	}

	subtotal := in.Subtotal.Round(2)
	discount := subtotal.Mul(in.DiscountPct).Div(oneHundred).Round(2)
	taxable := subtotal.Sub(discount)

	gst := decimal.Zero
	if in.GstApplied {
		gst = taxable.Mul(in.GstPct).Div(oneHundred).Round(2)
	}
	vat := taxable.Mul(in.VatPct).Div(oneHundred).Round(2)
	taxTotal := gst.Add(vat)

	grand := taxable.Add(taxTotal).Add(in.ExtraCharges.Round(2))

	paid := in.AmountPaid.Round(2)
	status := database.PaymentStatusPENDING
	switch {
	case paid.GreaterThanOrEqual(grand):
		status = database.PaymentStatusPAID
	case paid.IsPositive():
		status = database.PaymentStatusPARTIALLYPAID
	}

	return PricingResult{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		GstAmount:      gst,
		VatAmount:      vat,
		TaxTotal:       taxTotal,
		ExtraCharges:   in.ExtraCharges.Round(2),
		GrandTotal:     grand,
		PaymentStatus:  status,
	}, nil
}
