package service

import (
	"errors"
	"testing"

	"github.com/dineops/api/internal/database"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculatePricing_BasicBreakdown(t *testing.T) {
	// subtotal 250, 10% discount, GST 5% on the taxable 225, paid in full
	got, err := CalculatePricing(PricingInputs{
		Subtotal:    d("250"),
		DiscountPct: d("10"),
		GstApplied:  true,
		GstPct:      d("5"),
		AmountPaid:  d("236.25"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"discount_amount", got.DiscountAmount, "25.00"},
		{"taxable_amount", got.TaxableAmount, "225.00"},
		{"gst_amount", got.GstAmount, "11.25"},
		{"vat_amount", got.VatAmount, "0"},
		{"tax_total", got.TaxTotal, "11.25"},
		{"grand_total", got.GrandTotal, "236.25"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if got.PaymentStatus != database.PaymentStatusPAID {
		t.Errorf("payment_status: got %v, want PAID", got.PaymentStatus)
	}
}

func TestCalculatePricing_GstNotApplied(t *testing.T) {
	got, err := CalculatePricing(PricingInputs{
		Subtotal:   d("100"),
		GstApplied: false,
		GstPct:     d("5"),
		VatPct:     d("12"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.GstAmount.IsZero() {
		t.Errorf("gst_amount with flag off: got %v, want 0", got.GstAmount)
	}
	if !got.VatAmount.Equal(d("12.00")) {
		t.Errorf("vat_amount: got %v, want 12.00", got.VatAmount)
	}
	if !got.GrandTotal.Equal(d("112.00")) {
		t.Errorf("grand_total: got %v, want 112.00", got.GrandTotal)
	}
}

// Each step rounds before the next uses it. With subtotal 99.99 and 7.5%
// discount the exact discount is 7.49925, which must round to 7.50 before
// tax is applied: taxable 92.49, GST 18% = 16.6482 -> 16.65.
func TestCalculatePricing_RoundsEachStep(t *testing.T) {
	got, err := CalculatePricing(PricingInputs{
		Subtotal:    d("99.99"),
		DiscountPct: d("7.5"),
		GstApplied:  true,
		GstPct:      d("18"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.DiscountAmount.Equal(d("7.50")) {
		t.Errorf("discount_amount: got %v, want 7.50", got.DiscountAmount)
	}
	if !got.TaxableAmount.Equal(d("92.49")) {
		t.Errorf("taxable_amount: got %v, want 92.49", got.TaxableAmount)
	}
	if !got.GstAmount.Equal(d("16.65")) {
		t.Errorf("gst_amount: got %v, want 16.65", got.GstAmount)
	}
	if !got.GrandTotal.Equal(d("109.14")) {
		t.Errorf("grand_total: got %v, want 109.14", got.GrandTotal)
	}
}

func TestCalculatePricing_ExtraChargesAddedLast(t *testing.T) {
	got, err := CalculatePricing(PricingInputs{
		Subtotal:     d("200"),
		DiscountPct:  d("50"),
		ExtraCharges: d("30"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Extra charges are not discounted or taxed: 100 + 30.
	if !got.GrandTotal.Equal(d("130.00")) {
		t.Errorf("grand_total: got %v, want 130.00", got.GrandTotal)
	}
}

func TestCalculatePricing_PaymentStatus(t *testing.T) {
	cases := []struct {
		name string
		paid string
		want database.PaymentStatus
	}{
		{"unpaid", "0", database.PaymentStatusPENDING},
		{"partial", "50", database.PaymentStatusPARTIALLYPAID},
		{"exact", "100", database.PaymentStatusPAID},
		{"overpaid", "120", database.PaymentStatusPAID},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := CalculatePricing(PricingInputs{
				Subtotal:   d("100"),
				AmountPaid: d(c.paid),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.PaymentStatus != c.want {
				t.Errorf("payment_status: got %v, want %v", got.PaymentStatus, c.want)
			}
		})
	}
}

// A fully comped order owes nothing, so zero paid already covers it.
func TestCalculatePricing_FullyCompedIsPaid(t *testing.T) {
	got, err := CalculatePricing(PricingInputs{
		Subtotal:    d("100"),
		DiscountPct: d("100"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.GrandTotal.IsZero() {
		t.Fatalf("grand_total: got %v, want 0", got.GrandTotal)
	}
	if got.PaymentStatus != database.PaymentStatusPAID {
		t.Errorf("payment_status: got %v, want PAID", got.PaymentStatus)
	}
}

func TestCalculatePricing_InvalidInputs(t *testing.T) {
	cases := []struct {
		name string
		in   PricingInputs
		want error
	}{
		{"negative discount", PricingInputs{Subtotal: d("100"), DiscountPct: d("-1")}, ErrInvalidDiscountPct},
		{"discount over 100", PricingInputs{Subtotal: d("100"), DiscountPct: d("101")}, ErrInvalidDiscountPct},
		{"negative gst", PricingInputs{Subtotal: d("100"), GstPct: d("-5")}, ErrInvalidTaxPct},
		{"negative vat", PricingInputs{Subtotal: d("100"), VatPct: d("-5")}, ErrInvalidTaxPct},
		{"negative extra charges", PricingInputs{Subtotal: d("100"), ExtraCharges: d("-1")}, ErrInvalidExtraCharge},
		{"negative amount paid", PricingInputs{Subtotal: d("100"), AmountPaid: d("-1")}, ErrInvalidAmountPaid},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := CalculatePricing(c.in)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got: %v", c.want, err)
			}
		})
	}
}
