package service

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"tax-agent/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	// GSTRates are the notified GST rates, in percent.
	GSTRates = []decimal.Decimal{
		decimal.Zero,
		decimal.RequireFromString("0.25"),
		decimal.NewFromInt(3),
		decimal.NewFromInt(5),
		decimal.NewFromInt(12),
		decimal.NewFromInt(18),
		decimal.NewFromInt(28),
	}
)

type GSTService struct{}

func NewGSTService() *GSTService {
	return &GSTService{}
}

// Calculate splits an amount into its taxable value and GST. Inclusive amounts
// already contain the tax; exclusive amounts have it added on top. Intra-state
// supplies divide the tax equally between CGST and SGST, with any odd paisa on
// SGST so the parts always sum to the total.
func (s *GSTService) Calculate(input domain.GSTInput) (domain.GSTResult, error) {
	if input.Amount.IsNegative() {
		return domain.GSTResult{}, invalidf("amount must not be negative")
	}
	if input.Amount.GreaterThan(decimal.NewFromFloat(MaxAmount)) {
		return domain.GSTResult{}, invalidf("amount exceeds the maximum of %.0f", MaxAmount)
	}
	if !lo.ContainsBy(GSTRates, func(r decimal.Decimal) bool { return r.Equal(input.Rate) }) {
		return domain.GSTResult{}, invalidf("unsupported GST rate %s%%", input.Rate.String())
	}

	var base, gst decimal.Decimal
	if input.Inclusive {
		amount := input.Amount.Round(2)
		base = amount.Mul(hundred).Div(hundred.Add(input.Rate)).Round(2)
		gst = amount.Sub(base)
	} else {
		base = input.Amount.Round(2)
		gst = base.Mul(input.Rate).Div(hundred).Round(2)
	}

	result := domain.GSTResult{
		Base:  base,
		GST:   gst,
		CGST:  decimal.Zero,
		SGST:  decimal.Zero,
		IGST:  decimal.Zero,
		Total: base.Add(gst),
	}

	if input.InterState {
		result.IGST = gst
	} else {
		result.CGST = gst.Div(two).Round(2)
		result.SGST = gst.Sub(result.CGST)
	}

	return result, nil
}
