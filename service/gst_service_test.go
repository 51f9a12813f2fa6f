package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tax-agent/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGSTCalculate(t *testing.T) {
	tests := []struct {
		name                             string
		input                            domain.GSTInput
		base, gst, cgst, sgst, igst, tot string
	}{
		{
			name:  "exclusive intra-state",
			input: domain.GSTInput{Amount: dec("1000"), Rate: dec("18")},
			base:  "1000.00", gst: "180.00", cgst: "90.00", sgst: "90.00", igst: "0.00", tot: "1180.00",
		},
		{
			name:  "inclusive intra-state",
			input: domain.GSTInput{Amount: dec("1180"), Rate: dec("18"), Inclusive: true},
			base:  "1000.00", gst: "180.00", cgst: "90.00", sgst: "90.00", igst: "0.00", tot: "1180.00",
		},
		{
			name:  "inclusive with repeating fraction",
			input: domain.GSTInput{Amount: dec("100"), Rate: dec("5"), Inclusive: true},
			base:  "95.24", gst: "4.76", cgst: "2.38", sgst: "2.38", igst: "0.00", tot: "100.00",
		},
		{
			name:  "odd paisa goes to SGST",
			input: domain.GSTInput{Amount: dec("10.10"), Rate: dec("5")},
			base:  "10.10", gst: "0.51", cgst: "0.26", sgst: "0.25", igst: "0.00", tot: "10.61",
		},
		{
			name:  "inter-state",
			input: domain.GSTInput{Amount: dec("100"), Rate: dec("12"), InterState: true},
			base:  "100.00", gst: "12.00", cgst: "0.00", sgst: "0.00", igst: "12.00", tot: "112.00",
		},
		{
			name:  "zero rated",
			input: domain.GSTInput{Amount: dec("250"), Rate: dec("0"), Inclusive: true},
			base:  "250.00", gst: "0.00", cgst: "0.00", sgst: "0.00", igst: "0.00", tot: "250.00",
		},
	}

	svc := NewGSTService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Calculate(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.base, res.Base.StringFixed(2))
			assert.Equal(t, tt.gst, res.GST.StringFixed(2))
			assert.Equal(t, tt.cgst, res.CGST.StringFixed(2))
			assert.Equal(t, tt.sgst, res.SGST.StringFixed(2))
			assert.Equal(t, tt.igst, res.IGST.StringFixed(2))
			assert.Equal(t, tt.tot, res.Total.StringFixed(2))
			assert.True(t, res.CGST.Add(res.SGST).Add(res.IGST).Equal(res.GST))
		})
	}
}

func TestGSTCalculate_Rejects(t *testing.T) {
	svc := NewGSTService()

	_, err := svc.Calculate(domain.GSTInput{Amount: dec("-1"), Rate: dec("18")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Calculate(domain.GSTInput{Amount: dec("100"), Rate: dec("15")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "15%")

	_, err = svc.Calculate(domain.GSTInput{Amount: dec("2000000000000"), Rate: dec("5")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGSTCalculate_AcceptsEquivalentRateNotation(t *testing.T) {
	res, err := NewGSTService().Calculate(domain.GSTInput{Amount: dec("400"), Rate: dec("0.250")})
	require.NoError(t, err)
	assert.Equal(t, "1.00", res.GST.StringFixed(2))
}
