package domain

import "github.com/shopspring/decimal"

type GSTInput struct {
	Amount     decimal.Decimal `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	Inclusive  bool            `json:"inclusive"`
	InterState bool            `json:"inter_state"`
}

type GSTResult struct {
	Base  decimal.Decimal `json:"base"`
	GST   decimal.Decimal `json:"gst"`
	CGST  decimal.Decimal `json:"cgst"`
	SGST  decimal.Decimal `json:"sgst"`
	IGST  decimal.Decimal `json:"igst"`
	Total decimal.Decimal `json:"total"`
}
