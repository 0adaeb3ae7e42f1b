package payment

import (
	"fmt"

	"ngo-donation-platform/internal/domain/model"
)

// CheckoutConfig carries the merchant-side settings for the hosted checkout
// redirect. It is built from config at startup; core logic never reads the
// environment.
type CheckoutConfig struct {
	MerchantID  string
	CheckoutURL string
	Currency    string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// Placeholders for payer fields the profile may be missing. The gateway
// rejects empty fields, so the builder must always produce something.
const (
	placeholderPhone   = "0000000000"
	placeholderAddress = "N/A"
	placeholderCity    = "N/A"
	defaultCountry     = "Sri Lanka"
)

// CheckoutRequest is the flat field set posted to the gateway's hosted
// checkout page, plus the URL to post it to.
type CheckoutRequest struct {
	Fields map[string]string
	URL    string
}

// Checksum returns the outbound signature included in the field set.
func (r CheckoutRequest) Checksum() string { return r.Fields["hash"] }

// BuildCheckoutRequest assembles the gateway payload for one donation. It is
// a pure transformation: incomplete payer profiles get placeholders, never an
// error.
func BuildCheckoutRequest(cfg CheckoutConfig, signer *Signer, d *model.Donation, payer *model.User) CheckoutRequest {
	first, last := payer.SplitName()

	phone := payer.Phone
	if phone == "" {
		phone = placeholderPhone
	}
	address := payer.Address
	if address == "" {
		address = placeholderAddress
	}

	fields := map[string]string{
		"merchant_id": cfg.MerchantID,
		"return_url":  cfg.ReturnURL,
		"cancel_url":  cfg.CancelURL,
		"notify_url":  cfg.NotifyURL,
		"order_id":    d.ID,
		"items":       fmt.Sprintf("Donation %s", d.ID),
		"currency":    cfg.Currency,
		"amount":      FormatAmount(d.Amount),
		"first_name":  first,
		"last_name":   last,
		"email":       payer.Email,
		"phone":       phone,
		"address":     address,
		"city":        placeholderCity,
		"country":     defaultCountry,
		"hash":        signer.Sign(d.ID, d.Amount, cfg.Currency),
	}
	return CheckoutRequest{Fields: fields, URL: cfg.CheckoutURL}
}
