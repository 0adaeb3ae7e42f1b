package payment

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// VerifyMode controls how a failed or impossible signature check is treated.
// Leniency is an explicit deployment choice, never inferred at the call site.
type VerifyMode string

const (
	VerifyEnforce VerifyMode = "enforce" // reject notifications with a bad signature
	VerifyWarn    VerifyMode = "warn"    // log and proceed
	VerifySkip    VerifyMode = "skip"    // do not check at all
)

func (m VerifyMode) Valid() bool {
	return m == VerifyEnforce || m == VerifyWarn || m == VerifySkip
}

// Signer computes and checks the keyed MD5 digests PayHere uses on both the
// outbound checkout payload and the inbound server notification.
type Signer struct {
	merchantID   string
	hashedSecret string // UPPER(MD5(secret)), precomputed; empty when no secret configured
	mode         VerifyMode
}

func NewSigner(merchantID, merchantSecret string, mode VerifyMode) *Signer {
	if !mode.Valid() {
		mode = VerifyWarn
	}
	s := &Signer{merchantID: merchantID, mode: mode}
	if merchantSecret != "" {
		s.hashedSecret = md5Upper(merchantSecret)
	}
	return s
}

func (s *Signer) MerchantID() string { return s.merchantID }

// Enabled reports whether a merchant secret is configured at all.
func (s *Signer) Enabled() bool { return s.hashedSecret != "" }

// EffectiveMode downgrades to skip when no secret is configured: an absent
// secret means "cannot verify", not "verification failed".
func (s *Signer) EffectiveMode() VerifyMode {
	if !s.Enabled() {
		return VerifySkip
	}
	return s.mode
}

// Sign produces the outbound checkout digest:
// UPPER(MD5(merchant_id + order_id + amount + currency + UPPER(MD5(secret)))).
func (s *Signer) Sign(orderID string, amount float64, currency string) string {
	return md5Upper(s.merchantID + orderID + FormatAmount(amount) + currency + s.hashedSecret)
}

// Verify checks an inbound notification digest, which additionally covers the
// status code. The comparison is case-insensitive; a mismatch is a normal
// false result, not an error.
func (s *Signer) Verify(orderID string, amount float64, currency, statusCode, received string) bool {
	if !s.Enabled() {
		return false
	}
	want := md5Upper(s.merchantID + orderID + FormatAmount(amount) + currency + statusCode + s.hashedSecret)
	return strings.EqualFold(want, received)
}

// FormatAmount renders a monetary amount with exactly two decimal places, the
// form both digests and the checkout payload use.
func FormatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', 2, 64)
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
