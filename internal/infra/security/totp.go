package security

import (
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPVerifier validates time-based one-time codes from an enrolled secret.
// Codes are 6-digit, SHA1, with a 30 second step and one step of skew in
// either direction.
type TOTPVerifier struct {
	Issuer string
	now    func() time.Time
}

// NewTOTPVerifier constructs a verifier labelling enrollments with issuer.
func NewTOTPVerifier(issuer string) *TOTPVerifier {
	if strings.TrimSpace(issuer) == "" {
		issuer = "expense-tracker"
	}
	return &TOTPVerifier{Issuer: issuer, now: time.Now}
}

// WithClock overrides the internal clock, used in tests.
func (v *TOTPVerifier) WithClock(clock func() time.Time) {
	if clock != nil {
		v.now = clock
	}
}

// GenerateSecret produces a fresh base32 secret for enrollment.
func (v *TOTPVerifier) GenerateSecret(accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      v.Issuer,
		AccountName: accountName,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// ProvisioningURL builds the otpauth:// URL authenticator apps import.
func (v *TOTPVerifier) ProvisioningURL(accountName, secret string) string {
	label := url.PathEscape(v.Issuer + ":" + accountName)
	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", v.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", "6")
	query.Set("period", "30")
	return "otpauth://totp/" + label + "?" + query.Encode()
}

// Verify reports whether the code is valid for the secret at the current
// step or one step before/after. Malformed codes simply fail validation.
func (v *TOTPVerifier) Verify(secret, code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, v.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}
