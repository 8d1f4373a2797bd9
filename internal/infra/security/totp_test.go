package security

import (
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

func generateCodeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		t.Fatalf("GenerateCodeCustom: %v", err)
	}
	return code
}

func TestVerifyAcceptsAdjacentSteps(t *testing.T) {
	verifier := NewTOTPVerifier("expense-tracker-test")

	secret, err := verifier.GenerateSecret("a@x.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	base := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)
	code := generateCodeAt(t, secret, base)

	for _, skew := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		at := base.Add(skew)
		verifier.WithClock(func() time.Time { return at })
		if !verifier.Verify(secret, code) {
			t.Errorf("code should validate at skew %v", skew)
		}
	}

	far := base.Add(2 * time.Minute)
	verifier.WithClock(func() time.Time { return far })
	if verifier.Verify(secret, code) {
		t.Error("code must not validate two minutes later")
	}
}

func TestVerifyRejectsMalformedCodes(t *testing.T) {
	verifier := NewTOTPVerifier("expense-tracker-test")

	secret, err := verifier.GenerateSecret("a@x.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	for _, code := range []string{"", "12345", "1234567", "abcdef", "12 456"} {
		if verifier.Verify(secret, code) {
			t.Errorf("malformed code %q must not validate", code)
		}
	}
}

func TestProvisioningURL(t *testing.T) {
	verifier := NewTOTPVerifier("expense-tracker")

	url := verifier.ProvisioningURL("a@x.com", "SECRETBASE32")
	want := "otpauth://totp/expense-tracker:a@x.com?algorithm=SHA1&digits=6&issuer=expense-tracker&period=30&secret=SECRETBASE32"
	if url != want {
		t.Fatalf("url = %s, want %s", url, want)
	}
}
