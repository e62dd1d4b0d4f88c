package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifySignature checks a Shopify webhook signature: base64 of an
// HMAC-SHA256 over the exact raw body bytes, compared in constant time.
//
// Any malformed input (missing secret, missing header, header that is not
// valid base64) is a failed verification, never an error. The caller must
// pass the body byte-identical to what was transmitted; re-encoding the
// payload before verification breaks the digest.
func VerifySignature(rawBody []byte, header, secret string) bool {
	if secret == "" || header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	got, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}

	return hmac.Equal(expected, got)
}

// Sign computes the signature header value for a body. Exported for tests
// and local tooling that need to produce valid deliveries.
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
