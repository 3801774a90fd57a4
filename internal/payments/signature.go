package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the gateway's HMAC of a callback body
const SignatureHeader = "X-Payment-Signature"

// Sign returns the hex HMAC-SHA256 of body keyed by the merchant API key
func Sign(apiKey string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the HMAC of body under apiKey.
// An "sha256=" prefix is accepted. Empty keys never verify.
func VerifySignature(apiKey string, body []byte, signature string) bool {
	if apiKey == "" || signature == "" {
		return false
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
