package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyHMAC validates a signature using HMAC-SHA256.
func VerifyHMAC(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sigBytes)
}

// VerifyWebhookSignature checks the provider signature header against the raw
// request body. The header is either a bare hex digest or the
// "t=<unix>,v1=<hex>" form, in which case the signed payload is "<t>.<body>".
func VerifyWebhookSignature(header string, body []byte, secret string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if !strings.Contains(header, "=") {
		return VerifyHMAC(body, header, secret)
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1", "te", "li":
			if sig == "" {
				sig = v
			}
		}
	}
	if sig == "" {
		return false
	}
	if ts == "" {
		return VerifyHMAC(body, sig, secret)
	}
	signed := make([]byte, 0, len(ts)+1+len(body))
	signed = append(signed, ts...)
	signed = append(signed, '.')
	signed = append(signed, body...)
	return VerifyHMAC(signed, sig, secret)
}
