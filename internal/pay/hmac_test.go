package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
)

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyHMAC(t *testing.T) {
	body := []byte("{\"ok\":true}")
	secret := "secret"
	signature := "f6b4a2841c93f8bf2fb8f2c13d8fb0b6c8e8019f09ee405d248daa8385fad638"
	if !VerifyHMAC(body, signature, secret) {
		t.Fatal("expected signature to be valid")
	}
	if VerifyHMAC(body, "deadbeef", secret) {
		t.Fatal("unexpected valid signature")
	}
}

func TestVerifyWebhookSignature_BareDigest(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment.paid"}`)
	secret := "whsec_test"
	if !VerifyWebhookSignature(signBody(body, secret), body, secret) {
		t.Fatal("expected bare digest to verify")
	}
	if VerifyWebhookSignature(signBody(body, "other"), body, secret) {
		t.Fatal("unexpected valid signature with wrong secret")
	}
}

func TestVerifyWebhookSignature_TimestampedHeader(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	ts := "1700000000"
	signed := append([]byte(ts+"."), body...)
	header := fmt.Sprintf("t=%s,v1=%s", ts, signBody(signed, secret))
	if !VerifyWebhookSignature(header, body, secret) {
		t.Fatal("expected timestamped header to verify")
	}

	tampered := fmt.Sprintf("t=%s,v1=%s", "1700000001", signBody(signed, secret))
	if VerifyWebhookSignature(tampered, body, secret) {
		t.Fatal("unexpected valid signature after timestamp tamper")
	}
	if VerifyWebhookSignature("", body, secret) {
		t.Fatal("empty header must not verify")
	}
}
