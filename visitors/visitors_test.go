package visitors

import (
	"strings"
	"testing"
)

func TestQRPayloadRoundTrip(t *testing.T) {
	payload := qrPayload("pass123", "code-abc")

	passID, code, ok := verifyPayload(payload)
	if !ok {
		t.Fatal("valid payload rejected")
	}
	if passID != "pass123" || code != "code-abc" {
		t.Fatalf("got passID=%q code=%q", passID, code)
	}
}

func TestQRPayloadTamperDetected(t *testing.T) {
	payload := qrPayload("pass123", "code-abc")

	tampered := strings.Replace(payload, "pass123", "pass999", 1)
	if _, _, ok := verifyPayload(tampered); ok {
		t.Fatal("tampered payload accepted")
	}

	if _, _, ok := verifyPayload("not|a|payload"); ok {
		t.Fatal("malformed payload accepted")
	}
}
