package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidSignature rejects a delivery at ingress. Nothing is
// persisted for deliveries that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

const signaturePrefix = "sha256="

// VerifySignature checks the X-Hub-Signature-256 header against an
// HMAC-SHA256 over the raw payload. A missing shared secret fails
// verification; the comparison is constant time.
func VerifySignature(secret string, signatureHeader string, payload []byte) error {
	normalizedSecret := strings.TrimSpace(secret)
	if normalizedSecret == "" {
		return ErrInvalidSignature
	}

	signature := strings.TrimSpace(signatureHeader)
	if len(signature) <= len(signaturePrefix) || !strings.EqualFold(signature[:len(signaturePrefix)], signaturePrefix) {
		return ErrInvalidSignature
	}

	decoded, err := hex.DecodeString(signature[len(signaturePrefix):])
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(normalizedSecret))
	mac.Write(payload)

	if !hmac.Equal(decoded, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// SignPayload computes the signature header value for a payload. Used by
// tests and local tooling.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
