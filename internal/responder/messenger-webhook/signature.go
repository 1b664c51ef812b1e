// internal/responder/messenger-webhook/signature.go
package messengerwebhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	apperrors "messenger-responder/internal/common/errors"
)

const signaturePrefix = "sha256="

// Sign returns the X-Hub-Signature-256 value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against the HMAC-SHA256 of body keyed with secret.
func VerifySignature(secret string, body []byte, header string) error {
	if header == "" {
		return apperrors.NewSignatureInvalidError("missing " + SignatureHeader)
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return apperrors.NewSignatureInvalidError("unsupported signature scheme")
	}

	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return apperrors.NewSignatureInvalidError("signature is not hex encoded")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return apperrors.NewSignatureInvalidError("signature mismatch")
	}
	return nil
}
