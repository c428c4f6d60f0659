package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SignatureHeader carries "sha256=<hex hmac of the body>"
const SignatureHeader = "X-Signature-256"

var (
	errMissingSignature  = errors.New("missing signature header")
	errSignatureMismatch = errors.New("signature mismatch")
)

// verifySignature checks the body HMAC when a secret is configured.
// Without a secret every request passes.
func verifySignature(r *http.Request, body []byte, secretKey string) error {
	if secretKey == "" {
		return nil
	}

	signatureHeader := r.Header.Get(SignatureHeader)
	if signatureHeader == "" {
		return fmt.Errorf("%w: %s", errMissingSignature, SignatureHeader)
	}

	algo, expectedSignatureHex, ok := strings.Cut(signatureHeader, "=")
	if !ok || strings.ToLower(algo) != "sha256" {
		return fmt.Errorf("invalid signature format in header %s", SignatureHeader)
	}

	if !hmac.Equal([]byte(signBody(body, secretKey)), []byte(strings.ToLower(expectedSignatureHex))) {
		return errSignatureMismatch
	}
	return nil
}

func signBody(body []byte, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
