package broker

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// Signer handles broker API authentication signatures
type Signer struct {
	accessKey string
	secretKey string
}

// NewSigner creates a new Signer instance
func NewSigner(accessKey, secretKey string) *Signer {
	return &Signer{
		accessKey: accessKey,
		secretKey: secretKey,
	}
}

// GenerateHeaders creates the necessary headers for a request
// method: GET, POST, etc.
// path: /api/v1/gtt/orders (no host)
// query: param=1&test=2 (empty if none)
// body: json string (empty if none)
func (s *Signer) GenerateHeaders(method, path, query, body string) map[string]string {
	// Unix timestamp in milliseconds
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())

	// String to sign: timestamp + method + requestPath[?query] + body
	fullPath := path
	if query != "" {
		fullPath = path + "?" + query
	}
	message := timestamp + method + fullPath + body

	return map[string]string{
		"X-BROKER-KEY":       s.accessKey,
		"X-BROKER-SIGN":      computeHmacSha256(message, s.secretKey),
		"X-BROKER-TIMESTAMP": timestamp,
		"Content-Type":       "application/json",
	}
}

func computeHmacSha256(message string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
