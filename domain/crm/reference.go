package crm

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RefKind is the type tag carried by an encoded reference.
type RefKind string

const (
	RefCustomer RefKind = "Customer"
	RefProduct  RefKind = "Product"
	RefOrder    RefKind = "Order"
)

const refSeparator = ":"

// EncodeReference returns the opaque token for key, base64("Kind:key").
func EncodeReference(kind RefKind, key string) string {
	return base64.StdEncoding.EncodeToString([]byte(string(kind) + refSeparator + key))
}

// DecodeReference extracts the store key from token. The token may be a raw
// key, a plain "Kind:key" composite, or its base64 encoding. A composite must
// carry the expected kind and a non-empty key.
func DecodeReference(token string, kind RefKind) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty %s reference", ErrInvalidReference, kind)
	}

	composite := token
	if !strings.Contains(token, refSeparator) {
		decoded, ok := decodeBase64(token)
		if !ok || !strings.Contains(decoded, refSeparator) {
			return token, nil
		}
		composite = decoded
	}

	tag, key, _ := strings.Cut(composite, refSeparator)
	if tag != string(kind) {
		return "", fmt.Errorf("%w: expected %s reference, got %q", ErrInvalidReference, kind, tag)
	}
	if key == "" {
		return "", fmt.Errorf("%w: empty %s key", ErrInvalidReference, kind)
	}
	return key, nil
}

func decodeBase64(s string) (string, bool) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}
