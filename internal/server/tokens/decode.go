package tokens

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidJWT = errors.New("Invalid JWT")

// DecodeJWT returns the payload claims of token without verifying it.
// Use it only where trust is established elsewhere.
func DecodeJWT(token string) (map[string]any, error) {
	payload, err := payloadSegment(token)
	if err != nil {
		return nil, err
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidJWT
	}
	return claims, nil
}

// DecodeClaims is DecodeJWT into Claims. It performs no verification.
func DecodeClaims(token string) (*Claims, error) {
	payload, err := payloadSegment(token)
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, ErrInvalidJWT
	}
	return claims, nil
}

func payloadSegment(token string) ([]byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidJWT
	}
	seg := strings.TrimRight(parts[1], "=")
	if b, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(seg)
	if err != nil {
		return nil, ErrInvalidJWT
	}
	return b, nil
}
