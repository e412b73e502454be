package tokens

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/projecthub/internal/server/cookies"
)

// ExtractToken reads the named cookie, falling back to an
// "Authorization: Bearer" header when checkAuthHeader is set.
// It returns "" when neither carries a token.
func ExtractToken(r *http.Request, cookieName string, checkAuthHeader bool) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if !checkAuthHeader {
		return ""
	}
	return bearerToken(r.Header.Get("Authorization"))
}

// ExtractTokenFromHeader is ExtractToken for the access token with the
// header fallback enabled.
func ExtractTokenFromHeader(r *http.Request) string {
	return ExtractToken(r, cookies.AccessToken, true)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
