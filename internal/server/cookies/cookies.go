// Package cookies writes and clears the HTTP-only cookies that carry session
// tokens. All cookies are Secure, SameSite=Strict and scoped under the API
// prefix.
package cookies

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names.
const (
	AccessToken  = "access_token"
	IDToken      = "id_token"
	RefreshToken = "refresh_token"
	Session      = "session"
)

// Options are per-cookie settings merged over the policy defaults. Path is
// relative to the API prefix.
type Options struct {
	MaxAge time.Duration
	Path   string
	Domain string
}

// Definition pairs a cookie name with the options it is always set with.
type Definition struct {
	Name    string
	Options Options
}

// SessionCookies are set together after sign-in and cleared together on
// logout. Setting and clearing both read this table.
var SessionCookies = []Definition{
	{Name: AccessToken, Options: Options{MaxAge: 5 * time.Minute}},
	{Name: IDToken, Options: Options{MaxAge: 60 * time.Minute}},
	{Name: RefreshToken, Options: Options{MaxAge: 24 * time.Hour, Path: "auth"}},
}

// InterimSession holds the provider session of a pending OTP signup.
var InterimSession = Definition{Name: Session, Options: Options{MaxAge: time.Hour}}

type Service struct {
	prefix string
	now    func() time.Time
}

func NewService(apiPrefix string) *Service {
	return &Service{prefix: strings.Trim(apiPrefix, "/"), now: time.Now}
}

// Path returns "/<prefix>[/<sub>]", with sub trimmed of slashes.
func (s *Service) Path(sub string) string {
	parts := make([]string, 0, 2)
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	if sub = strings.Trim(sub, "/"); sub != "" {
		parts = append(parts, sub)
	}
	return "/" + strings.Join(parts, "/")
}

func (s *Service) cookie(name, value string, opts Options) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.Path(opts.Path),
		Domain:   opts.Domain,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *Service) Set(w http.ResponseWriter, name, value string, opts Options) {
	c := s.cookie(name, value, opts)
	if opts.MaxAge > 0 {
		c.MaxAge = int(opts.MaxAge.Seconds())
		c.Expires = s.now().Add(opts.MaxAge).UTC()
	}
	http.SetCookie(w, c)
}

// Clear expires the cookie. Name, path and domain must match the Set call
// or the browser keeps the original.
func (s *Service) Clear(w http.ResponseWriter, name string, opts Options) {
	c := s.cookie(name, "", opts)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0).UTC()
	http.SetCookie(w, c)
}

// SetSession writes the access, ID and refresh token cookies.
func (s *Service) SetSession(w http.ResponseWriter, accessToken, idToken, refreshToken string) {
	values := map[string]string{
		AccessToken:  accessToken,
		IDToken:      idToken,
		RefreshToken: refreshToken,
	}
	for _, d := range SessionCookies {
		s.Set(w, d.Name, values[d.Name], d.Options)
	}
}

// ClearSession clears the three session cookies.
func (s *Service) ClearSession(w http.ResponseWriter) {
	for _, d := range SessionCookies {
		s.Clear(w, d.Name, d.Options)
	}
}

func (s *Service) SetInterim(w http.ResponseWriter, session string) {
	s.Set(w, InterimSession.Name, session, InterimSession.Options)
}

func (s *Service) ClearInterim(w http.ResponseWriter) {
	s.Clear(w, InterimSession.Name, InterimSession.Options)
}
