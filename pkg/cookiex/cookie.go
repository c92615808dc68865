// Package cookiex renders the refresh-token cookie and enforces the rules
// around cross-site cookies.
package cookiex

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrInsecureCrossSite is returned when SameSite=None is configured
	// without Secure. Browsers drop such cookies.
	ErrInsecureCrossSite = errors.New("cookiex: SameSite=None requires Secure=true")

	// ErrCSRFCheckFailed is returned by CheckCSRF when the marker header is
	// missing in cross-site mode.
	ErrCSRFCheckFailed = errors.New("cookiex: CSRF check failed")
)

// Marker header a plain cross-site form post cannot set.
const (
	CSRFHeader      = "X-Requested-With"
	CSRFHeaderValue = "XMLHttpRequest"
)

// SameSite is the closed set of same-site modes accepted in configuration.
type SameSite string

const (
	SameSiteLax    SameSite = "lax"
	SameSiteStrict SameSite = "strict"
	SameSiteNone   SameSite = "none"
)

// ParseSameSite accepts lax, strict or none in any case.
func ParseSameSite(s string) (SameSite, error) {
	switch v := SameSite(strings.ToLower(strings.TrimSpace(s))); v {
	case SameSiteLax, SameSiteStrict, SameSiteNone:
		return v, nil
	default:
		return "", fmt.Errorf("cookiex: invalid SameSite %q (want lax, strict or none)", s)
	}
}

// HTTP maps the mode onto net/http's representation.
func (s SameSite) HTTP() http.SameSite {
	switch s {
	case SameSiteStrict:
		return http.SameSiteStrictMode
	case SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Policy holds the attributes shared by every refresh cookie the service
// sets or clears.
type Policy struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite SameSite
}

// Validate checks the policy once at startup.
func (p Policy) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("cookiex: cookie name is empty"))
	}
	if !strings.HasPrefix(p.Path, "/") {
		errs = append(errs, fmt.Errorf("cookiex: cookie path %q must start with /", p.Path))
	}
	if _, err := ParseSameSite(string(p.SameSite)); err != nil {
		errs = append(errs, err)
	}
	if p.SameSite == SameSiteNone && !p.Secure {
		errs = append(errs, ErrInsecureCrossSite)
	}
	return errors.Join(errs...)
}

// Spec is a fully computed cookie. A nil MaxAge means a session cookie that
// the browser drops when it closes.
type Spec struct {
	Name     string
	Value    string
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
	MaxAge   *int
	Path     string
	Domain   string
}

// BuildSet computes the cookie carrying value. When persistent is false the
// ttl is ignored and a session cookie is produced.
func (p Policy) BuildSet(value string, ttl time.Duration, persistent bool) Spec {
	s := p.base(value)
	if persistent {
		maxAge := int(ttl / time.Second)
		s.MaxAge = &maxAge
	}
	return s
}

// BuildClear computes a cookie that makes the browser delete the refresh
// cookie immediately.
func (p Policy) BuildClear() Spec {
	s := p.base("")
	zero := 0
	s.MaxAge = &zero
	return s
}

func (p Policy) base(value string) Spec {
	return Spec{
		Name:     p.Name,
		Value:    value,
		HTTPOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
		Path:     p.Path,
		Domain:   p.Domain,
	}
}

// IsSession reports whether s describes a session cookie.
func (s Spec) IsSession() bool { return s.MaxAge == nil }

// Cookie renders s. net/http uses MaxAge<0 for "Max-Age=0", so an
// explicit zero is translated and paired with an Expires in the past.
func (s Spec) Cookie() *http.Cookie {
	c := &http.Cookie{
		Name:     s.Name,
		Value:    s.Value,
		Path:     s.Path,
		Domain:   s.Domain,
		Secure:   s.Secure,
		HttpOnly: s.HTTPOnly,
		SameSite: s.SameSite.HTTP(),
	}
	if s.MaxAge != nil {
		if *s.MaxAge <= 0 {
			c.MaxAge = -1
			c.Expires = time.Unix(0, 0)
		} else {
			c.MaxAge = *s.MaxAge
		}
	}
	return c
}

// Set writes s as a Set-Cookie header.
func (s Spec) Set(w http.ResponseWriter) {
	http.SetCookie(w, s.Cookie())
}

// Read returns the refresh cookie value from r, if any.
func (p Policy) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(p.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// CheckCSRF enforces the marker header on state-changing requests when the
// cookie is sent cross-site. Other modes rely on SameSite and always pass.
func (p Policy) CheckCSRF(r *http.Request) error {
	if p.SameSite != SameSiteNone {
		return nil
	}
	if r.Header.Get(CSRFHeader) != CSRFHeaderValue {
		return ErrCSRFCheckFailed
	}
	return nil
}
