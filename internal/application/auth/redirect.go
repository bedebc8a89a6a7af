package auth

import (
	"net/url"
	"strings"

	"github.com/documentor-api/internal/domain"
)

// RedirectPolicy decides where an authenticated user lands.
type RedirectPolicy struct {
	AdminRedirect   string
	DeepLinkSchemes []string
	// AllowedOrigins lists scheme://host[:port] values whose absolute
	// http(s) URLs are kept as redirect targets. "*" is ignored here.
	AllowedOrigins []string
}

// Redirect is the landing decision. SetCookie is false when the token
// travels in the URL to a native app instead.
type Redirect struct {
	URL       string
	SetCookie bool
}

// ResolveRedirect applies, in order: admins go to the admin area; allowed
// deep-link schemes receive the token as access_token; local paths and
// URLs on an allowed origin are kept; anything else lands on "/".
func (p RedirectPolicy) ResolveRedirect(u *domain.User, token, redirectURI string) Redirect {
	if u != nil && u.IsAdmin() {
		target := p.AdminRedirect
		if target == "" {
			target = "/admin"
		}
		return Redirect{URL: target, SetCookie: true}
	}
	redirectURI = strings.TrimSpace(redirectURI)
	if redirectURI == "" {
		return Redirect{URL: "/", SetCookie: true}
	}
	if parsed, err := url.Parse(redirectURI); err == nil && parsed.Scheme != "" {
		if p.isDeepLink(parsed.Scheme) {
			q := parsed.Query()
			q.Set("access_token", token)
			parsed.RawQuery = q.Encode()
			return Redirect{URL: parsed.String(), SetCookie: false}
		}
		if p.isAllowedOrigin(parsed) {
			return Redirect{URL: parsed.String(), SetCookie: true}
		}
		return Redirect{URL: "/", SetCookie: true}
	}
	if IsLocalPath(redirectURI) {
		return Redirect{URL: redirectURI, SetCookie: true}
	}
	return Redirect{URL: "/", SetCookie: true}
}

func (p RedirectPolicy) isDeepLink(scheme string) bool {
	for _, s := range p.DeepLinkSchemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

func (p RedirectPolicy) isAllowedOrigin(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" || u.User != nil {
		return false
	}
	origin := scheme + "://" + strings.ToLower(u.Host)
	for _, o := range p.AllowedOrigins {
		if o == "*" {
			continue
		}
		if strings.ToLower(strings.TrimRight(o, "/")) == origin {
			return true
		}
	}
	return false
}

// IsLocalPath reports whether s is a same-origin absolute path.
func IsLocalPath(s string) bool {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return false
	}
	return !strings.ContainsAny(s, "\r\n")
}
