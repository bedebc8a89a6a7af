package auth

import (
	"testing"

	"github.com/documentor-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveRedirect(t *testing.T) {
	p := RedirectPolicy{
		AdminRedirect:   "/admin",
		DeepLinkSchemes: []string{"yourapp"},
		AllowedOrigins:  []string{"*", "https://app.example.com/", "http://localhost:3000"},
	}
	user := &domain.User{Role: domain.RoleEndUser}
	admin := &domain.User{Role: domain.RoleAdmin}

	cases := []struct {
		name string
		u    *domain.User
		uri  string
		want Redirect
	}{
		{"admin wins", admin, "/documents", Redirect{URL: "/admin", SetCookie: true}},
		{"empty", user, "", Redirect{URL: "/", SetCookie: true}},
		{"local path", user, "/documents?page=2", Redirect{URL: "/documents?page=2", SetCookie: true}},
		{"deep link", user, "yourapp://callback", Redirect{URL: "yourapp://callback?access_token=tok", SetCookie: false}},
		{"deep link case", user, "YourApp://cb", Redirect{URL: "yourapp://cb?access_token=tok", SetCookie: false}},
		{"external url", user, "https://evil.example/steal", Redirect{URL: "/", SetCookie: true}},
		{"allowed origin", user, "https://app.example.com/docs?id=1", Redirect{URL: "https://app.example.com/docs?id=1", SetCookie: true}},
		{"allowed origin case", user, "HTTPS://App.Example.com/", Redirect{URL: "https://App.Example.com/", SetCookie: true}},
		{"allowed origin with port", user, "http://localhost:3000/cb", Redirect{URL: "http://localhost:3000/cb", SetCookie: true}},
		{"port mismatch", user, "http://localhost:4000/cb", Redirect{URL: "/", SetCookie: true}},
		{"scheme mismatch", user, "http://app.example.com/", Redirect{URL: "/", SetCookie: true}},
		{"userinfo", user, "https://app.example.com@evil.example/", Redirect{URL: "/", SetCookie: true}},
		{"protocol relative", user, "//evil.example", Redirect{URL: "/", SetCookie: true}},
		{"backslash", user, "/\\evil.example", Redirect{URL: "/", SetCookie: true}},
		{"javascript", user, "javascript:alert(1)", Redirect{URL: "/", SetCookie: true}},
		{"relative", user, "documents", Redirect{URL: "/", SetCookie: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.ResolveRedirect(tc.u, "tok", tc.uri))
		})
	}
}
