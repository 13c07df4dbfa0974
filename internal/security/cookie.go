package security

import "net/http"

// GetCookie returns the named cookie's value or empty string. The browser
// client sends the access token as a cookie; API clients use the
// Authorization header instead.
func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || c == nil {
		return ""
	}
	return c.Value
}
