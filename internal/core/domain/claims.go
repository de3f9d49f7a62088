package domain

// Claims is the decoded payload of a bearer token. The issuer copies whatever
// the caller sent, so nothing beyond the registered time claims is trusted.
type Claims map[string]any

// Email returns the email claim, or "" when absent or not a string.
func (c Claims) Email() string {
	v, _ := c["email"].(string)
	return v
}
