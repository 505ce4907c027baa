// Package token implements the storefront's self-issued session token: three
// base64 segments (header, claims, "signature") joined with dots.
//
// The signature segment is the base64 of a shared secret, not an HMAC, and
// Decode never checks it. Anyone can forge a token; Claims.Trusted always
// reports false so callers cannot mistake a decoded token for an
// authenticated one.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a token does not split into three segments or
// its payload cannot be decoded.
var ErrMalformed = errors.New("token: malformed")

// DefaultTTL matches the session lifetime of the storefront (five hours).
const DefaultTTL = 5 * time.Hour

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var defaultHeader = header{Alg: "HS256", Typ: "JWT"}

// Claims is the token payload. Session tokens carry ID, UserName and Rol;
// password-reset tokens carry only Email.
type Claims struct {
	ID       int    `json:"id,omitempty"`
	UserName string `json:"userName,omitempty"`
	Rol      string `json:"rol,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Valid reports whether the token has not expired at now. A token without an
// exp claim is never valid.
func (c *Claims) Valid(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Unix() > now.Unix()
}

// Trusted is always false: the signature segment is never verified.
func (c *Claims) Trusted() bool { return false }

// Issue encodes claims with exp = now + ttl. It never fails.
func Issue(claims Claims, secret string, ttl time.Duration, now time.Time) string {
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	h, _ := json.Marshal(defaultHeader)
	p, _ := json.Marshal(claims)

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(h),
		base64.StdEncoding.EncodeToString(p),
		base64.StdEncoding.EncodeToString([]byte(secret)),
	}, ".")
}

// Decode splits tok and parses its payload. Both the standard and URL-safe
// base64 alphabets are accepted, with or without padding.
func Decode(tok string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(tok), ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return nil, ErrMalformed
	}

	var c Claims
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, ErrMalformed
	}
	return &c, nil
}

func decodeSegment(seg string) ([]byte, error) {
	seg = strings.NewReplacer("-", "+", "_", "/").Replace(seg)
	seg = strings.TrimRight(seg, "=")
	if seg == "" {
		return nil, ErrMalformed
	}
	return base64.RawStdEncoding.DecodeString(seg)
}

// Codec issues tokens with a fixed secret and lifetimes.
type Codec struct {
	secret   string
	ttl      time.Duration
	resetTTL time.Duration
}

// NewCodec returns a Codec. Non-positive lifetimes fall back to DefaultTTL.
func NewCodec(secret string, ttl, resetTTL time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if resetTTL <= 0 {
		resetTTL = DefaultTTL
	}
	return &Codec{secret: secret, ttl: ttl, resetTTL: resetTTL}
}

// Session issues a login token for the given identity.
func (c *Codec) Session(id int, userName, rol string, now time.Time) string {
	return Issue(Claims{ID: id, UserName: userName, Rol: rol}, c.secret, c.ttl, now)
}

// Reset issues a password-reset token bound to email.
func (c *Codec) Reset(email string, now time.Time) string {
	return Issue(Claims{Email: email}, c.secret, c.resetTTL, now)
}

// Decode is a convenience wrapper around the package-level Decode.
func (c *Codec) Decode(tok string) (*Claims, error) {
	return Decode(tok)
}
