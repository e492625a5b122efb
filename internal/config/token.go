package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// AdminPathPrefix is the only path tree signed URLs can grant access to.
const AdminPathPrefix = "/v1/admin/"

const (
	tokenParam    = "t"
	deadlineParam = "td"
)

var (
	// ErrTokenExpired means the token is valid, but expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid means the URL was not signed by us, or was altered.
	ErrTokenInvalid = errors.New("invalid token")
)

// AdminMatchURL returns a signed link to apply action (approve or reject)
// to a match through the web API.
func (c *Config) AdminMatchURL(matchID, action string, d time.Duration) (string, error) {
	return c.SignURL(
		fmt.Sprintf("https://%s%smatch/%s/%s", c.HTTPAddr, AdminPathPrefix, url.PathEscape(matchID), action),
		d,
	)
}

// SignURL adds a token query parameter to an admin URL, valid for the given
// duration. The token covers the host, path, and every other query parameter.
func (c *Config) SignURL(str string, d time.Duration) (string, error) {
	u, err := parseAdminURL(str)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Del(tokenParam)
	q.Set(deadlineParam, strconv.FormatInt(time.Now().Add(d).Unix(), 10))

	token, err := c.sign(signedPayload(u, q))
	if err != nil {
		return "", err
	}

	q.Set(tokenParam, token)
	u.Scheme = "https"
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// CheckURL ensures the given URL was returned by SignURL and is not expired.
func (c *Config) CheckURL(str string) error {
	u, err := parseAdminURL(str)
	if err != nil {
		return errors.Wrap(ErrTokenInvalid, err.Error())
	}

	q := u.Query()
	given := q.Get(tokenParam)
	q.Del(tokenParam)

	deadline, err := strconv.ParseInt(q.Get(deadlineParam), 10, 64)
	if err != nil {
		return errors.Wrap(ErrTokenInvalid, "missing or malformed deadline")
	}

	expected, err := c.sign(signedPayload(u, q))
	if err != nil {
		return err
	}

	if !hmac.Equal([]byte(given), []byte(expected)) {
		return ErrTokenInvalid
	}

	// Only reported for genuine tokens.
	if time.Unix(deadline, 0).Before(time.Now()) {
		return ErrTokenExpired
	}

	return nil
}

func parseAdminURL(str string) (*url.URL, error) {
	u, err := url.Parse(str)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse URL")
	}

	if !strings.HasPrefix(u.Path, AdminPathPrefix) {
		return nil, errors.Errorf("path %q is outside of %s", u.Path, AdminPathPrefix)
	}

	return u, nil
}

// signedPayload ignores the scheme, TLS can be terminated by a proxy.
func signedPayload(u *url.URL, q url.Values) []byte {
	return []byte(u.Host + u.EscapedPath() + "?" + q.Encode())
}

func (c *Config) sign(b []byte) (string, error) {
	if len(c.WebToken) < 32 {
		return "", errors.New("web token must be at least 32 chars")
	}

	mac := hmac.New(sha256.New, []byte(c.WebToken))
	if _, err := mac.Write(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(mac.Sum(nil)), nil
}
