package fs726t

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

const (
	// loginMarker appears in any page served to a client that is not
	// logged in.
	loginMarker      = "<input type=submit value=' Login '>"
	loginSuccess     = "<h1>Switch Status</h1>"
	singleUserMarker = "Only one user can login"
)

var loginError = regexp.MustCompile(`<font color=#336699 size=3><br><b>(.*)<br><br><input type=submit value='Continue'><br><br>`)

// form is an ordered list of POST parameters. The switch rejects requests
// whose parameters arrive in a different order, so url.Values (which
// sorts) cannot be used.
type form [][2]string

func (f form) add(key string, value interface{}) form {
	return append(f, [2]string{key, fmt.Sprint(value)})
}

func (f form) encode() string {
	parts := make([]string, len(f))
	for i, kv := range f {
		parts[i] = url.QueryEscape(kv[0]) + "=" + url.QueryEscape(kv[1])
	}
	return strings.Join(parts, "&")
}

// statusError is a non-2xx HTTP response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.code, http.StatusText(e.code))
}

// client is a web session with one switch. The switch tracks logins by
// client IP, not by cookie, so there is no session state to keep.
type client struct {
	name     string
	base     string
	password string
	http     *http.Client
	log      *logrus.Entry
}

// request fetches path (POSTing f when non-nil), logging in and retrying
// once when the switch answers with its login form.
func (c *client) request(ctx context.Context, path string, f form) (string, error) {
	body, err := c.do(ctx, path, f)
	if err != nil {
		return "", err
	}
	if strings.Contains(body, loginMarker) {
		if err := c.login(ctx); err != nil {
			return "", err
		}
		if body, err = c.do(ctx, path, f); err != nil {
			return "", err
		}
		if strings.Contains(body, loginMarker) {
			return "", util.NewAuthError(c.name, "switch still asks for a login after logging in")
		}
	}
	if strings.Contains(body, singleUserMarker) {
		return "", singleUserError(c.name)
	}
	return body, nil
}

func singleUserError(name string) error {
	return util.NewAuthError(name, "only one user can log in at a time; log out the other client first")
}

// login posts the password. Parameter order matters to the switch.
func (c *client) login(ctx context.Context) error {
	c.log.Debug("logging in")
	body, err := c.do(ctx, "/cgi/device", form{}.add("passwd", c.password).add("post_url", "/cgi/device"))
	if err != nil {
		return err
	}
	switch {
	case strings.Contains(body, singleUserMarker):
		return singleUserError(c.name)
	case strings.Contains(body, loginSuccess):
		return nil
	}
	if m := loginError.FindStringSubmatch(body); m != nil {
		return util.NewAuthError(c.name, "switch said: "+m[1])
	}
	return util.NewAuthError(c.name, "login failed, but the switch gave no reason")
}

// logout ends the session so other clients can log in. A 404 means there
// was no session.
func (c *client) logout(ctx context.Context) error {
	c.log.Debug("logging out")
	_, err := c.do(ctx, "/cgi/logout", nil)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		c.log.Debug("ignoring logout 404, probably not logged in")
		return nil
	}
	return err
}

// do performs a single request without any login handling.
func (c *client) do(ctx context.Context, path string, f form) (string, error) {
	method, body := http.MethodGet, io.Reader(nil)
	if f != nil {
		method = http.MethodPost
		encoded := f.encode()
		body = strings.NewReader(encoded)
		c.log.Debugf("HTTP POST %s (%s)", path, redact(path, encoded))
	} else {
		c.log.Debugf("HTTP GET %s", path)
	}
	op := "HTTP " + method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return "", err
	}
	if f != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", util.NewTransportError(c.name, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", util.NewTransportError(c.name, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", util.NewTransportError(c.name, op, &statusError{code: resp.StatusCode})
	}
	return string(data), nil
}

// redact hides the password of login requests from the debug log.
func redact(path, encoded string) string {
	if path == "/cgi/device" && strings.HasPrefix(encoded, "passwd=") {
		return "passwd=***" + encoded[strings.Index(encoded, "&"):]
	}
	return encoded
}
