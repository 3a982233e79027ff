package cookiestore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Token reads the anti-forgery token cookie once. The caller keeps the value
// and hands it to the API client; nothing here refreshes it.
func (j *Jar) Token(ctx context.Context, host, name string) (string, error) {
	v, err := j.Get(ctx, host, name)
	if err != nil {
		return "", fmt.Errorf("read %s cookie for %s: %w", name, host, err)
	}
	return v, nil
}

// TokenFromHeader pulls name out of a raw Cookie header ("a=1; csrftoken=x").
// The value is percent-decoded; a missing cookie yields "".
func TokenFromHeader(raw, name string) string {
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k != name {
			continue
		}
		if dec, err := url.PathUnescape(v); err == nil {
			return dec
		}
		return v
	}
	return ""
}
