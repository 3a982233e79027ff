// Package cookiestore persists the client's cookies in SQLite and exposes them
// as an http.CookieJar. The anti-forgery token is read from here.
package cookiestore

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("cookie not found")

const schema = `
CREATE TABLE IF NOT EXISTS cookies (
	host    TEXT    NOT NULL,
	name    TEXT    NOT NULL,
	value   TEXT    NOT NULL,
	path    TEXT    NOT NULL DEFAULT '/',
	expires INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (host, name)
)`

type Jar struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// Open opens (creating if needed) the cookie database at path. ":memory:" is
// accepted for throwaway jars.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Jar, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		// Busy timeout + WAL, same as the service databases
		dsn += "?_pragma=busy_timeout=5000&_pragma=journal_mode=WAL"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	j := New(db, log)
	if err := j.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// New wraps an already open database. Call Migrate before use.
func New(db *sql.DB, log zerolog.Logger) *Jar {
	return &Jar{db: db, log: log, now: time.Now}
}

func (j *Jar) Migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, schema)
	return err
}

func (j *Jar) Close() error { return j.db.Close() }

// Set stores c for host. A cookie that is already expired deletes the entry.
func (j *Jar) Set(ctx context.Context, host string, c *http.Cookie) error {
	var expires int64
	switch {
	case c.MaxAge < 0:
		return j.delete(ctx, host, c.Name)
	case c.MaxAge > 0:
		expires = j.now().Add(time.Duration(c.MaxAge) * time.Second).Unix()
	case !c.Expires.IsZero():
		if !c.Expires.After(j.now()) {
			return j.delete(ctx, host, c.Name)
		}
		expires = c.Expires.Unix()
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO cookies(host, name, value, path, expires)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(host, name)
		DO UPDATE SET value = excluded.value, path = excluded.path, expires = excluded.expires
	`, host, c.Name, c.Value, path, expires)
	return err
}

func (j *Jar) delete(ctx context.Context, host, name string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM cookies WHERE host=? AND name=?`, host, name)
	return err
}

// Get returns the live value of cookie name for host.
func (j *Jar) Get(ctx context.Context, host, name string) (string, error) {
	var value string
	err := j.db.QueryRowContext(ctx, `
		SELECT value FROM cookies
		WHERE host=? AND name=? AND (expires=0 OR expires>?)`,
		host, name, j.now().Unix()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetCookies implements http.CookieJar. Storage errors are logged, the
// interface has no way to report them.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	for _, c := range cookies {
		if err := j.Set(context.Background(), u.Hostname(), c); err != nil {
			j.log.Error().Err(err).Str("host", u.Hostname()).Str("cookie", c.Name).Msg("store cookie")
		}
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	rows, err := j.db.QueryContext(context.Background(), `
		SELECT name, value, path FROM cookies
		WHERE host=? AND (expires=0 OR expires>?)
		ORDER BY name`, u.Hostname(), j.now().Unix())
	if err != nil {
		j.log.Error().Err(err).Str("host", u.Hostname()).Msg("load cookies")
		return nil
	}
	defer rows.Close()

	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}
	var out []*http.Cookie
	for rows.Next() {
		var name, value, path string
		if err := rows.Scan(&name, &value, &path); err != nil {
			j.log.Error().Err(err).Msg("scan cookie")
			return out
		}
		if !strings.HasPrefix(reqPath, path) {
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	if err := rows.Err(); err != nil {
		j.log.Error().Err(err).Msg("iterate cookies")
	}
	return out
}
