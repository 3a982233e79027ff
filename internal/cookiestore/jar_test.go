package cookiestore

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Jar {
	t.Helper()
	j, err := Open(context.Background(), ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJar_SetGet(t *testing.T) {
	ctx := context.Background()
	j := openMemory(t)

	require.NoError(t, j.Set(ctx, "shop.local", &http.Cookie{Name: "csrftoken", Value: "abc"}))
	v, err := j.Get(ctx, "shop.local", "csrftoken")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, j.Set(ctx, "shop.local", &http.Cookie{Name: "csrftoken", Value: "def"}))
	v, err = j.Get(ctx, "shop.local", "csrftoken")
	require.NoError(t, err)
	assert.Equal(t, "def", v, "second set overwrites")

	_, err = j.Get(ctx, "other.local", "csrftoken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJar_DeleteAndExpiry(t *testing.T) {
	ctx := context.Background()
	j := openMemory(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }

	require.NoError(t, j.Set(ctx, "h", &http.Cookie{Name: "a", Value: "1"}))
	require.NoError(t, j.Set(ctx, "h", &http.Cookie{Name: "a", MaxAge: -1}))
	_, err := j.Get(ctx, "h", "a")
	assert.ErrorIs(t, err, ErrNotFound, "negative MaxAge deletes")

	require.NoError(t, j.Set(ctx, "h", &http.Cookie{Name: "b", Value: "2", Expires: now.Add(-time.Minute)}))
	_, err = j.Get(ctx, "h", "b")
	assert.ErrorIs(t, err, ErrNotFound, "expired cookie is not stored")

	require.NoError(t, j.Set(ctx, "h", &http.Cookie{Name: "c", Value: "3", MaxAge: 60}))
	v, err := j.Get(ctx, "h", "c")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	now = now.Add(2 * time.Minute)
	_, err = j.Get(ctx, "h", "c")
	assert.ErrorIs(t, err, ErrNotFound, "lapsed cookie is hidden")
}

func TestJar_CookieJarInterface(t *testing.T) {
	j := openMemory(t)
	var _ http.CookieJar = j

	u, err := url.Parse("http://shop.local:8000/cart/")
	require.NoError(t, err)
	j.SetCookies(u, []*http.Cookie{
		{Name: "sessionid", Value: "s1"},
		{Name: "cartonly", Value: "x", Path: "/cart/"},
	})

	got := j.Cookies(u)
	require.Len(t, got, 2)
	assert.Equal(t, "cartonly", got[0].Name)
	assert.Equal(t, "sessionid", got[1].Name)

	catalog, _ := url.Parse("http://shop.local:8000/catalog/")
	got = j.Cookies(catalog)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].Value)

	v, err := j.Get(context.Background(), "shop.local", "sessionid")
	require.NoError(t, err)
	assert.Equal(t, "s1", v)
}

func TestJar_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.db")
	j, err := Open(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, j.Set(context.Background(), "h", &http.Cookie{Name: "a", Value: "1"}))
	require.NoError(t, j.Close())

	j, err = Open(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	defer j.Close()
	v, err := j.Get(context.Background(), "h", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestJar_Token(t *testing.T) {
	ctx := context.Background()
	j := openMemory(t)

	_, err := j.Token(ctx, "shop.local", "csrftoken")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "csrftoken")

	require.NoError(t, j.Set(ctx, "shop.local", &http.Cookie{Name: "csrftoken", Value: "tok"}))
	tok, err := j.Token(ctx, "shop.local", "csrftoken")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestJar_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	j := New(db, zerolog.Nop())

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT value FROM cookies").
		WithArgs("h", "csrftoken", sqlmock.AnyArg()).
		WillReturnError(boom)

	_, err = j.Get(context.Background(), "h", "csrftoken")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJar_CookiesQueryErrorIsLogged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	j := New(db, zerolog.Nop())

	mock.ExpectQuery("SELECT name, value, path FROM cookies").
		WillReturnError(errors.New("locked"))

	u, _ := url.Parse("http://h/")
	assert.Nil(t, j.Cookies(u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJar_MigrateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cookies").
		WillReturnError(errors.New("read-only database"))

	err = New(db, zerolog.Nop()).Migrate(context.Background())
	assert.EqualError(t, err, "read-only database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"csrftoken=abc", "abc"},
		{"sessionid=1; csrftoken=abc; theme=dark", "abc"},
		{"  csrftoken=a%2Fb  ", "a/b"},
		{"csrftoken=bad%zz", "bad%zz"},
		{"xcsrftoken=no; csrftoken=yes", "yes"},
		{"sessionid=1", ""},
		{"", ""},
		{"csrftoken", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenFromHeader(tt.raw, "csrftoken"))
		})
	}
}
