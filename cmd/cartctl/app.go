package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahinestrog/cartsync/internal/cart"
	"github.com/ahinestrog/cartsync/internal/cartapi"
	"github.com/ahinestrog/cartsync/internal/config"
	"github.com/ahinestrog/cartsync/internal/cookiestore"
	"github.com/ahinestrog/cartsync/internal/events"
	"github.com/ahinestrog/cartsync/internal/i18n"
	"github.com/ahinestrog/cartsync/internal/ui"
	"github.com/rs/zerolog/log"
)

// app holds what every command needs: config, the cookie jar and the host
// the cookies belong to.
type app struct {
	cfg  config.Config
	jar  *cookiestore.Jar
	host string
	pub  *events.Publisher
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("bad CART_BASE_URL %q", cfg.BaseURL)
	}
	jar, err := cookiestore.Open(ctx, cfg.CookieDB, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open cookie store: %w", err)
	}
	a := &app{cfg: cfg, jar: jar, host: u.Hostname()}

	if cfg.RabbitURL != "" {
		pub, err := events.NewPublisher(cfg.RabbitURL, cfg.EventsExchange, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ not available, continuing without events")
		} else {
			a.pub = pub
		}
	}
	return a, nil
}

func (a *app) close() {
	a.pub.Close()
	if err := a.jar.Close(); err != nil {
		log.Warn().Err(err).Msg("close cookie store")
	}
}

// session is one page view: the document the operation renders into and the
// cart client bound to it.
type session struct {
	doc    *ui.Document
	client *cart.Client
}

func (a *app) newSession(ctx context.Context, in io.Reader, out io.Writer, assumeYes bool, row *ui.RowSpec) *session {
	token, err := a.jar.Token(ctx, a.host, a.cfg.TokenCookie)
	if err != nil {
		// the server will refuse; that surfaces as an ordinary error toast
		log.Warn().Err(err).Msg("no anti-forgery token stored")
	}

	api := cartapi.New(a.cfg.BaseURL, token,
		cartapi.WithHTTPClient(&http.Client{Jar: a.jar}),
		cartapi.WithTokenHeader(a.cfg.TokenHeader),
		cartapi.WithTimeout(a.cfg.RequestTimeout),
		cartapi.WithLogger(log.Logger),
	)

	doc := ui.NewDocument(true)
	doc.AddLink("/cart/", true)
	doc.AddLink("/catalog/", false)
	if row != nil {
		doc.AddRow(*row)
	}

	opts := []cart.Option{
		cart.WithConfirm(promptConfirm(in, out, assumeYes)),
		cart.WithReload(func() {
			log.Info().Msg("cart is empty, reloading page")
			doc.Reload()
		}),
		cart.WithSummary(func(r *cartapi.Response) {
			if r.HasTotal() {
				doc.ApplySummary(*r.CartTotal)
			}
		}),
		cart.WithMessages(i18n.New(a.cfg.Locale)),
		cart.WithLogger(log.Logger),
	}
	if a.pub != nil {
		opts = append(opts, cart.WithEvents(a.pub))
	}
	return &session{doc: doc, client: cart.New(api, doc.Regions(), opts...)}
}

// finish waits for deferred page updates and prints the page.
func (s *session) finish(out io.Writer, opErr error) error {
	s.client.Wait()
	if err := s.doc.Render(out); err != nil {
		return err
	}
	return opErr
}

func promptConfirm(in io.Reader, out io.Writer, assumeYes bool) func(string) bool {
	return func(prompt string) bool {
		if assumeYes {
			return true
		}
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "т", "так":
			return true
		}
		return false
	}
}
