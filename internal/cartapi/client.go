// Package cartapi talks to the shop's cart endpoints.
//
// Each call is a single form-encoded POST carrying the anti-forgery token.
// The reply is JSON; the HTTP status code is not inspected.
package cartapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultTokenHeader = "X-CSRFToken"
	ajaxHeader         = "X-Requested-With"
	ajaxValue          = "XMLHttpRequest"
	requestIDHeader    = "X-Request-ID"

	maxBody = 1 << 20
)

type Client struct {
	baseURL     string
	token       string
	tokenHeader string
	http        *http.Client
	timeout     time.Duration
	log         zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithTokenHeader(name string) Option { return func(c *Client) { c.tokenHeader = name } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// New builds a client for the API rooted at baseURL. The token is fixed for the
// client's lifetime; there is no refresh.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		tokenHeader: DefaultTokenHeader,
		http:        http.DefaultClient,
		log:         zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Add puts quantity units of productID in the cart.
func (c *Client) Add(ctx context.Context, productID string, quantity int) (*Response, error) {
	return c.post(ctx, "add", productID, quantityBody(quantity))
}

// Remove drops the whole line for productID.
func (c *Client) Remove(ctx context.Context, productID string) (*Response, error) {
	return c.post(ctx, "remove", productID, "")
}

// Update sets the line quantity. Bounds are the server's business.
func (c *Client) Update(ctx context.Context, productID string, quantity int) (*Response, error) {
	return c.post(ctx, "update", productID, quantityBody(quantity))
}

func quantityBody(quantity int) string {
	return url.Values{"quantity": {strconv.Itoa(quantity)}}.Encode()
}

// Path returns the endpoint path for op and productID, e.g. /cart/add/42/.
func Path(op, productID string) string {
	return "/cart/" + op + "/" + url.PathEscape(productID) + "/"
}

func (c *Client) post(ctx context.Context, op, productID, body string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Path(op, productID), rdr)
	if err != nil {
		return nil, &TransportError{Op: op, Err: errors.Wrap(err, "build request")}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(c.tokenHeader, c.token)
	req.Header.Set(ajaxHeader, ajaxValue)
	req.Header.Set(requestIDHeader, reqID)

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: errors.Wrap(err, "send request")}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, &TransportError{Op: op, Status: res.StatusCode, Err: errors.Wrap(err, "read body")}
	}
	c.log.Debug().
		Str("op", op).
		Str("product_id", productID).
		Str("request_id", reqID).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("cart request done")

	resp, err := decodeResponse(raw)
	if err != nil {
		return nil, &TransportError{Op: op, Status: res.StatusCode, Err: err}
	}
	if !resp.Success {
		return resp, &ApplicationError{Op: op, Message: resp.Message, Response: resp}
	}
	return resp, nil
}
