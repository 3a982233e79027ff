// Package cart wires the cart API calls to the page: every operation sends one
// request and then updates the toast, the header badges and the affected row.
//
// Operations block until the server answers. Callers that want
// fire-and-forget behaviour run them in a goroutine; the page handles are
// expected to be safe for that.
package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahinestrog/cartsync/internal/cartapi"
	"github.com/ahinestrog/cartsync/internal/events"
	"github.com/ahinestrog/cartsync/internal/i18n"
	"github.com/ahinestrog/cartsync/internal/ui"
	"github.com/rs/zerolog"
)

const (
	MinQuantity = 1
	MaxQuantity = 99

	// RemoveDelay lets the removal animation finish before the row goes away.
	RemoveDelay = 300 * time.Millisecond
)

// API is the request side, satisfied by *cartapi.Client.
type API interface {
	Add(ctx context.Context, productID string, quantity int) (*cartapi.Response, error)
	Remove(ctx context.Context, productID string) (*cartapi.Response, error)
	Update(ctx context.Context, productID string, quantity int) (*cartapi.Response, error)
}

// EventSink receives cart activity after successful operations.
type EventSink interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type Client struct {
	api     API
	regions ui.Regions
	toast   *ui.Notifier
	badges  *ui.BadgeUpdater

	confirm func(prompt string) bool
	reload  func()
	summary func(*cartapi.Response)
	after   ui.AfterFunc
	msgs    i18n.Messages
	events  EventSink
	log     zerolog.Logger

	pending sync.WaitGroup

	// seqMu also serializes applying quantity replies to the page.
	seqMu   sync.Mutex
	seqNext atomic.Uint64
	applied map[string]uint64
}

type Option func(*Client)

// WithConfirm sets the blocking yes/no prompt used before removals.
// Without it every removal is confirmed.
func WithConfirm(fn func(prompt string) bool) Option { return func(c *Client) { c.confirm = fn } }

// WithReload sets the full page reload used when the cart becomes empty.
func WithReload(fn func()) Option { return func(c *Client) { c.reload = fn } }

// WithSummary sets the routine that re-renders cart totals from a response.
// The default does nothing.
func WithSummary(fn func(*cartapi.Response)) Option { return func(c *Client) { c.summary = fn } }

func WithAfterFunc(fn ui.AfterFunc) Option { return func(c *Client) { c.after = fn } }

func WithMessages(m i18n.Messages) Option { return func(c *Client) { c.msgs = m } }

func WithEvents(sink EventSink) Option { return func(c *Client) { c.events = sink } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

func New(api API, regions ui.Regions, opts ...Option) *Client {
	c := &Client{
		api:     api,
		regions: regions,
		confirm: func(string) bool { return true },
		reload:  func() {},
		summary: func(*cartapi.Response) {},
		after:   ui.StdAfterFunc,
		msgs:    i18n.New(""),
		log:     zerolog.Nop(),
		applied: make(map[string]uint64),
	}
	for _, o := range opts {
		o(c)
	}
	c.toast = ui.NewNotifier(regions.Toast, c.after)
	c.badges = ui.NewBadgeUpdater(regions.Badges)
	return c
}

// Toast shows a notification in the page's toast region.
func (c *Client) Toast(msg string, kind ui.Kind) { c.toast.Display(msg, kind) }

// UpdateCount sets every header badge to count.
func (c *Client) UpdateCount(count int) { c.badges.UpdateCount(count) }

// AddOne adds a single unit, the default quantity.
func (c *Client) AddOne(ctx context.Context, productID string) error {
	return c.AddToCart(ctx, productID, 1)
}

// AddToCart sends quantity as given; bounds are checked by the server.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	resp, err := c.api.Add(ctx, productID, quantity)
	if err != nil {
		c.fail("add", productID, err)
		return err
	}
	c.toast.Display(resp.Message, ui.KindSuccess)
	c.syncCount(resp)
	c.publish(ctx, events.ItemAdded, productID, quantity, resp)
	return nil
}

// RemoveFromCart asks for confirmation, marks the row as removing and drops
// the line. A declined prompt sends nothing and returns nil.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	if !c.confirm(c.msgs.ConfirmRemove()) {
		c.log.Debug().Str("product_id", productID).Msg("removal declined")
		return nil
	}

	row, found := c.regions.Row(productID)
	if found {
		row.SetRemoving(true)
	}

	resp, err := c.api.Remove(ctx, productID)
	if err != nil {
		c.fail("remove", productID, err)
		if found {
			row.SetRemoving(false)
		}
		return err
	}

	c.toast.Display(resp.Message, ui.KindSuccess)
	c.syncCount(resp)

	c.pending.Add(1)
	c.after(RemoveDelay, func() {
		defer c.pending.Done()
		if found {
			row.Remove()
		}
		if resp.HasTotal() {
			c.summary(resp)
		}
		// an empty cart needs a different layout; let the server render it
		if resp.HasCount() && resp.CartItemsCount == 0 {
			c.reload()
		}
	})
	c.publish(ctx, events.ItemRemoved, productID, 0, resp)
	return nil
}

// UpdateQuantity sets the line quantity and refreshes the row's controls.
// A successful reply is applied unless a reply to a later update for the same
// product has already been applied. Failures are shown but nothing is rolled
// back.
func (c *Client) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	seq := c.seqNext.Add(1)

	resp, err := c.api.Update(ctx, productID, quantity)
	if err != nil {
		c.fail("update", productID, err)
		return err
	}

	c.seqMu.Lock()
	if seq < c.applied[productID] {
		c.seqMu.Unlock()
		c.log.Debug().Str("product_id", productID).Int("quantity", quantity).Msg("stale quantity reply dropped")
		return nil
	}
	c.applied[productID] = seq
	c.toast.Display(c.msgs.QuantityUpdated(), ui.KindSuccess)
	c.syncCount(resp)
	if row, ok := c.regions.Row(productID); ok && row.HasQuantityInput() {
		row.SetQuantity(quantity)
		row.SetDecreaseDisabled(quantity <= MinQuantity)
		row.SetIncreaseDisabled(quantity >= MaxQuantity)
	}
	if resp.HasTotal() {
		c.summary(resp)
	}
	c.seqMu.Unlock()

	c.publish(ctx, events.ItemUpdated, productID, quantity, resp)
	return nil
}

// Wait blocks until scheduled row removals have run.
func (c *Client) Wait() { c.pending.Wait() }

func (c *Client) syncCount(resp *cartapi.Response) {
	if resp.HasCount() {
		c.badges.UpdateCount(resp.CartItemsCount)
	}
}

func (c *Client) fail(op, productID string, err error) {
	var appErr *cartapi.ApplicationError
	if errors.As(err, &appErr) {
		c.log.Info().Str("op", op).Str("product_id", productID).Str("message", appErr.Message).Msg("cart rejected request")
		c.toast.Display(appErr.Message, ui.KindError)
		return
	}
	c.log.Error().Err(err).Str("op", op).Str("product_id", productID).Msg("cart request failed")
	c.toast.Display(c.msgs.GenericError(), ui.KindError)
}

func (c *Client) publish(ctx context.Context, eventType, productID string, quantity int, resp *cartapi.Response) {
	if c.events == nil {
		return
	}
	ev := events.ItemEvent{
		ProductID:      productID,
		Quantity:       quantity,
		CartItemsCount: resp.CartItemsCount,
		CartTotal:      resp.CartTotal,
	}
	if err := c.events.Publish(ctx, eventType, ev); err != nil {
		c.log.Warn().Err(err).Str("type", eventType).Msg("publish cart event")
	}
}
