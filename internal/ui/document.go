package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultRowCacheSize = 128

// Document is an in-memory cart page. All handles it hands out share its lock,
// so timers and request goroutines can write to it concurrently.
type Document struct {
	mu sync.RWMutex

	hasToast bool
	toast    toastState

	links []*CartLink
	rows  []*RowElement
	index *lru.Cache[string, *RowElement]

	total   *float64
	reloads int
}

type toastState struct {
	Message string
	Kind    Kind
	Visible bool
}

type CartLink struct {
	Href  string
	Badge *BadgeElement
}

type BadgeElement struct {
	doc     *Document
	text    string
	visible bool
}

type button struct{ disabled bool }

type RowElement struct {
	doc *Document

	ProductID string
	Title     string
	Price     float64

	hasInput bool
	quantity int
	decrease *button
	increase *button
	removing bool
	removed  bool
}

// RowSpec describes a row to add to the document.
type RowSpec struct {
	ProductID string
	Title     string
	Price     float64
	Quantity  int
	NoInput   bool
	NoButtons bool
}

func NewDocument(withToast bool) *Document {
	idx, err := lru.New[string, *RowElement](defaultRowCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &Document{hasToast: withToast, index: idx}
}

// AddLink appends a header link; badge controls whether it embeds a counter.
func (d *Document) AddLink(href string, badge bool) *CartLink {
	d.mu.Lock()
	defer d.mu.Unlock()
	l := &CartLink{Href: href}
	if badge {
		l.Badge = &BadgeElement{doc: d}
	}
	d.links = append(d.links, l)
	return l
}

func (d *Document) AddRow(rs RowSpec) *RowElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := &RowElement{
		doc:       d,
		ProductID: rs.ProductID,
		Title:     rs.Title,
		Price:     rs.Price,
		hasInput:  !rs.NoInput,
		quantity:  rs.Quantity,
	}
	if !rs.NoButtons {
		r.decrease = &button{disabled: rs.Quantity <= 1}
		r.increase = &button{disabled: rs.Quantity >= 99}
	}
	d.rows = append(d.rows, r)
	return r
}

// Regions resolves the page regions once: the toast host, the badge of every
// link pointing at the cart, and the row locator.
func (d *Document) Regions() Regions {
	d.mu.RLock()
	defer d.mu.RUnlock()
	reg := Regions{Rows: d.locateRow}
	if d.hasToast {
		reg.Toast = toastHost{d}
	}
	for _, l := range d.links {
		if l.Badge != nil && strings.Contains(l.Href, "cart") {
			reg.Badges = append(reg.Badges, l.Badge)
		}
	}
	return reg
}

func (d *Document) locateRow(productID string) (Row, bool) {
	if r, ok := d.index.Get(productID); ok {
		return r, true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.rows {
		if r.ProductID == productID && !r.removed {
			d.index.Add(productID, r)
			return r, true
		}
	}
	return nil, false
}

// ApplySummary is the summary-update routine: it records the cart total
// shown under the rows.
func (d *Document) ApplySummary(total float64) {
	d.mu.Lock()
	d.total = &total
	d.mu.Unlock()
}

func (d *Document) Reload() {
	d.mu.Lock()
	d.reloads++
	d.mu.Unlock()
}

func (d *Document) Reloads() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.reloads
}

func (d *Document) Toast() (msg string, kind Kind, visible bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.toast.Message, d.toast.Kind, d.toast.Visible
}

func (d *Document) Total() (float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.total == nil {
		return 0, false
	}
	return *d.total, true
}

// Render writes a plain-text view of the page.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var b strings.Builder
	for _, l := range d.links {
		if l.Badge == nil || !l.Badge.visible {
			fmt.Fprintf(&b, "[%s]\n", l.Href)
			continue
		}
		fmt.Fprintf(&b, "[%s (%s)]\n", l.Href, l.Badge.text)
	}
	live := 0
	for _, r := range d.rows {
		if r.removed {
			continue
		}
		live++
		mark := ""
		if r.removing {
			mark = " (removing)"
		}
		fmt.Fprintf(&b, "  #%s %-30s x%-3d %s%s\n", r.ProductID, r.Title, r.quantity, money(r.Price), mark)
	}
	if live == 0 {
		b.WriteString("  cart is empty\n")
	}
	if d.total != nil {
		fmt.Fprintf(&b, "  total: %s\n", money(*d.total))
	}
	if d.toast.Visible {
		fmt.Fprintf(&b, "<%s> %s\n", d.toast.Kind, d.toast.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v) + " ₴"
}

type toastHost struct{ d *Document }

func (t toastHost) SetMessage(msg string) {
	t.d.mu.Lock()
	t.d.toast.Message = msg
	t.d.mu.Unlock()
}

func (t toastHost) SetKind(kind Kind) {
	t.d.mu.Lock()
	t.d.toast.Kind = kind
	t.d.mu.Unlock()
}

func (t toastHost) SetVisible(visible bool) {
	t.d.mu.Lock()
	t.d.toast.Visible = visible
	t.d.mu.Unlock()
}

func (b *BadgeElement) SetText(text string) {
	b.doc.mu.Lock()
	b.text = text
	b.doc.mu.Unlock()
}

func (b *BadgeElement) SetVisible(visible bool) {
	b.doc.mu.Lock()
	b.visible = visible
	b.doc.mu.Unlock()
}

func (b *BadgeElement) State() (text string, visible bool) {
	b.doc.mu.RLock()
	defer b.doc.mu.RUnlock()
	return b.text, b.visible
}

func (r *RowElement) SetRemoving(removing bool) {
	r.doc.mu.Lock()
	r.removing = removing
	r.doc.mu.Unlock()
}

func (r *RowElement) Remove() {
	r.doc.mu.Lock()
	r.removed = true
	r.doc.mu.Unlock()
	r.doc.index.Remove(r.ProductID)
}

func (r *RowElement) HasQuantityInput() bool {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()
	return r.hasInput
}

func (r *RowElement) SetQuantity(q int) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	if r.hasInput {
		r.quantity = q
	}
}

func (r *RowElement) SetDecreaseDisabled(disabled bool) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	if r.decrease != nil {
		r.decrease.disabled = disabled
	}
}

func (r *RowElement) SetIncreaseDisabled(disabled bool) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	if r.increase != nil {
		r.increase.disabled = disabled
	}
}

// RowState is a snapshot of a row for assertions and rendering.
type RowState struct {
	Quantity         int
	Removing         bool
	Removed          bool
	DecreaseDisabled bool
	IncreaseDisabled bool
}

func (r *RowElement) State() RowState {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()
	s := RowState{Quantity: r.quantity, Removing: r.removing, Removed: r.removed}
	if r.decrease != nil {
		s.DecreaseDisabled = r.decrease.disabled
	}
	if r.increase != nil {
		s.IncreaseDisabled = r.increase.disabled
	}
	return s
}
