// Package ui holds the page-side half of the cart client: the handles the
// cart operations write to, the toast and badge helpers, and an in-memory
// Document that implements every handle.
package ui

import "time"

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// ToastHost is the region that shows transient notifications.
type ToastHost interface {
	SetMessage(msg string)
	SetKind(kind Kind)
	SetVisible(visible bool)
}

// Badge is the item counter inside a cart link.
type Badge interface {
	SetText(text string)
	SetVisible(visible bool)
}

// Row is one cart line. Quantity and button state are only written when
// HasQuantityInput reports true; implementations ignore calls for parts they
// lack all the same.
type Row interface {
	SetRemoving(removing bool)
	Remove()
	HasQuantityInput() bool
	SetQuantity(q int)
	SetDecreaseDisabled(disabled bool)
	SetIncreaseDisabled(disabled bool)
}

// RowLocator finds the row for a product.
type RowLocator func(productID string) (Row, bool)

// Regions maps the logical page regions to concrete handles. It is resolved
// once when the page is composed. Nil Toast and Rows are allowed.
type Regions struct {
	Toast  ToastHost
	Badges []Badge
	Rows   RowLocator
}

// Row looks up productID, tolerating a nil locator.
func (r Regions) Row(productID string) (Row, bool) {
	if r.Rows == nil {
		return nil, false
	}
	return r.Rows(productID)
}

// AfterFunc schedules f after d. time.AfterFunc fits; tests pass a manual clock.
type AfterFunc func(d time.Duration, f func())

func StdAfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }
