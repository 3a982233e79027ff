package ui

import (
	"strconv"
	"sync"
	"time"
)

const ToastDuration = 3000 * time.Millisecond

type Notifier struct {
	host  ToastHost
	after AfterFunc

	mu  sync.Mutex
	gen uint64
}

func NewNotifier(host ToastHost, after AfterFunc) *Notifier {
	if after == nil {
		after = StdAfterFunc
	}
	return &Notifier{host: host, after: after}
}

// Display shows msg and hides it again after ToastDuration. Without a toast
// host it does nothing.
func (n *Notifier) Display(msg string, kind Kind) {
	if n == nil || n.host == nil {
		return
	}
	if kind == "" {
		kind = KindSuccess
	}
	n.host.SetMessage(msg)
	n.host.SetKind(kind)
	n.host.SetVisible(true)

	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.mu.Unlock()

	n.after(ToastDuration, func() {
		n.mu.Lock()
		stale := gen != n.gen
		n.mu.Unlock()
		// a newer toast owns the region now
		if stale {
			return
		}
		n.host.SetVisible(false)
	})
}

type BadgeUpdater struct {
	badges []Badge
}

func NewBadgeUpdater(badges []Badge) *BadgeUpdater {
	return &BadgeUpdater{badges: badges}
}

// UpdateCount writes count into every badge; badges are hidden at zero.
func (b *BadgeUpdater) UpdateCount(count int) {
	if b == nil {
		return
	}
	text := strconv.Itoa(count)
	for _, badge := range b.badges {
		if badge == nil {
			continue
		}
		badge.SetText(text)
		badge.SetVisible(count != 0)
	}
}
