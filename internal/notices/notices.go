// Package notices collects user-facing info and error messages raised while a request is handled.
package notices

import (
	"context"
	"sync"

	"github.com/angelmondragon/graingrove-backend/pkg/enums"
	"github.com/angelmondragon/graingrove-backend/pkg/types"
)

type Notice = types.Notice

// Notifier receives notices.
type Notifier interface {
	Notify(Notice)
}

// Info builds an informational notice.
func Info(title, message string) Notice {
	return Notice{Kind: enums.NoticeInfo, Title: title, Message: message}
}

// Error builds an error notice.
func Error(title, message string) Notice {
	return Notice{Kind: enums.NoticeError, Title: title, Message: message}
}

// Collector buffers notices in emission order. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Items returns a copy of the collected notices, never nil.
func (c *Collector) Items() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.items))
	copy(out, c.items)
	return out
}

type discard struct{}

func (discard) Notify(Notice) {}

// Discard drops every notice.
var Discard Notifier = discard{}

type ctxKey struct{}

// WithCollector attaches c to ctx.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the request's collector, or Discard when none is attached.
func FromContext(ctx context.Context) Notifier {
	if c := collectorFrom(ctx); c != nil {
		return c
	}
	return Discard
}

// Notify emits n to the collector attached to ctx.
func Notify(ctx context.Context, n Notice) {
	FromContext(ctx).Notify(n)
}

// Collected returns the notices gathered for ctx so far.
func Collected(ctx context.Context) []Notice {
	if c := collectorFrom(ctx); c != nil {
		return c.Items()
	}
	return []Notice{}
}

func collectorFrom(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(ctxKey{}).(*Collector)
	return c
}
