// Package bus is the in-process publish/subscribe point between the webhook
// ingress and its consumers (the realtime hub, external sinks).
//
// Publication is synchronous: every subscriber registered at the time of the
// call runs once, in registration order, on the publisher's goroutine.
package bus

import (
	"sync"

	"relay/pkg/models"
)

// Subscriber receives webhook events. One method per event kind.
type Subscriber interface {
	OnWebhookEvent(models.Notification)
}

type SubscriberFunc func(models.Notification)

func (f SubscriberFunc) OnWebhookEvent(n models.Notification) { f(n) }

type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

func New() *Bus {
	return &Bus{}
}

// SubscribeWebhookEvent registers s for future publications.
func (b *Bus) SubscribeWebhookEvent(s Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
}

func (b *Bus) PublishWebhookEvent(n models.Notification) {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.OnWebhookEvent(n)
	}
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
