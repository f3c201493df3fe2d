package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agora-dev/agora/shared/domain"
	"github.com/agora-dev/agora/shared/logger"
)

// Notifier delivers best-effort notifications. Implementations must not block.
type Notifier interface {
	Notify(n domain.Notification)
}

// Subscription is one live stream of a user's notifications.
type Subscription struct {
	Id     uuid.UUID
	UserId domain.UserId
	C      <-chan domain.Notification

	ch chan domain.Notification
}

// NotificationHub maps users to their live subscriptions.
// Subscribe and Unsubscribe are the only mutations; Notify sends over a
// snapshot so no lock is held while writing to a channel.
type NotificationHub struct {
	mu         sync.RWMutex
	subs       map[domain.UserId]map[uuid.UUID]*Subscription
	bufferSize int
	now        Clock
}

func NewNotificationHub(bufferSize int, clock Clock) *NotificationHub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	if clock == nil {
		clock = time.Now
	}
	return &NotificationHub{
		subs:       make(map[domain.UserId]map[uuid.UUID]*Subscription),
		bufferSize: bufferSize,
		now:        clock,
	}
}

func (h *NotificationHub) Subscribe(userId domain.UserId) *Subscription {
	ch := make(chan domain.Notification, h.bufferSize)
	sub := &Subscription{Id: uuid.New(), UserId: userId, C: ch, ch: ch}

	h.mu.Lock()
	set, ok := h.subs[userId]
	if !ok {
		set = make(map[uuid.UUID]*Subscription)
		h.subs[userId] = set
	}
	set[sub.Id] = sub
	h.mu.Unlock()

	logger.Log.Debug("notification subscriber added", "component", "notifications", "user_id", userId, "subscription", sub.Id)
	return sub
}

// Unsubscribe removes the subscription. The channel is left open so a
// concurrent Notify holding a stale snapshot can still send without panicking;
// the owner simply stops reading. Calling it twice is a no-op.
func (h *NotificationHub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.UserId]
	if !ok {
		return
	}
	if _, ok := set[sub.Id]; !ok {
		return
	}
	delete(set, sub.Id)
	if len(set) == 0 {
		delete(h.subs, sub.UserId)
	}
	logger.Log.Debug("notification subscriber removed", "component", "notifications", "user_id", sub.UserId, "subscription", sub.Id)
}

// Notify fans n out to the recipient's subscriptions. Full buffers drop the message.
func (h *NotificationHub) Notify(n domain.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = h.now()
	}

	h.mu.RLock()
	snapshot := make([]*Subscription, 0, len(h.subs[n.Recipient]))
	for _, sub := range h.subs[n.Recipient] {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	for _, sub := range snapshot {
		select {
		case sub.ch <- n:
		default:
			logger.Log.Warn("notification dropped, subscriber buffer full",
				"component", "notifications", "user_id", n.Recipient, "subscription", sub.Id, "type", n.Type)
		}
	}
}

// Subscribers returns the number of live subscriptions for a user.
func (h *NotificationHub) Subscribers(userId domain.UserId) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userId])
}
