package controller

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"cohortly/models"
	"cohortly/utils"
)

// NotificationHub fans notification events out to connected participants.
// Subscriptions are explicit handles: Subscribe hands one out, Close tears
// it down, and both are safe to call from any goroutine.
type NotificationHub struct {
	mu   sync.RWMutex
	subs map[uint]map[*HubSubscription]struct{}
}

// HubSubscription is one participant's live feed. Close is idempotent.
type HubSubscription struct {
	ParticipantID uint
	C             chan models.Notification

	hub  *NotificationHub
	once sync.Once
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		subs: make(map[uint]map[*HubSubscription]struct{}),
	}
}

// Subscribe registers a feed for one participant. The returned handle must
// be closed when the consumer goes away.
func (h *NotificationHub) Subscribe(participantID uint) *HubSubscription {
	sub := &HubSubscription{
		ParticipantID: participantID,
		C:             make(chan models.Notification, 16),
		hub:           h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[participantID] == nil {
		h.subs[participantID] = make(map[*HubSubscription]struct{})
	}
	h.subs[participantID][sub] = struct{}{}

	return sub
}

// Close unsubscribes and closes the feed channel
func (s *HubSubscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if set, ok := s.hub.subs[s.ParticipantID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.ParticipantID)
			}
		}
		close(s.C)
	})
}

// Publish delivers a notification to every live subscription of its
// participant. Delivery is best-effort: slow consumers are skipped rather
// than blocking the publisher.
func (h *NotificationHub) Publish(n models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[n.ParticipantID] {
		select {
		case sub.C <- n:
		default:
		}
	}
}

// SubscriberCount reports live subscriptions for a participant
func (h *NotificationHub) SubscriberCount(participantID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[participantID])
}

// HandleNotificationWS streams a participant's notification feed over a
// websocket. The token travels as a query parameter because browsers cannot
// set headers on websocket dials.
func HandleNotificationWS(hub *NotificationHub, logger *log.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		claims, err := utils.ParseToken(c.Query("token"))
		if err != nil {
			_ = c.WriteJSON(map[string]string{"error": "Invalid or expired token"})
			return
		}

		sub := hub.Subscribe(claims.SubjectID)
		defer sub.Close()

		// Reader loop only watches for the client hanging up
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case n, ok := <-sub.C:
				if !ok {
					return
				}
				if err := c.WriteJSON(n); err != nil {
					logger.Printf("Error writing notification to participant %d: %v", claims.SubjectID, err)
					return
				}
			case <-done:
				return
			}
		}
	}
}
