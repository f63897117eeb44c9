package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortly/models"
)

func TestHubPublishReachesSubscriber(t *testing.T) {
	hub := NewNotificationHub()
	sub := hub.Subscribe(7)
	defer sub.Close()

	hub.Publish(models.Notification{ParticipantID: 7, Title: "hello"})

	select {
	case n := <-sub.C:
		assert.Equal(t, "hello", n.Title)
	default:
		t.Fatal("expected a buffered notification")
	}
}

func TestHubPublishOnlyTargetsOwner(t *testing.T) {
	hub := NewNotificationHub()
	mine := hub.Subscribe(1)
	defer mine.Close()
	theirs := hub.Subscribe(2)
	defer theirs.Close()

	hub.Publish(models.Notification{ParticipantID: 1, Title: "for one"})

	require.Len(t, mine.C, 1)
	assert.Len(t, theirs.C, 0)
}

func TestHubFanOutToMultipleSubscriptions(t *testing.T) {
	hub := NewNotificationHub()
	a := hub.Subscribe(3)
	defer a.Close()
	b := hub.Subscribe(3)
	defer b.Close()

	assert.Equal(t, 2, hub.SubscriberCount(3))

	hub.Publish(models.Notification{ParticipantID: 3})

	assert.Len(t, a.C, 1)
	assert.Len(t, b.C, 1)
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewNotificationHub()
	sub := hub.Subscribe(4)

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, hub.SubscriberCount(4))

	// Publishing after close must not panic or deliver
	hub.Publish(models.Notification{ParticipantID: 4})
	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewNotificationHub()
	sub := hub.Subscribe(5)
	defer sub.Close()

	// Overflow the buffer; extra deliveries are dropped, not queued
	for i := 0; i < 100; i++ {
		hub.Publish(models.Notification{ParticipantID: 5})
	}

	assert.Equal(t, cap(sub.C), len(sub.C))
}
