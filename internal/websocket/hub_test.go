package websocket

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Deliver(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestHubPublishToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	room := uuid.New()
	topic := RoomTopic(room)

	a, b, other := &recorder{}, &recorder{}, &recorder{}
	hub.Subscribe(topic, a)
	hub.Subscribe(topic, b)
	hub.Subscribe(RoomTopic(uuid.New()), other)

	require.NoError(t, hub.Publish(context.Background(), topic, NewDeletedEvent(room, 7)))

	assert.Len(t, a.all(), 1)
	assert.Len(t, b.all(), 1)
	assert.Empty(t, other.all())
	assert.Equal(t, int64(7), a.all()[0].MessageID)
}

func TestHubPublishWithoutSubscribersDrops(t *testing.T) {
	hub := NewHub(nil)
	topic := RoomTopic(uuid.New())
	require.NoError(t, hub.Publish(context.Background(), topic, Event{Kind: EventMessageReceived}))

	late := &recorder{}
	hub.Subscribe(topic, late)
	assert.Empty(t, late.all())
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(nil)
	topic := RoomTopic(uuid.New())
	r := &recorder{}

	sub := hub.Subscribe(topic, r)
	assert.Equal(t, 1, hub.Subscribers(topic))
	assert.True(t, hub.Unsubscribe(sub))
	assert.False(t, hub.Unsubscribe(sub))
	assert.Equal(t, 0, hub.Subscribers(topic))

	require.NoError(t, hub.Publish(context.Background(), topic, Event{Kind: EventMessageUpdated}))
	assert.Empty(t, r.all())
}

func TestHubSameListenerTwice(t *testing.T) {
	hub := NewHub(nil)
	topic := RoomTopic(uuid.New())
	var n int
	l := ListenerFunc(func(Event) { n++ })

	s1 := hub.Subscribe(topic, l)
	hub.Subscribe(topic, l)
	require.NoError(t, hub.Publish(context.Background(), topic, Event{}))
	assert.Equal(t, 2, n)

	hub.Unsubscribe(s1)
	require.NoError(t, hub.Publish(context.Background(), topic, Event{}))
	assert.Equal(t, 3, n)
}

func TestHubListenerMayUnsubscribeDuringPublish(t *testing.T) {
	hub := NewHub(nil)
	topic := RoomTopic(uuid.New())
	second := &recorder{}

	var sub Subscription
	sub = hub.Subscribe(topic, ListenerFunc(func(Event) {
		hub.Unsubscribe(sub)
		hub.Subscribe(topic, &recorder{})
	}))
	hub.Subscribe(topic, second)

	require.NoError(t, hub.Publish(context.Background(), topic, Event{}))
	assert.Len(t, second.all(), 1)
	assert.Equal(t, 2, hub.Subscribers(topic))
}

func TestHubPublishPreservesOrder(t *testing.T) {
	hub := NewHub(nil)
	room := uuid.New()
	r := &recorder{}
	hub.Subscribe(RoomTopic(room), r)

	for i := int64(1); i <= 20; i++ {
		require.NoError(t, hub.Publish(context.Background(), RoomTopic(room), NewDeletedEvent(room, i)))
	}
	for i, ev := range r.all() {
		assert.Equal(t, int64(i+1), ev.MessageID)
	}
}

func TestHubConcurrentSubscribeAndPublish(t *testing.T) {
	hub := NewHub(nil)
	topic := RoomTopic(uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe(topic, &recorder{})
			hub.Unsubscribe(sub)
		}()
		go func() {
			defer wg.Done()
			_ = hub.Publish(context.Background(), topic, Event{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Subscribers(topic))
}

func TestHubPresenceCounting(t *testing.T) {
	hub := NewHub(nil)
	u := uuid.New()

	assert.True(t, hub.Connect(u))
	assert.False(t, hub.Connect(u))
	assert.Len(t, hub.GetOnlineUsers(), 1)

	assert.False(t, hub.Disconnect(u))
	assert.True(t, hub.Disconnect(u))
	assert.False(t, hub.Disconnect(u))
	assert.Empty(t, hub.GetOnlineUsers())
}
