package bot

import (
	"context"
	"sync"

	"github.com/jacke/canoe"
)

// subscriberBufferSize is the per-subscriber channel capacity. Each
// scenario's dispatch loop only does a map lookup and a non-blocking queue
// push per update, so a buffer of 1 is enough to decouple publish from
// dispatch without needing deep queuing here too.
const subscriberBufferSize = 1

// subscription is one scenario dispatcher's view of the broadcast topic.
type subscription struct {
	id int
	ch chan canoe.Update
}

// Ch returns the channel updates arrive on. It is closed when the topic
// unsubscribes this subscription.
func (s *subscription) Ch() <-chan canoe.Update { return s.ch }

// topic is an in-process broadcast: every update published reaches every
// currently subscribed scenario dispatcher, in publish order. Registration
// is fixed at Bot.Run's start (no dynamic (un)registration), so unlike a
// general-purpose pub/sub bus this never drops an update for a full buffer
// — it blocks instead, because the chat registry downstream cannot afford
// to silently miss one.
type topic struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
}

func newTopic() *topic {
	return &topic{subs: make(map[int]*subscription)}
}

func (t *topic) subscribe() *subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	sub := &subscription{id: t.nextID, ch: make(chan canoe.Update, subscriberBufferSize)}
	t.subs[sub.id] = sub
	return sub
}

func (t *topic) unsubscribe(sub *subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.subs[sub.id]; ok {
		delete(t.subs, sub.id)
		close(sub.ch)
	}
}

// publish delivers u to every current subscriber, blocking until each has
// accepted it or ctx is cancelled.
func (t *topic) publish(ctx context.Context, u canoe.Update) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, sub := range t.subs {
		select {
		case sub.ch <- u:
		case <-ctx.Done():
			return
		}
	}
}
