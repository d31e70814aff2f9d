package bot

import (
	"context"
	"sync"

	"github.com/jacke/canoe"
)

// instance is one running scenario execution: a per-conversation unbounded
// update queue feeding canoe.Run, identified by a fresh id each time a chat
// (re)starts the scenario.
type instance struct {
	id    string
	queue *queue
}

// Next implements canoe.Stream by delegating to the instance's queue.
func (i *instance) Next(ctx context.Context) (canoe.Update, bool) {
	return i.queue.next(ctx)
}

// chatRegistry enforces at-most-one-live-instance-per-key for one scenario:
// while a key has a live instance, further updates for it are routed to
// that instance instead of starting a second one.
type chatRegistry struct {
	mu   sync.Mutex
	live map[string]*instance
}

func newChatRegistry() *chatRegistry {
	return &chatRegistry{live: make(map[string]*instance)}
}

// routeOrCreate enqueues u onto key's live instance if one exists, otherwise
// builds one via makeInstance (called at most once, under the lock, so a
// losing race never leaks an unused queue's pump goroutine) and enqueues u
// as its first update.
func (r *chatRegistry) routeOrCreate(key string, u canoe.Update, makeInstance func() *instance) (inst *instance, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.live[key]; ok {
		existing.queue.push(u)
		return existing, false
	}

	inst = makeInstance()
	inst.queue.push(u)
	r.live[key] = inst
	return inst, true
}

// release forgets key's live instance once its scenario run ends, but only
// if inst is still the one on record — guarding against releasing a newer
// instance that has already taken key's place.
func (r *chatRegistry) release(key string, inst *instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live[key] == inst {
		delete(r.live, key)
	}
}
