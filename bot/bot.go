// Package bot drives a single update source out to many concurrently
// running scenario instances, enforcing at most one live instance per
// (scenario, chat) and cleaning up after a scenario ends or falls through.
package bot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jacke/canoe"
	"github.com/jacke/canoe/internal/telemetry"
)

// Registration pairs a scenario with the name telemetry and logs identify
// it by.
type Registration struct {
	Name     string
	Scenario canoe.Scenario[canoe.Unit]
}

// Bot fans a single update source out to every registered scenario.
type Bot struct {
	registrations []Registration
	logger        *slog.Logger
	telemetry     *telemetry.Provider
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the structured logger scenario errors are reported on.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// WithTelemetry attaches an already-initialized telemetry provider. Without
// one, Bot instruments itself with no-op tracing and metrics.
func WithTelemetry(p *telemetry.Provider) Option {
	return func(b *Bot) { b.telemetry = p }
}

// New builds a Bot driving the given scenario registrations. Registration
// is fixed for the Bot's lifetime — there is no API to add or remove a
// scenario once Run has started.
func New(registrations []Registration, opts ...Option) *Bot {
	b := &Bot{registrations: registrations, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if b.telemetry == nil {
		noop, _ := telemetry.Init(context.Background(), telemetry.Config{})
		b.telemetry = noop
	}
	return b
}

// Run drives every registered scenario against updates until ctx is
// cancelled or updates is closed, and returns a channel that re-emits each
// update in the same order it arrived on updates — so a caller downstream of
// Run still sees the original sequence, independent of how scenario dispatch
// routed it. The returned channel is closed once every in-flight scenario
// instance has ended, so a caller cancelling ctx for shutdown can rely on
// the channel closing to mean every instance has been given the chance to
// unwind.
func (b *Bot) Run(ctx context.Context, updates <-chan canoe.Update) <-chan canoe.Update {
	out := make(chan canoe.Update)
	go b.run(ctx, updates, out)
	return out
}

func (b *Bot) run(ctx context.Context, updates <-chan canoe.Update, out chan<- canoe.Update) {
	defer close(out)

	tp := newTopic()
	subs := make([]*subscription, len(b.registrations))
	var wg sync.WaitGroup

	for i, reg := range b.registrations {
		sub := tp.subscribe()
		subs[i] = sub
		wg.Add(1)
		go func(reg Registration, sub *subscription) {
			defer wg.Done()
			b.dispatch(ctx, reg, sub)
		}(reg, sub)
	}

loop:
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				break loop
			}
			tp.publish(ctx, u)
			select {
			case out <- u:
			case <-ctx.Done():
				break loop
			}
		case <-ctx.Done():
			break loop
		}
	}

	for _, sub := range subs {
		tp.unsubscribe(sub)
	}
	wg.Wait()
}

// dispatch is one scenario's private view of the broadcast: it reads every
// update, routes it through the scenario's chat registry, and spawns a
// fresh scenario instance whenever routeOrCreate reports one was needed.
// It returns once sub's channel is closed and every instance it started
// has ended.
func (b *Bot) dispatch(ctx context.Context, reg Registration, sub *subscription) {
	registry := newChatRegistry()
	var instances sync.WaitGroup

	for u := range sub.Ch() {
		key := keyFor(u)
		inst, created := registry.routeOrCreate(key, u, func() *instance {
			return &instance{id: uuid.New().String(), queue: newQueue()}
		})
		if !created {
			b.telemetry.Metrics.TriggersSkipped.Add(ctx, 1)
			continue
		}

		instances.Add(1)
		go func(inst *instance, key string, chatID int64) {
			defer instances.Done()
			b.runInstance(ctx, reg, inst, key, chatID, registry)
		}(inst, key, chatIDOrZero(u))
	}

	instances.Wait()
}

// runInstance drives one scenario instance to completion, reporting
// telemetry and releasing its registry slot so a later update can start a
// fresh instance for the same key.
func (b *Bot) runInstance(ctx context.Context, reg Registration, inst *instance, key string, chatID int64, registry *chatRegistry) {
	// release must win the registry slot back before the queue's input is
	// closed: routeOrCreate pushes to an existing live instance under the
	// same registry lock, so releasing first guarantees a concurrent update
	// either still reaches this instance (not yet closed) or finds the slot
	// already empty and starts a fresh one — never pushes to a closed queue.
	defer inst.queue.closeInput()
	defer registry.release(key, inst)

	spanCtx, span := telemetry.StartInstanceSpan(ctx, b.telemetry.Tracer, reg.Name, chatID, inst.id)
	defer span.End()

	b.telemetry.Metrics.InstancesActive.Add(spanCtx, 1)
	b.telemetry.Metrics.InstancesStarted.Add(spanCtx, 1)
	defer b.telemetry.Metrics.InstancesActive.Add(spanCtx, -1)
	defer b.telemetry.Metrics.InstancesEnded.Add(spanCtx, 1)

	_, _, err := canoe.Run(spanCtx, reg.Scenario, inst)
	if err != nil {
		b.telemetry.Metrics.ScenarioErrors.Add(spanCtx, 1)
		b.logger.Error("scenario raised an unhandled error",
			"scenario", reg.Name, "chat_id", chatID, "instance", inst.id, "error", err)
	}
}
