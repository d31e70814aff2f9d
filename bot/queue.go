package bot

import (
	"context"

	"github.com/jacke/canoe"
)

// queue is an unbounded, single-producer single-consumer buffer of updates
// feeding one scenario instance. push never blocks waiting for the
// consumer: an internal goroutine grows a slice instead of relying on a
// fixed channel capacity, which is what lets the dispatch loop hand an
// update to a live instance and move straight on to the next one.
type queue struct {
	in  chan canoe.Update
	out chan canoe.Update
}

func newQueue() *queue {
	q := &queue{
		in:  make(chan canoe.Update),
		out: make(chan canoe.Update),
	}
	go q.pump()
	return q
}

func (q *queue) pump() {
	var buf []canoe.Update
	for {
		if len(buf) == 0 {
			u, ok := <-q.in
			if !ok {
				close(q.out)
				return
			}
			buf = append(buf, u)
			continue
		}

		select {
		case u, ok := <-q.in:
			if !ok {
				for _, pending := range buf {
					q.out <- pending
				}
				close(q.out)
				return
			}
			buf = append(buf, u)
		case q.out <- buf[0]:
			buf = buf[1:]
		}
	}
}

// push enqueues u. Safe to call concurrently with next, not with itself
// after closeInput.
func (q *queue) push(u canoe.Update) { q.in <- u }

// closeInput signals that no more updates will be pushed; the queue drains
// whatever is buffered and then closes for reading.
func (q *queue) closeInput() { close(q.in) }

// next implements canoe.Stream.
func (q *queue) next(ctx context.Context) (canoe.Update, bool) {
	select {
	case u, ok := <-q.out:
		return u, ok
	case <-ctx.Done():
		return canoe.Update{}, false
	}
}
