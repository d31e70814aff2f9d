package canoe

import (
	"context"
	"fmt"
)

// Unit is the value type of a scenario that is run purely for its effects,
// matching the Scenario[Unit] field of bot.Registration.
type Unit struct{}

// Stream is a single-consumer sequence of updates driving one scenario
// instance. Next blocks until an update is available or the stream is
// exhausted; ok=false means no further updates will ever arrive and the
// driving scenario should end.
type Stream interface {
	Next(ctx context.Context) (Update, bool)
}

// node is the internal tagged representation of a Scenario, type-erased to
// `any` so one interpreter can drive an arbitrarily long Bind spine without
// Go needing higher-kinded generics. Scenario[T] is a thin, type-safe
// wrapper around a node tree built by the exported constructors below.
type node interface{ isNode() }

type startNode struct{ expect func(Update) (any, bool) }
type nextNode struct{ expect func(Update) (any, bool) }
type evalNode struct{ run func(context.Context) (any, error) }
type pureNode struct{ value any }
type doneNode struct{}
type raiseNode struct{ err error }
type bindNode struct {
	first node
	k     func(any) node
}
type handleErrorNode struct {
	first   node
	recover func(error) node
}

func (startNode) isNode()       {}
func (nextNode) isNode()        {}
func (evalNode) isNode()        {}
func (pureNode) isNode()        {}
func (doneNode) isNode()        {}
func (raiseNode) isNode()       {}
func (bindNode) isNode()        {}
func (handleErrorNode) isNode() {}

// Scenario describes a suspendable, composable conversational interaction.
// A Scenario value is immutable and freely shareable: running it against
// one update Stream never interferes with a concurrent run against another.
type Scenario[T any] struct {
	n node
}

func erase[T any](e Expect[T]) func(Update) (any, bool) {
	return func(u Update) (any, bool) {
		return e(u)
	}
}

// Start consumes updates from the driving stream until one matches e,
// yielding the match. If the stream ends first, the scenario ends without
// producing a value — a normal fall-through, not an error.
func Start[T any](e Expect[T]) Scenario[T] {
	return Scenario[T]{n: startNode{expect: erase(e)}}
}

// Next consumes exactly one update. If it matches e, yields it; otherwise
// the scenario falls through and ends silently, even if a later update
// would have matched.
func Next[T any](e Expect[T]) Scenario[T] {
	return Scenario[T]{n: nextNode{expect: erase(e)}}
}

// Eval runs a side effect — typically an RPC client call closed over by the
// caller — and yields its result. An error returned by effect raises in
// the scenario.
func Eval[T any](effect func(ctx context.Context) (T, error)) Scenario[T] {
	return Scenario[T]{n: evalNode{run: func(ctx context.Context) (any, error) {
		return effect(ctx)
	}}}
}

// Pure yields v without consuming any update.
func Pure[T any](v T) Scenario[T] {
	return Scenario[T]{n: pureNode{value: v}}
}

// Done terminates the scenario silently; it produces no value and is not
// an error.
func Done[T any]() Scenario[T] {
	return Scenario[T]{n: doneNode{}}
}

// Raise raises err in the scenario. Recoverable via HandleErrorWith.
func Raise[T any](err error) Scenario[T] {
	return Scenario[T]{n: raiseNode{err: err}}
}

// Bind sequences s with a continuation: run s, then feed its value to k to
// produce the next scenario.
func Bind[A, B any](s Scenario[A], k func(A) Scenario[B]) Scenario[B] {
	return Scenario[B]{n: bindNode{
		first: s.n,
		k: func(v any) node {
			return k(v.(A)).n
		},
	}}
}

// Then sequences s with next, discarding s's value.
func Then[A, B any](s Scenario[A], next Scenario[B]) Scenario[B] {
	return Bind(s, func(A) Scenario[B] { return next })
}

// HandleErrorWith runs s; if s raises, runs recover(err) instead of
// propagating the error.
func HandleErrorWith[T any](s Scenario[T], recover func(error) Scenario[T]) Scenario[T] {
	return Scenario[T]{n: handleErrorNode{
		first: s.n,
		recover: func(err error) node {
			return recover(err).n
		},
	}}
}

// Either holds Attempt's result: Err set means s raised (and the error was
// captured rather than propagated); otherwise Value holds s's result. If s
// falls through, Attempt falls through too — a fall-through is not an
// outcome a caller can recover a value from.
type Either[T any] struct {
	Err   error
	Value T
}

// Attempt is a non-raising variant of HandleErrorWith: any error s raises
// is captured in the returned Either instead of propagating.
func Attempt[T any](s Scenario[T]) Scenario[Either[T]] {
	return HandleErrorWith(
		Bind(s, func(v T) Scenario[Either[T]] { return Pure(Either[T]{Value: v}) }),
		func(err error) Scenario[Either[T]] { return Pure(Either[T]{Err: err}) },
	)
}

// Run compiles s into a stream transformer and drives it against stream.
// ok=false means the scenario fell through silently (normal termination,
// not an error). A non-nil err means the scenario raised and no
// HandleErrorWith in s recovered it.
func Run[T any](ctx context.Context, s Scenario[T], stream Stream) (value T, ok bool, err error) {
	v, matched, rerr := interpret(ctx, s.n, stream)
	if matched {
		value, _ = v.(T)
	}
	return value, matched, rerr
}

type frame struct {
	bind    func(any) node
	recover func(error) node
}

// interpret drives cur against stream iteratively, maintaining an explicit
// continuation stack instead of recursing on Go's call stack through Bind
// chains — this keeps long conversations stack-safe.
func interpret(ctx context.Context, cur node, stream Stream) (value any, ok bool, err error) {
	var stack []frame

outer:
	for {
		switch n := cur.(type) {
		case bindNode:
			stack = append(stack, frame{bind: n.k})
			cur = n.first
			continue outer
		case handleErrorNode:
			stack = append(stack, frame{recover: n.recover})
			cur = n.first
			continue outer
		case pureNode:
			value, ok, err = n.value, true, nil
		case doneNode:
			value, ok, err = nil, false, nil
		case raiseNode:
			value, ok, err = nil, false, n.err
		case evalNode:
			v, everr := n.run(ctx)
			value, ok, err = v, everr == nil, everr
		case startNode:
			value, ok, err = scan(ctx, stream, n.expect, true)
		case nextNode:
			value, ok, err = scan(ctx, stream, n.expect, false)
		default:
			panic(fmt.Sprintf("canoe: unknown scenario node %T", cur))
		}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch {
			case err != nil && f.recover != nil:
				cur = f.recover(err)
				err = nil
				continue outer
			case err != nil:
				continue // propagate the error past intervening Bind frames
			case !ok:
				continue // propagate fall-through past every frame
			case f.bind != nil:
				cur = f.bind(value)
				continue outer
			default:
				continue // a recover frame we didn't need; value passes through
			}
		}
		return value, ok, err
	}
}

// scan drives an Expect against stream. scanUntilMatch true (Start) keeps
// pulling updates until one matches or the stream ends; false (Next)
// consumes exactly one update.
func scan(ctx context.Context, stream Stream, expect func(Update) (any, bool), scanUntilMatch bool) (any, bool, error) {
	for {
		u, ok := stream.Next(ctx)
		if !ok {
			return nil, false, nil
		}
		if v, matched := expect(u); matched {
			return v, true, nil
		}
		if !scanUntilMatch {
			return nil, false, nil
		}
	}
}
