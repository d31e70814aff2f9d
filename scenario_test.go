package canoe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeStream struct {
	updates []Update
	i       int
}

func (f *fakeStream) Next(ctx context.Context) (Update, bool) {
	select {
	case <-ctx.Done():
		return Update{}, false
	default:
	}
	if f.i >= len(f.updates) {
		return Update{}, false
	}
	u := f.updates[f.i]
	f.i++
	return u, true
}

func textUpdate(chatID, userID int64, text string) Update {
	return Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{ID: userID},
		},
	}
}

// greetingScenario is the literal worked example from §8.1: start(command
// "hi"), greet, wait for a name, greet by name.
func greetingScenario(sent *[]string) Scenario[Unit] {
	return Bind(Start(Command("hi")), func(*Message) Scenario[Unit] {
		return Bind(Eval(func(context.Context) (Unit, error) {
			*sent = append(*sent, "Hello. What's your name?")
			return Unit{}, nil
		}), func(Unit) Scenario[Unit] {
			return Bind(Next(Text()), func(name string) Scenario[Unit] {
				return Eval(func(context.Context) (Unit, error) {
					*sent = append(*sent, "Nice to meet you, "+name)
					return Unit{}, nil
				})
			})
		})
	})
}

func TestGreetingScenario(t *testing.T) {
	var sent []string
	s := greetingScenario(&sent)
	stream := &fakeStream{updates: []Update{
		textUpdate(42, 1, "/hi"),
		textUpdate(42, 1, "Alice"),
	}}

	_, ok, err := Run(context.Background(), s, stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected scenario to complete")
	}
	want := []string{"Hello. What's your name?", "Nice to meet you, Alice"}
	if fmt.Sprint(sent) != fmt.Sprint(want) {
		t.Fatalf("sent = %v, want %v", sent, want)
	}
}

func TestGreetingScenarioFallThrough(t *testing.T) {
	var sent []string
	s := greetingScenario(&sent)
	stream := &fakeStream{updates: []Update{
		textUpdate(42, 1, "/hi"),
		textUpdate(42, 1, "/other"),
	}}

	_, ok, err := Run(context.Background(), s, stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected scenario to fall through")
	}
	want := []string{"Hello. What's your name?"}
	if fmt.Sprint(sent) != fmt.Sprint(want) {
		t.Fatalf("sent = %v, want %v", sent, want)
	}
}

func TestStartFallsThroughOnExhaustedStream(t *testing.T) {
	s := Start(Command("hi"))
	stream := &fakeStream{}
	_, ok, err := Run(context.Background(), s, stream)
	if err != nil || ok {
		t.Fatalf("expected silent fall-through, got ok=%v err=%v", ok, err)
	}
}

func TestNextFallsThroughOnMismatch(t *testing.T) {
	s := Next(Command("hi"))
	stream := &fakeStream{updates: []Update{textUpdate(1, 1, "not a command")}}
	_, ok, err := Run(context.Background(), s, stream)
	if err != nil || ok {
		t.Fatalf("expected fall-through, got ok=%v err=%v", ok, err)
	}
}

func TestEvalRaisesOnError(t *testing.T) {
	wantErr := errors.New("boom")
	s := Eval(func(context.Context) (Unit, error) { return Unit{}, wantErr })
	_, ok, err := Run[Unit](context.Background(), s, &fakeStream{})
	if ok {
		t.Fatal("expected no value")
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestHandleErrorWithRecovers(t *testing.T) {
	wantErr := errors.New("boom")
	s := HandleErrorWith(
		Raise[string](wantErr),
		func(err error) Scenario[string] { return Pure("recovered: " + err.Error()) },
	)
	v, ok, err := Run(context.Background(), s, &fakeStream{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || v != "recovered: boom" {
		t.Fatalf("v=%q ok=%v", v, ok)
	}
}

func TestAttemptCapturesError(t *testing.T) {
	wantErr := errors.New("boom")
	s := Attempt(Raise[string](wantErr))
	v, ok, err := Run(context.Background(), s, &fakeStream{})
	if err != nil {
		t.Fatalf("Attempt must not propagate: %v", err)
	}
	if !ok {
		t.Fatal("expected Attempt to produce a value")
	}
	if v.Err == nil || v.Err.Error() != "boom" {
		t.Fatalf("v.Err = %v", v.Err)
	}
}

func TestAttemptFallsThroughOnFallThrough(t *testing.T) {
	s := Attempt(Next(Command("hi")))
	stream := &fakeStream{updates: []Update{textUpdate(1, 1, "nope")}}
	_, ok, err := Run(context.Background(), s, stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected Attempt to fall through when the wrapped scenario falls through")
	}
}

func TestMonadLeftIdentity(t *testing.T) {
	k := func(a int) Scenario[int] { return Pure(a * 2) }
	left := Bind(Pure(21), k)
	right := k(21)

	lv, lok, lerr := Run(context.Background(), left, &fakeStream{})
	rv, rok, rerr := Run(context.Background(), right, &fakeStream{})
	if lv != rv || lok != rok || lerr != rerr {
		t.Fatalf("left=(%v,%v,%v) right=(%v,%v,%v)", lv, lok, lerr, rv, rok, rerr)
	}
}

func TestMonadRightIdentity(t *testing.T) {
	s := Pure(7)
	left := Bind(s, Pure[int])
	lv, lok, lerr := Run(context.Background(), left, &fakeStream{})
	rv, rok, rerr := Run(context.Background(), s, &fakeStream{})
	if lv != rv || lok != rok || lerr != rerr {
		t.Fatalf("left=(%v,%v,%v) right=(%v,%v,%v)", lv, lok, lerr, rv, rok, rerr)
	}
}

func TestMonadAssociativity(t *testing.T) {
	f := func(a int) Scenario[int] { return Pure(a + 1) }
	g := func(a int) Scenario[int] { return Pure(a * 10) }

	s := Pure(3)
	left := Bind(Bind(s, f), g)
	right := Bind(s, func(a int) Scenario[int] { return Bind(f(a), g) })

	lv, _, _ := Run(context.Background(), left, &fakeStream{})
	rv, _, _ := Run(context.Background(), right, &fakeStream{})
	if lv != rv {
		t.Fatalf("left=%v right=%v", lv, rv)
	}
}

func TestHandleErrorLaws(t *testing.T) {
	wantErr := errors.New("e")
	recover := func(err error) Scenario[int] { return Pure(99) }

	raised := HandleErrorWith(Raise[int](wantErr), recover)
	rv, rok, rerr := Run(context.Background(), raised, &fakeStream{})
	if rerr != nil || !rok || rv != 99 {
		t.Fatalf("handleErrorWith(raise(e), r) = (%v,%v,%v), want (99,true,nil)", rv, rok, rerr)
	}

	pure := HandleErrorWith(Pure(5), recover)
	pv, pok, perr := Run(context.Background(), pure, &fakeStream{})
	if perr != nil || !pok || pv != 5 {
		t.Fatalf("handleErrorWith(pure(a), r) = (%v,%v,%v), want (5,true,nil)", pv, pok, perr)
	}
}

func TestPerChatIsolationViaIndependentStreams(t *testing.T) {
	// Each instance gets its own stream; the scenario itself has no notion
	// of "other chats". This test exercises running the same Scenario value
	// twice concurrently against disjoint streams (§3 invariant).
	var sentA, sentB []string
	sA := greetingScenario(&sentA)
	sB := greetingScenario(&sentB)

	streamA := &fakeStream{updates: []Update{textUpdate(1, 1, "/hi"), textUpdate(1, 1, "Anna")}}
	streamB := &fakeStream{updates: []Update{textUpdate(2, 2, "/hi"), textUpdate(2, 2, "Ben")}}

	done := make(chan struct{}, 2)
	go func() { Run(context.Background(), sA, streamA); done <- struct{}{} }()
	go func() { Run(context.Background(), sB, streamB); done <- struct{}{} }()
	<-done
	<-done

	if fmt.Sprint(sentA) != fmt.Sprint([]string{"Hello. What's your name?", "Nice to meet you, Anna"}) {
		t.Fatalf("sentA = %v", sentA)
	}
	if fmt.Sprint(sentB) != fmt.Sprint([]string{"Hello. What's your name?", "Nice to meet you, Ben"}) {
		t.Fatalf("sentB = %v", sentB)
	}
}
