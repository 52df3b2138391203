package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"banortesmart/backend/internal/store"
)

type replierFunc func(ctx context.Context, question string) (Answer, error)

func (f replierFunc) Reply(ctx context.Context, question string) (Answer, error) {
	return f(ctx, question)
}

func TestConversationSeedsGreeting(t *testing.T) {
	conversation := NewConversation(NewController(defaultCatalog(t), nil, time.Second), store.NewMemory())

	history, err := conversation.History(context.Background(), "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Content != Greeting || history[0].Role != store.RoleAssistant {
		t.Fatalf("expected greeting only, got %+v", history)
	}

	again, err := conversation.History(context.Background(), "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(again) != 1 {
		t.Fatalf("greeting must be seeded once, got %d messages", len(again))
	}
}

func TestConversationSendAppendsTurn(t *testing.T) {
	messages := store.NewMemory()
	conversation := NewConversation(NewController(defaultCatalog(t), nil, time.Second), messages)

	turn, err := conversation.Send(context.Background(), "s1", "  ¿Cuánto gasté en agua?  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if turn.Question.Content != "¿Cuánto gasté en agua?" || turn.Question.Role != store.RoleUser {
		t.Fatalf("unexpected question message: %+v", turn.Question)
	}
	if turn.Answer.Rule != "water_spend" || turn.Answer.Source != string(SourceRules) {
		t.Fatalf("unexpected answer message: %+v", turn.Answer)
	}

	history, _ := messages.List(context.Background(), "s1")
	if len(history) != 3 {
		t.Fatalf("expected greeting, question, answer; got %d messages", len(history))
	}
	if history[0].Content != Greeting || history[1].ID != turn.Question.ID || history[2].ID != turn.Answer.ID {
		t.Fatalf("transcript out of order: %+v", history)
	}
}

func TestConversationRejectsEmptyQuestionWithoutAppending(t *testing.T) {
	messages := store.NewMemory()
	conversation := NewConversation(NewController(defaultCatalog(t), nil, time.Second), messages)

	if _, err := conversation.Send(context.Background(), "s1", "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
	history, _ := messages.List(context.Background(), "s1")
	if len(history) != 0 {
		t.Fatalf("nothing should be appended, got %+v", history)
	}
}

func TestConversationSingleTurnInFlightPerSession(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	replier := replierFunc(func(_ context.Context, question string) (Answer, error) {
		if question == "lenta" {
			close(started)
			<-unblock
		}
		return Answer{Text: "ok", Source: SourceRules, Rule: FallbackRuleName}, nil
	})
	conversation := NewConversation(replier, store.NewMemory())

	done := make(chan error, 1)
	go func() {
		_, err := conversation.Send(context.Background(), "s1", "lenta")
		done <- err
	}()
	<-started

	if _, err := conversation.Send(context.Background(), "s1", "otra"); !errors.Is(err, ErrTurnInProgress) {
		t.Fatalf("expected ErrTurnInProgress, got %v", err)
	}
	if _, err := conversation.Send(context.Background(), "s2", "otra"); err != nil {
		t.Fatalf("other sessions must not be blocked: %v", err)
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if _, err := conversation.Send(context.Background(), "s1", "otra"); err != nil {
		t.Fatalf("session must accept turns after completion: %v", err)
	}
}

func TestConversationTagsReplyContextWithSession(t *testing.T) {
	var seen string
	conversation := NewConversation(replierFunc(func(ctx context.Context, _ string) (Answer, error) {
		seen = sessionIDFrom(ctx)
		return Answer{Text: "ok", Source: SourceRules, Rule: FallbackRuleName}, nil
	}), store.NewMemory())

	if _, err := conversation.Send(context.Background(), "s-42", "hola"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if seen != "s-42" {
		t.Fatalf("expected session id in reply context, got %q", seen)
	}
}

func TestConversationRecordsApologyWhenReplyFails(t *testing.T) {
	messages := store.NewMemory()
	conversation := NewConversation(replierFunc(func(context.Context, string) (Answer, error) {
		return Answer{}, errors.New("loading summaries: electricity: at least two weeks are required")
	}), messages)

	turn, err := conversation.Send(context.Background(), "s1", "hola")
	if err != nil {
		t.Fatalf("a failed reply must not fail the turn: %v", err)
	}
	if turn.Answer.Content != ErrorReply || turn.Answer.Role != store.RoleAssistant || turn.Answer.Rule != ErrorRuleName {
		t.Fatalf("unexpected answer message: %+v", turn.Answer)
	}

	history, _ := messages.List(context.Background(), "s1")
	if len(history) != 3 || history[2].Content != ErrorReply {
		t.Fatalf("transcript must end with the apology, got %+v", history)
	}
}

func TestConversationSeedsGreetingOncePerSessionConcurrently(t *testing.T) {
	messages := store.NewMemory()
	conversation := NewConversation(NewController(defaultCatalog(t), nil, time.Second), messages)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessionID := "s" + string(rune('a'+i%2))
			if _, err := conversation.History(context.Background(), sessionID); err != nil {
				t.Errorf("history %s: %v", sessionID, err)
			}
		}(i)
	}
	wg.Wait()

	for _, sessionID := range []string{"sa", "sb"} {
		history, _ := messages.List(context.Background(), sessionID)
		if len(history) != 1 {
			t.Fatalf("%s: expected one greeting, got %d messages", sessionID, len(history))
		}
	}
	if len(conversation.seeding) != 0 {
		t.Fatalf("seeding locks must be released, %d left", len(conversation.seeding))
	}
}
