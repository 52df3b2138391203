package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/logging"
)

var ErrEmptyQuestion = errors.New("question is empty")

type Source string

const (
	SourceAI    Source = "ai"
	SourceRules Source = "rules"
)

type Answer struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
	Rule   string `json:"rule,omitempty"`
	Model  string `json:"model,omitempty"`
}

// SummarySource yields both utilities' summaries. *consumption.Catalog
// implements it.
type SummarySource interface {
	Summaries() (electricity, water consumption.Summary, err error)
}

const defaultProviderTimeout = 20 * time.Second

// Controller runs one conversational turn: provider first when one is
// configured, the rule table otherwise or on any provider failure.
type Controller struct {
	summaries SummarySource
	generator Generator
	responder *Responder
	timeout   time.Duration
}

// NewController accepts a nil generator, in which case every turn is
// answered by the rule table without touching the network.
func NewController(summaries SummarySource, generator Generator, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Controller{
		summaries: summaries,
		generator: generator,
		responder: DefaultResponder(),
		timeout:   timeout,
	}
}

func (c *Controller) Reply(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	electricity, water, err := c.summaries.Summaries()
	if err != nil {
		return Answer{}, fmt.Errorf("loading summaries: %w", err)
	}

	if c.generator != nil {
		answer, err := c.generate(ctx, BuildPrompt(electricity, water, question))
		if err == nil {
			return answer, nil
		}
		if errors.Is(err, ErrProviderNotConfigured) {
			logging.Debugw("generative provider not configured, using rules")
		} else {
			logging.Warnw("generative provider failed, using rules",
				"session_id", sessionIDFrom(ctx),
				"kind", FailureKind(err),
				"status", StatusCode(err),
				"error", err,
			)
		}
	}

	reply := c.responder.Respond(question, electricity, water)
	return Answer{Text: reply.Text, Source: SourceRules, Rule: reply.Rule}, nil
}

func (c *Controller) generate(ctx context.Context, prompt string) (Answer, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	generation, err := c.generator.Generate(callCtx, prompt)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: generation.Text, Source: SourceAI, Model: generation.Model}, nil
}

// FailureKind names the class of a provider error for logs.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrProviderStatus):
		return "status"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrProviderTransport):
		return "transport"
	case errors.Is(err, ErrProviderNotConfigured):
		return "not_configured"
	default:
		return "unknown"
	}
}
