// Package chat runs the retrieval-augmented conversation loop.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
	"github.com/xhad/docchat/pkg/logger"
)

const (
	DefaultSentinel     = "$$$"
	DefaultSystemPrompt = "You are a helpful assistant answering questions about the user's documents. " +
		"Use the additional context when it is relevant and say so when it does not contain the answer."
)

// ErrTerminated is returned by Submit once the conversation has ended.
var ErrTerminated = errors.New("conversation terminated")

type State int

const (
	AwaitingInput State = iota
	Retrieving
	Generating
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Retrieving:
		return "retrieving"
	case Generating:
		return "generating"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.Chunk, error)
}

type Config struct {
	SystemPrompt string
	Sentinel     string
	History      HistoryConfig
}

type Reply struct {
	Content    string
	Sources    []models.Chunk
	Terminated bool
}

// Orchestrator is not safe for concurrent use.
type Orchestrator struct {
	retriever Retriever
	provider  types.ChatProvider
	sentinel  string
	history   *History
	state     State
	logger    hclog.Logger
}

func New(retriever Retriever, provider types.ChatProvider, config Config, log hclog.Logger) *Orchestrator {
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	if config.Sentinel == "" {
		config.Sentinel = DefaultSentinel
	}
	return &Orchestrator{
		retriever: retriever,
		provider:  provider,
		sentinel:  config.Sentinel,
		history:   NewHistory(config.SystemPrompt, config.History),
		state:     AwaitingInput,
		logger:    logger.OrNull(log).Named("chat"),
	}
}

func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) History() []models.DialogueTurn {
	return o.history.Turns()
}

// Submit handles one user input. Input equal to the sentinel ends the
// conversation without calling any provider. On failure the history is
// left as it was and the same input may be submitted again.
func (o *Orchestrator) Submit(ctx context.Context, input string) (Reply, error) {
	if o.state == Terminated {
		return Reply{Terminated: true}, ErrTerminated
	}
	if input == o.sentinel {
		o.state = Terminated
		o.logger.Debug("conversation terminated")
		return Reply{Terminated: true}, nil
	}

	o.state = Retrieving
	sources, err := o.retriever.Retrieve(ctx, input)
	if err != nil {
		o.state = AwaitingInput
		return Reply{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	o.state = Generating
	userTurn := models.DialogueTurn{Role: models.RoleUser, Content: Augment(sources, input)}
	content, err := o.provider.Complete(ctx, o.history.Prompt(userTurn))
	if err != nil {
		o.state = AwaitingInput
		return Reply{}, fmt.Errorf("failed to generate reply: %w", err)
	}

	o.history.Append(userTurn, models.DialogueTurn{Role: models.RoleAssistant, Content: content})
	o.state = AwaitingInput
	o.logger.Debug("turn completed", "sources", len(sources), "history", o.history.Len())

	return Reply{Content: content, Sources: sources}, nil
}

// Augment prefixes input with the retrieved chunk texts. Without chunks
// the input is returned unchanged.
func Augment(chunks []models.Chunk, input string) string {
	if len(chunks) == 0 {
		return input
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var b strings.Builder
	b.WriteString("<additional_context>\n")
	b.WriteString(strings.Join(texts, "\n\n"))
	b.WriteString("\n</additional_context>\n\n")
	b.WriteString(input)
	return b.String()
}
