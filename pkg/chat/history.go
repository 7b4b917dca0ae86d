package chat

import (
	"github.com/xhad/docchat/internal/models"
)

const DefaultMaxTurns = 40

// TokenCounter measures the cost of a turn against MaxTokens.
type TokenCounter interface {
	Count(text string) int
}

type HistoryConfig struct {
	// MaxTurns bounds the user and assistant turns kept after the system turn.
	MaxTurns int
	// MaxTokens bounds the whole prompt; 0 disables the budget.
	MaxTokens int
	Counter   TokenCounter
}

// History is the system turn followed by a sliding window of
// user/assistant pairs. Eviction drops the oldest pair first and never
// touches the system turn.
type History struct {
	system models.DialogueTurn
	turns  []models.DialogueTurn
	config HistoryConfig
}

func NewHistory(systemPrompt string, config HistoryConfig) *History {
	if config.MaxTurns <= 0 {
		config.MaxTurns = DefaultMaxTurns
	}
	if config.MaxTurns < 2 {
		config.MaxTurns = 2
	}
	return &History{
		system: models.DialogueTurn{Role: models.RoleSystem, Content: systemPrompt},
		config: config,
	}
}

// Turns returns a copy of the system turn and the current window.
func (h *History) Turns() []models.DialogueTurn {
	out := make([]models.DialogueTurn, 0, len(h.turns)+1)
	out = append(out, h.system)
	return append(out, h.turns...)
}

func (h *History) Len() int {
	return len(h.turns) + 1
}

// Prompt returns the turns to send with pending as the final user turn.
// The stored window is not modified.
func (h *History) Prompt(pending models.DialogueTurn) []models.DialogueTurn {
	window := h.turns
	for len(window) >= 2 && h.overBudget(window, pending.Content) {
		window = window[2:]
	}

	out := make([]models.DialogueTurn, 0, len(window)+2)
	out = append(out, h.system)
	out = append(out, window...)
	return append(out, pending)
}

// Append records a completed exchange and evicts old pairs.
func (h *History) Append(user, assistant models.DialogueTurn) {
	h.turns = append(h.turns, user, assistant)
	for len(h.turns) > h.config.MaxTurns || (len(h.turns) > 2 && h.overBudget(h.turns, "")) {
		h.turns = h.turns[2:]
	}
	h.turns = append([]models.DialogueTurn(nil), h.turns...)
}

func (h *History) overBudget(window []models.DialogueTurn, extra string) bool {
	if h.config.MaxTokens <= 0 || h.config.Counter == nil {
		return false
	}
	total := h.config.Counter.Count(h.system.Content) + h.config.Counter.Count(extra)
	for _, turn := range window {
		total += h.config.Counter.Count(turn.Content)
	}
	return total > h.config.MaxTokens
}
