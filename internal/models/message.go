package models

// Role identifies who authored a dialogue turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DialogueTurn is one message of a conversation.
type DialogueTurn struct {
	Role    Role
	Content string
}
