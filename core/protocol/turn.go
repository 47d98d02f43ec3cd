// Package protocol defines the conversation turn model shared across the
// converse subsystems.
package protocol

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
)

// IsValid reports whether s names a known role.
func IsValid(s string) bool {
	switch Role(s) {
	case RoleSystem, RoleHuman, RoleAI:
		return true
	}
	return false
}

// Turn is a single role-tagged message in a conversation. A Turn is
// immutable once created; histories and prompts are ordered []Turn slices.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTurn creates a Turn with the given role and content.
//
// Example:
//
//	turn := protocol.NewTurn(protocol.RoleHuman, "Hello, world!")
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}

// System creates a system-instruction Turn.
func System(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// Human creates a user-input Turn.
func Human(content string) Turn {
	return Turn{Role: RoleHuman, Content: content}
}

// AI creates an assistant-reply Turn.
func AI(content string) Turn {
	return Turn{Role: RoleAI, Content: content}
}
