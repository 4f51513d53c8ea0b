package chat

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AssistantName is how the assistant introduces itself and is shown in transcripts.
const AssistantName = "RBB Sathi"

// Message is one entry of the conversation log. Messages are never edited
// after being appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is a message as sent to the remote assistant: no timestamp.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Resolver answers an utterance locally when one of its rules matches.
type Resolver interface {
	Resolve(utterance string) (string, bool)
}

// Assistant completes a conversation remotely.
type Assistant interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

const (
	WelcomeMessage = "Namaste! 🙏 I am **RBB Sathi**, your AI banking assistant. How can I help you today?\n\nYou can ask me about:\n• Account balance\n• Transaction history\n• Loan status\n• Lodge a complaint"

	// EmptyReplyMessage replaces a successful but empty remote reply.
	EmptyReplyMessage = "Sorry, I could not process your request. Please try again."

	// ApologyMessage replaces any failed remote call.
	ApologyMessage = "I apologize for the inconvenience. Please try again or call our helpline at **1660-01-00001**."
)

// QuickPrompts are offered before the user has said anything.
var QuickPrompts = []string{
	"Check my account balance",
	"Show recent transactions",
	"Loan repayment status",
	"Lodge a complaint",
}
