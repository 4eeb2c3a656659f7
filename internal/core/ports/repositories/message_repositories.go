package repositories

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
)

// MessageReader defines read operations for messages and thread indexes.
type MessageReader interface {
	FindMessageByID(ctx context.Context, messageID string) (*domain.Message, error)

	// ListClientMessageIDs returns the ids in the client's thread, in insertion order.
	ListClientMessageIDs(ctx context.Context, clientID string) ([]string, error)

	// UnreadCount returns the unread counter of role for the client thread, 0 when unset.
	UnreadCount(ctx context.Context, role domain.SenderRole, clientID string) (int, error)
}

// MessageWriter defines write operations for messages and thread indexes.
type MessageWriter interface {
	SaveMessage(ctx context.Context, message domain.Message) error

	// UpdateMessage applies mutate under compare-and-swap. mutate reports whether it changed
	// anything; when it did not, nothing is written and UpdateMessage returns false.
	UpdateMessage(ctx context.Context, messageID string, mutate func(*domain.Message) (bool, error)) (bool, error)

	DeleteMessage(ctx context.Context, messageID string) error

	AppendClientMessageID(ctx context.Context, clientID, messageID string) error
	RemoveClientMessageID(ctx context.Context, clientID, messageID string) error

	// AdjustUnread adds delta to the counter, flooring the result at zero, and returns the new value.
	AdjustUnread(ctx context.Context, role domain.SenderRole, clientID string, delta int) (int, error)
}

// MessageRepositoryFacade combines all message-related repository interfaces.
type MessageRepositoryFacade interface {
	MessageReader
	MessageWriter
}
