package services

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/dto"
)

// MessageReaderSvc defines read operations on client threads.
type MessageReaderSvc interface {
	// ListForClient returns the thread newest first, skipping ids whose message is gone.
	ListForClient(ctx context.Context, caller domain.Principal, clientID string) ([]domain.Message, error)
	UnreadCount(ctx context.Context, caller domain.Principal, clientID string) (int, error)
}

// MessageWriterSvc defines write operations on client threads.
type MessageWriterSvc interface {
	// Send stores the message and bumps the recipient side's unread counter.
	Send(ctx context.Context, caller domain.Principal, req dto.SendMessageRequest) (*domain.Message, error)

	// MarkRead flips isRead and decrements the caller side's counter. It is a no-op for
	// absent or already read messages and reports whether anything changed.
	MarkRead(ctx context.Context, caller domain.Principal, messageID, clientID string) (bool, error)

	// Delete removes the message and its thread entry. Unread counters are left as they are.
	Delete(ctx context.Context, caller domain.Principal, messageID, clientID string) error
}

// MessageSvcFacade combines all message-related service interfaces
type MessageSvcFacade interface {
	MessageReaderSvc
	MessageWriterSvc
}
