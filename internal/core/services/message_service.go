package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type messageService struct {
	BaseService
	messages portsrepo.MessageRepositoryFacade
	users    portsrepo.UserReader
	validate *validator.Validate
}

// MessageServiceOption is a functional option for configuring the message service
type MessageServiceOption func(*messageService)

// WithMessageClock replaces the service clock.
func WithMessageClock(now func() time.Time) MessageServiceOption {
	return func(s *messageService) { s.now = now }
}

// NewMessageService creates the client thread service.
func NewMessageService(messages portsrepo.MessageRepositoryFacade, users portsrepo.UserReader, options ...MessageServiceOption) portssvc.MessageSvcFacade {
	s := &messageService{
		BaseService: newBaseService(),
		messages:    messages,
		users:       users,
		validate:    validator.New(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ portssvc.MessageSvcFacade = (*messageService)(nil)

func (s *messageService) Send(ctx context.Context, caller domain.Principal, req dto.SendMessageRequest) (*domain.Message, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if !caller.CanAccessClient(req.ClientID) {
		return nil, apperrors.ErrForbidden
	}

	senderName := ""
	if sender, err := s.users.FindUserByID(ctx, caller.UserID); err == nil {
		senderName = sender.Name
		if senderName == "" {
			senderName = sender.Email
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	attachments := req.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	now := s.Now()
	role := caller.Role.MessageRole()
	msg := domain.Message{
		ID:          uuid.NewString(),
		ClientID:    req.ClientID,
		SenderID:    caller.UserID,
		SenderRole:  role,
		SenderName:  senderName,
		Subject:     req.Subject,
		Content:     req.Content,
		Attachments: attachments,
		Timestamps:  domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.messages.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	if err := s.messages.AppendClientMessageID(ctx, req.ClientID, msg.ID); err != nil {
		return nil, fmt.Errorf("failed to index message: %w", err)
	}
	if _, err := s.messages.AdjustUnread(ctx, role.Counterpart(), req.ClientID, 1); err != nil {
		return nil, fmt.Errorf("failed to update unread counter: %w", err)
	}

	s.LogInfo(ctx, "Message sent",
		slog.String("message_id", msg.ID),
		slog.String("client_id", req.ClientID),
		slog.String("sender_role", string(role)))
	return &msg, nil
}

func (s *messageService) ListForClient(ctx context.Context, caller domain.Principal, clientID string) ([]domain.Message, error) {
	if !caller.CanAccessClient(clientID) {
		return nil, apperrors.ErrForbidden
	}

	ids, err := s.messages.ListClientMessageIDs(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		msg, err := s.messages.FindMessageByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "Thread references a missing message", slog.String("message_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *messageService) UnreadCount(ctx context.Context, caller domain.Principal, clientID string) (int, error) {
	if !caller.CanAccessClient(clientID) {
		return 0, apperrors.ErrForbidden
	}
	return s.messages.UnreadCount(ctx, caller.Role.MessageRole(), clientID)
}

func (s *messageService) MarkRead(ctx context.Context, caller domain.Principal, messageID, clientID string) (bool, error) {
	if !caller.CanAccessClient(clientID) {
		return false, apperrors.ErrForbidden
	}

	reader := caller.Role.MessageRole()
	changed, err := s.messages.UpdateMessage(ctx, messageID, func(m *domain.Message) (bool, error) {
		// Only the recipient's side reads a message; the sender's counter never held it.
		if m.ClientID != clientID || m.IsRead || m.SenderRole == reader {
			return false, nil
		}
		m.IsRead = true
		m.UpdatedAt = s.Now()
		return true, nil
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	if _, err := s.messages.AdjustUnread(ctx, reader, clientID, -1); err != nil {
		return true, fmt.Errorf("failed to update unread counter: %w", err)
	}
	return true, nil
}

func (s *messageService) Delete(ctx context.Context, caller domain.Principal, messageID, clientID string) error {
	if !caller.CanAccessClient(clientID) {
		return apperrors.ErrForbidden
	}

	msg, err := s.messages.FindMessageByID(ctx, messageID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		// The thread may still point at it.
		return s.messages.RemoveClientMessageID(ctx, clientID, messageID)
	case err != nil:
		return err
	}
	if msg.ClientID != clientID {
		return fmt.Errorf("%w: message %s is not in this thread", apperrors.ErrNotFound, messageID)
	}
	if !caller.IsStaff() && msg.SenderID != caller.UserID {
		return apperrors.ErrForbidden
	}

	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	if err := s.messages.RemoveClientMessageID(ctx, clientID, messageID); err != nil {
		return err
	}
	s.LogInfo(ctx, "Message deleted", slog.String("message_id", messageID), slog.String("client_id", clientID))
	return nil
}
