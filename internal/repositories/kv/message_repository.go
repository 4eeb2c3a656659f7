package kv

import (
	"context"
	"errors"
	"slices"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
)

type messageRepository struct {
	store portsrepo.KVStore
}

func newMessageRepository(store portsrepo.KVStore) *messageRepository {
	return &messageRepository{store: store}
}

var _ portsrepo.MessageRepositoryFacade = (*messageRepository)(nil)

func (r *messageRepository) FindMessageByID(ctx context.Context, messageID string) (*domain.Message, error) {
	msg, _, err := getJSON[domain.Message](ctx, r.store, messageKey(messageID))
	return msg, err
}

func (r *messageRepository) ListClientMessageIDs(ctx context.Context, clientID string) ([]string, error) {
	ids, _, err := getJSON[[]string](ctx, r.store, clientMessagesKey(clientID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, role domain.SenderRole, clientID string) (int, error) {
	count, _, err := getJSON[int](ctx, r.store, unreadKey(role, clientID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return max(*count, 0), nil
}

func (r *messageRepository) SaveMessage(ctx context.Context, message domain.Message) error {
	return createJSON(ctx, r.store, messageKey(message.ID), message)
}

func (r *messageRepository) UpdateMessage(ctx context.Context, messageID string, mutate func(*domain.Message) (bool, error)) (bool, error) {
	_, changed, err := mutateJSON(ctx, r.store, messageKey(messageID), false, mutate)
	return changed, err
}

func (r *messageRepository) DeleteMessage(ctx context.Context, messageID string) error {
	return r.store.Delete(ctx, messageKey(messageID))
}

func (r *messageRepository) AppendClientMessageID(ctx context.Context, clientID, messageID string) error {
	_, _, err := mutateJSON(ctx, r.store, clientMessagesKey(clientID), true, func(ids *[]string) (bool, error) {
		if slices.Contains(*ids, messageID) {
			return false, nil
		}
		*ids = append(*ids, messageID)
		return true, nil
	})
	return err
}

func (r *messageRepository) RemoveClientMessageID(ctx context.Context, clientID, messageID string) error {
	_, _, err := mutateJSON(ctx, r.store, clientMessagesKey(clientID), false, func(ids *[]string) (bool, error) {
		before := len(*ids)
		*ids = slices.DeleteFunc(*ids, func(id string) bool { return id == messageID })
		return len(*ids) != before, nil
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

func (r *messageRepository) AdjustUnread(ctx context.Context, role domain.SenderRole, clientID string, delta int) (int, error) {
	count, _, err := mutateJSON(ctx, r.store, unreadKey(role, clientID), true, func(n *int) (bool, error) {
		next := max(*n+delta, 0)
		if next == *n {
			return false, nil
		}
		*n = next
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return *count, nil
}
