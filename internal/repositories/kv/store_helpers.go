// Package kv implements the repositories on top of a versioned key-value store.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	json "github.com/goccy/go-json"
)

// maxCASAttempts bounds every read-modify-write loop.
const maxCASAttempts = 3

func clientKey(clientID string) string   { return "client:" + clientID }
func messageKey(messageID string) string { return "message:" + messageID }
func userKey(userID string) string       { return "user:" + userID }
func permissionsKey(userID string) string {
	return "user-permissions:" + userID
}
func clientMessagesKey(clientID string) string {
	return "client_messages:" + clientID
}
func unreadKey(role domain.SenderRole, clientID string) string {
	return "unread_messages:" + string(role) + ":" + clientID
}
func userEmailKey(email string) string {
	return "user-email:" + strings.ToLower(strings.TrimSpace(email))
}

const (
	clientPrefix      = "client:"
	userPrefix        = "user:"
	permissionsPrefix = "user-permissions:"
)

// getJSON loads and decodes key, returning the stored version.
func getJSON[T any](ctx context.Context, store portsrepo.KVStore, key string) (*T, int64, error) {
	entry, err := store.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	var value T
	if err := json.Unmarshal(entry.Value, &value); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return &value, entry.Version, nil
}

// createJSON stores value under a key that must not exist yet.
func createJSON(ctx context.Context, store portsrepo.KVStore, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if _, err := store.CompareAndSwap(ctx, key, data, 0); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, key)
		}
		return err
	}
	return nil
}

// mutateJSON runs a bounded read-modify-compare-and-swap loop on key. mutate reports
// whether it changed the value; unchanged values are not written. When upsert is set an
// absent key starts from the zero value, otherwise apperrors.ErrNotFound is returned.
func mutateJSON[T any](ctx context.Context, store portsrepo.KVStore, key string, upsert bool, mutate func(*T) (bool, error)) (*T, bool, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		value, version, err := getJSON[T](ctx, store, key)
		if errors.Is(err, apperrors.ErrNotFound) && upsert {
			value, version, err = new(T), 0, nil
		}
		if err != nil {
			return nil, false, err
		}

		changed, err := mutate(value)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return value, false, nil
		}

		data, err := json.Marshal(value)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		if _, err := store.CompareAndSwap(ctx, key, data, version); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return nil, false, err
		}
		return value, true, nil
	}
	return nil, false, fmt.Errorf("%w: %s changed concurrently, giving up after %d attempts", apperrors.ErrConflict, key, maxCASAttempts)
}

// always adapts a plain mutation to mutateJSON.
func always[T any](mutate func(*T) error) func(*T) (bool, error) {
	return func(v *T) (bool, error) {
		if err := mutate(v); err != nil {
			return false, err
		}
		return true, nil
	}
}
