package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	"github.com/SscSPs/tax_filing_app/internal/core/repair"
	json "github.com/goccy/go-json"
)

// clientRecord is the stored shape of a client. Filings stay raw until repaired.
type clientRecord struct {
	ClientID   string          `json:"id"`
	UserID     string          `json:"userId"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Language   string          `json:"language,omitempty"`
	TaxFilings json.RawMessage `json:"taxFilings"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type clientRepository struct {
	store  portsrepo.KVStore
	logger *slog.Logger
	now    func() time.Time
}

func newClientRepository(store portsrepo.KVStore, logger *slog.Logger, now func() time.Time) *clientRepository {
	return &clientRepository{store: store, logger: logger, now: now}
}

var _ portsrepo.ClientRepositoryFacade = (*clientRepository)(nil)

// decodeClient turns a stored record into a client with repaired filings.
func (r *clientRepository) decodeClient(key string, data []byte) (*domain.Client, repair.Result, error) {
	var rec clientRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, repair.Result{}, fmt.Errorf("failed to decode %q: %w", key, err)
	}

	res, err := repair.FromJSON(rec.TaxFilings, r.now())
	if err != nil {
		// A filing list that is not even an array is treated as empty.
		res = repair.Filings(nil, r.now())
		res.Errors = append(res.Errors, err.Error())
	}

	client := &domain.Client{
		ClientID:   rec.ClientID,
		UserID:     rec.UserID,
		Email:      rec.Email,
		Name:       rec.Name,
		Language:   rec.Language,
		TaxFilings: res.Filings,
		Timestamps: domain.Timestamps{CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt},
	}
	return client, res, nil
}

func (r *clientRepository) load(ctx context.Context, clientID string) (*domain.Client, int64, repair.Result, error) {
	key := clientKey(clientID)
	entry, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, 0, repair.Result{}, err
	}
	client, res, err := r.decodeClient(key, entry.Value)
	if err != nil {
		return nil, 0, repair.Result{}, err
	}
	return client, entry.Version, res, nil
}

func (r *clientRepository) GetClient(ctx context.Context, clientID string) (*domain.Client, *domain.RepairNotice, error) {
	client, version, res, err := r.load(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	if !res.Changed() && res.SafeToPersist() {
		return client, nil, nil
	}

	notice := &domain.RepairNotice{
		RepairedCount: res.RepairedCount,
		DroppedCount:  res.DroppedCount,
		PartialCount:  res.PartialCount,
		Seeded:        res.Seeded,
		Errors:        res.Errors,
	}
	if !res.SafeToPersist() {
		r.logger.Warn("Stored filings have unreadable fields, leaving the record as is",
			slog.String("client_id", clientID),
			slog.Int("partial", res.PartialCount),
			slog.Any("errors", res.Errors))
		return client, notice, nil
	}

	// One write-back attempt per load. A concurrent writer wins and the next load repairs again.
	client.Touch(r.now())
	data, err := json.Marshal(client)
	if err == nil {
		_, err = r.store.CompareAndSwap(ctx, clientKey(clientID), data, version)
	}
	if err != nil {
		r.logger.Warn("Failed to persist repaired filings",
			slog.String("client_id", clientID),
			slog.Int("repaired", res.RepairedCount),
			slog.String("error", err.Error()))
		return client, notice, nil
	}
	notice.Persisted = true
	return client, notice, nil
}

func (r *clientRepository) ListClients(ctx context.Context) ([]domain.Client, error) {
	entries, err := r.store.ListByPrefix(ctx, clientPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]domain.Client, 0, len(entries))
	for _, e := range entries {
		client, _, err := r.decodeClient(e.Key, e.Value)
		if err != nil {
			r.logger.Warn("Skipping undecodable client record", slog.String("key", e.Key), slog.String("error", err.Error()))
			continue
		}
		clients = append(clients, *client)
	}
	return clients, nil
}

func (r *clientRepository) CreateClient(ctx context.Context, client domain.Client) error {
	if client.ClientID == "" {
		return fmt.Errorf("%w: client id is required", apperrors.ErrValidation)
	}
	return createJSON(ctx, r.store, clientKey(client.ClientID), client)
}

func (r *clientRepository) UpdateClient(ctx context.Context, clientID string, mutate func(*domain.Client) error) (*domain.Client, error) {
	key := clientKey(clientID)
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		client, version, res, err := r.load(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if !res.SafeToPersist() {
			return nil, fmt.Errorf("%w: %s holds filings with unreadable fields, refusing to overwrite them", apperrors.ErrConflict, key)
		}
		if err := mutate(client); err != nil {
			return nil, err
		}
		client.Touch(r.now())

		data, err := json.Marshal(client)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		if _, err := r.store.CompareAndSwap(ctx, key, data, version); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("%w: %s changed concurrently, giving up after %d attempts", apperrors.ErrConflict, key, maxCASAttempts)
}
