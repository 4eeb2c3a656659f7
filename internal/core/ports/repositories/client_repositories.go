package repositories

import (
	"context"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
)

// ClientReader defines read operations for client records.
type ClientReader interface {
	// GetClient loads a client and repairs its filings. When the stored filings had to be
	// corrected the returned notice is non-nil; the corrected list is written back at most once.
	GetClient(ctx context.Context, clientID string) (*domain.Client, *domain.RepairNotice, error)

	// ListClients returns every client with filings repaired in memory only.
	ListClients(ctx context.Context) ([]domain.Client, error)
}

// ClientWriter defines write operations for client records.
type ClientWriter interface {
	// CreateClient stores a new client. It fails with apperrors.ErrDuplicate when the id is taken.
	CreateClient(ctx context.Context, client domain.Client) error

	// UpdateClient applies mutate to the latest stored client and writes it back with
	// compare-and-swap, retrying on concurrent writes. Returns apperrors.ErrConflict when retries run out.
	UpdateClient(ctx context.Context, clientID string, mutate func(*domain.Client) error) (*domain.Client, error)
}

// ClientRepositoryFacade combines all client-related repository interfaces.
type ClientRepositoryFacade interface {
	ClientReader
	ClientWriter
}
