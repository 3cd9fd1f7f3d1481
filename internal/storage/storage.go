// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/blinkforge/blinkforge/internal/storage/models"
)

// Storage defines the persistence operations the service needs. The only
// persisted entity is the token activation record.
type Storage interface {
	// GetToken returns the record for address, or (nil, nil) when absent.
	GetToken(ctx context.Context, address string) (*models.Token, error)

	// CreateToken inserts a new record.
	CreateToken(ctx context.Context, token *models.Token) error

	// SetTokenActive flips the active flag on an existing record.
	SetTokenActive(ctx context.Context, address string, active bool) error

	// RunMigrations brings the schema up to date.
	RunMigrations() error
}
