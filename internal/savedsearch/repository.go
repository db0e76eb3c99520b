package savedsearch

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, s *model.SavedSearch) error
	// ListByUser returns the user's searches, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.SavedSearch, error)
	// Delete removes the search only when userID owns it and reports whether
	// a row was removed.
	Delete(ctx context.Context, userID, id string) (bool, error)
}
