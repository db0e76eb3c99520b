package recommendation

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type Repository interface {
	// RecordView upserts the user's view of a category and trims the history
	// to the keep most recent categories, atomically.
	RecordView(ctx context.Context, view *model.CategoryView, keep int) error
	// RecentCategories returns the user's most recently viewed active
	// categories, newest first.
	RecentCategories(ctx context.Context, userID string, limit int) ([]model.Category, error)
}
