// Package tracker hands category views to the recommendation store, either
// through the catalog topic or directly.
package tracker

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation"
	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation/dto"
	"github.com/google/uuid"
)

type Publisher interface {
	Publish(ctx context.Context, key, eventID, eventType string, payload interface{}) error
}

// EventTracker publishes CategoryViewed keyed by user, so one user's views
// are applied in order by the listener.
type EventTracker struct {
	publisher Publisher
}

func NewEventTracker(p Publisher) *EventTracker {
	return &EventTracker{publisher: p}
}

func (t *EventTracker) TrackCategoryView(ctx context.Context, userID, categoryID string) error {
	return t.publisher.Publish(ctx, userID, uuid.New().String(), dto.EventCategoryViewed, dto.CategoryViewedPayload{
		UserID:     userID,
		CategoryID: categoryID,
	})
}

// Direct records views synchronously when no broker is configured.
type Direct struct {
	uc recommendation.UseCase
}

func NewDirect(uc recommendation.UseCase) *Direct {
	return &Direct{uc: uc}
}

func (t *Direct) TrackCategoryView(ctx context.Context, userID, categoryID string) error {
	return t.uc.TrackCategoryView(ctx, userID, categoryID)
}
