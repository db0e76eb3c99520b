package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation"
	"github.com/fekuna/omnipos-marketplace-service/internal/recommendation/dto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ViewListener struct {
	consumer MessageReader
	uc       recommendation.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewViewListener(consumer MessageReader, uc recommendation.UseCase, logger logger.ZapLogger) *ViewListener {
	return &ViewListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *ViewListener) Start(ctx context.Context) {
	l.logger.Info("Starting category view listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping category view listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *ViewListener) processMessage(ctx context.Context, value []byte) {
	var event broker.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	// The topic also carries ProductListed.
	if event.EventType != dto.EventCategoryViewed {
		return
	}

	var payload dto.CategoryViewedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal CategoryViewed payload",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return
	}
	if payload.UserID == "" || payload.CategoryID == "" {
		l.logger.Warn("Dropping incomplete CategoryViewed event", zap.String("event_id", event.EventID))
		return
	}

	if err := l.uc.TrackCategoryView(ctx, payload.UserID, payload.CategoryID); err != nil {
		l.logger.Error("Failed to track category view",
			zap.String("event_id", event.EventID),
			zap.String("user_id", payload.UserID),
			zap.String("category_id", payload.CategoryID),
			zap.Error(err),
		)
	}
}
