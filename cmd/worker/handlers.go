package main

import (
	"context"
	"time"

	"github.com/turtacn/MRM-Billing/internal/application/reporting"
	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

const defaultHandlerTimeout = 5 * time.Minute

type summaryInvalidator interface {
	Invalidate(ctx context.Context, month domainbilling.Month, fyStart int) error
}

type monthPublisher interface {
	PublishMonth(ctx context.Context, month domainbilling.Month, fyStart int, kinds ...reporting.Kind) ([]*reporting.PublishResult, error)
}

// monthRefresher reacts to entry saved and deleted events: it drops the
// cached summary of the entry's month and republishes that month's exports.
// Either dependency may be nil.
type monthRefresher struct {
	summaries summaryInvalidator
	exports   monthPublisher
	timeout   time.Duration
	logger    logging.Logger
}

func newMonthRefresher(summaries summaryInvalidator, exports monthPublisher, logger logging.Logger) *monthRefresher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &monthRefresher{summaries: summaries, exports: exports, timeout: defaultHandlerTimeout, logger: logger}
}

// Handle is a kafka.MessageHandler.
func (h *monthRefresher) Handle(ctx context.Context, msg *kafka.Message) error {
	env, payload, err := kafka.DecodeEntryEvent(msg)
	if err != nil {
		h.logger.Warn("undecodable entry event", logging.String("topic", msg.Topic), logging.Int64("offset", msg.Offset), logging.Err(err))
		return err
	}
	key := payload.Key()
	log := h.logger.With(logging.EntryKey(key), logging.String("event_type", env.EventType))

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if h.summaries != nil {
		if err := h.summaries.Invalidate(ctx, key.Month, key.FYStart); err != nil {
			log.Warn("failed to invalidate month summary", logging.Err(err))
		}
	}
	if h.exports == nil {
		log.Debug("exports disabled, event acknowledged")
		return nil
	}

	results, err := h.exports.PublishMonth(ctx, key.Month, key.FYStart)
	if err != nil {
		log.Error("failed to refresh month exports", logging.Err(err))
		return err
	}
	log.Info("month exports refreshed", logging.Int("exports", len(results)))
	return nil
}

//Personal.AI order the ending
