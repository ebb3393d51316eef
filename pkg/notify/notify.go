// Package notify fans committed sale notifications out to external consumers.
//
// Publishing happens after the notification has been durably recorded by the
// store, so a failed publish never loses an event: consumers can always catch
// up from the event log.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/internal/metrics"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

// Publisher delivers one notification.
type Publisher interface {
	Publish(ctx context.Context, evt *sale.Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt *sale.Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes notifications to a zap logger.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher that logs every notification at Info.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.Named("events")}
}

func (p *LogPublisher) Publish(_ context.Context, evt *sale.Event) error {
	fields := []zap.Field{
		zap.String("event_id", evt.ID.String()),
		zap.Uint64("seq", evt.Seq),
		zap.String("kind", string(evt.Kind)),
	}
	switch evt.Kind {
	case sale.EventBlacklistChanged:
		fields = append(fields, zap.String("account", evt.Account.Hex()))
		if evt.Blacklisted != nil {
			fields = append(fields, zap.Bool("blacklisted", *evt.Blacklisted))
		}
	case sale.EventConfigChanged:
		if evt.Config != nil {
			fields = append(fields,
				zap.Time("start_time", evt.Config.StartTime),
				zap.Time("end_time", evt.Config.EndTime),
				zap.Uint64("supply_cap", evt.Config.SupplyCap),
				zap.String("unit_price", evt.Config.UnitPrice.String()),
				zap.Uint64("per_account_cap", evt.Config.PerAccountCap),
			)
		}
	case sale.EventAdmissionSucceeded:
		fields = append(fields,
			zap.String("account", evt.Account.Hex()),
			zap.Stringer("token_id", evt.TokenID),
			zap.String("payment", evt.Payment.String()),
		)
	}
	p.logger.Info("sale event", fields...)
	return nil
}

// Instrumented counts publish outcomes per event kind.
type Instrumented struct {
	next Publisher
}

// NewInstrumented wraps next with publish metrics.
func NewInstrumented(next Publisher) *Instrumented {
	return &Instrumented{next: next}
}

func (p *Instrumented) Publish(ctx context.Context, evt *sale.Event) error {
	err := p.next.Publish(ctx, evt)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EventsPublished.WithLabelValues(string(evt.Kind), status).Inc()
	return err
}
