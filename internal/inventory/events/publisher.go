package events

import (
	"context"

	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/messaging"
)

// Publisher publishes lot lifecycle events to the inventory exchange.
// A nil Publisher is a no-op, so event publishing stays optional when
// RabbitMQ is not configured.
type Publisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewPublisher creates an event publisher on the inventory exchange
func NewPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*Publisher, error) {
	pub, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "extemp-service", log)
	if err != nil {
		return nil, err
	}
	return &Publisher{publisher: pub, logger: log}, nil
}

func (p *Publisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		// events are best-effort; the stock write already succeeded
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// LotReceived publishes an inventory.lot.received event
func (p *Publisher) LotReceived(ctx context.Context, e *messaging.LotReceivedEvent) {
	p.publish(ctx, messaging.EventLotReceived, e)
}

// LotDispensed publishes an inventory.lot.dispensed event
func (p *Publisher) LotDispensed(ctx context.Context, e *messaging.LotDispensedEvent) {
	p.publish(ctx, messaging.EventLotDispensed, e)
}

// LotTransferred publishes an inventory.lot.transferred event
func (p *Publisher) LotTransferred(ctx context.Context, e *messaging.LotTransferredEvent) {
	p.publish(ctx, messaging.EventLotTransferred, e)
}

// LotDisposed publishes an inventory.lot.disposed event
func (p *Publisher) LotDisposed(ctx context.Context, e *messaging.LotDisposedEvent) {
	p.publish(ctx, messaging.EventLotDisposed, e)
}

// LotThawed publishes an inventory.lot.thawed event
func (p *Publisher) LotThawed(ctx context.Context, e *messaging.LotThawedEvent) {
	p.publish(ctx, messaging.EventLotThawed, e)
}

// LotExpiring publishes an inventory.lot.expiring event
func (p *Publisher) LotExpiring(ctx context.Context, e *messaging.LotExpiringEvent) {
	p.publish(ctx, messaging.EventLotExpiring, e)
}

// MasterDataReplaced publishes an inventory.master.replaced event
func (p *Publisher) MasterDataReplaced(ctx context.Context, e *messaging.MasterDataReplacedEvent) {
	p.publish(ctx, messaging.EventMasterDataReplaced, e)
}
