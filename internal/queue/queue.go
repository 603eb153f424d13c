// Package queue carries inbound campaign response events between the
// webhook ingress and the recording workers over RabbitMQ.
package queue

import "context"

const (
	// ResponseQueue is the work queue for inbound reply events.
	ResponseQueue = "campaign.responses"
	// ResponseDLQ receives replies rejected as unparseable or invalid.
	ResponseDLQ = "dlq.campaign.responses"

	dlxExchangeName    = "insights.dlx"
	responseRoutingKey = "campaign.responses"
)

// Publisher publishes response events to the ingest queue.
type Publisher interface {
	Publish(ctx context.Context, msg ResponseMessage) error
	Close() error
}

// MessageHandler handles a consumed response event.
type MessageHandler func(ctx context.Context, msg ResponseMessage) error

// Consumer consumes response events from the ingest queue.
type Consumer interface {
	Consume(ctx context.Context, handler MessageHandler) error
	Close() error
}
