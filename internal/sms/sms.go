// Package sms dispatches verification codes to phone numbers. The
// provider-specific delivery API stays behind the broker; this package
// only knows how to hand a code off.
package sms

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lanblog/apiserver/internal/mq"
)

// Gateway sends a verification code to a phone number. Implementations
// may fail; callers treat failure as non-fatal.
type Gateway interface {
	Send(ctx context.Context, phone, code string, validityMinutes int) error
}

// DispatchMessage is the payload published to the dispatch channel for
// the delivery worker.
type DispatchMessage struct {
	Phone           string    `json:"phone"`
	Code            string    `json:"code"`
	ValidityMinutes int       `json:"validity_minutes"`
	RequestedAt     time.Time `json:"requested_at"`
}

// QueueGateway publishes dispatch messages to a broker channel; an
// out-of-process worker performs the provider call.
type QueueGateway struct {
	mq      *mq.MQ
	channel string
}

func NewQueueGateway(broker *mq.MQ, channel string) *QueueGateway {
	return &QueueGateway{mq: broker, channel: channel}
}

func (g *QueueGateway) Send(ctx context.Context, phone, code string, validityMinutes int) error {
	payload, err := json.Marshal(DispatchMessage{
		Phone:           phone,
		Code:            code,
		ValidityMinutes: validityMinutes,
		RequestedAt:     time.Now(),
	})
	if err != nil {
		return err
	}

	_, err = g.mq.Publish(ctx, g.channel, payload, map[string]string{"kind": "verification_code"})
	return err
}

// LogGateway writes the code to the log instead of sending it. Dev and
// test environments use it so the flow works without a provider.
type LogGateway struct {
	logger *slog.Logger
}

func NewLogGateway(logger *slog.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

func (g *LogGateway) Send(_ context.Context, phone, code string, validityMinutes int) error {
	g.logger.Info("sms code issued",
		"phone", phone,
		"code", code,
		"validity_minutes", validityMinutes,
	)
	return nil
}
