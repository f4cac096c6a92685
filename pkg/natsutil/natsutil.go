// Package natsutil provides typed JSON publish/subscribe helpers over NATS
// with OpenTelemetry trace propagation through message headers.
package natsutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// Connect dials NATS with reconnect settings suited for long-running workers.
func Connect(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// headerCarrier adapts nats.Msg headers to the OTel TextMapCarrier interface.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish serializes v as JSON and publishes it to subject, injecting the
// trace context from ctx into the message headers.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return nc.PublishMsg(msg)
}

// Handler consumes a decoded message. The context carries any trace
// extracted from the message headers.
type Handler[T any] func(context.Context, T)

func dispatch[T any](log *slog.Logger, handler Handler[T]) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			log.Warn("dropping malformed message",
				"subject", msg.Subject, "bytes", len(msg.Data), "error", err)
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		handler(ctx, v)
	}
}

// Subscribe registers a typed JSON handler on subject. Messages that fail
// to decode are logged and dropped.
func Subscribe[T any](nc *nats.Conn, log *slog.Logger, subject string, handler Handler[T]) (*nats.Subscription, error) {
	return nc.Subscribe(subject, dispatch(log, handler))
}

// QueueSubscribe is Subscribe with a queue group, so a pool of workers
// shares the subject without duplicate delivery.
func QueueSubscribe[T any](nc *nats.Conn, log *slog.Logger, subject, queue string, handler Handler[T]) (*nats.Subscription, error) {
	return nc.QueueSubscribe(subject, queue, dispatch(log, handler))
}
