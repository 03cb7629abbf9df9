package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/logger"
)

const DefaultSubjectPrefix = "hh.interviewer"

type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATS publishes events to "<prefix>.<event type>".
type NATS struct {
	conn   conn
	prefix string
	logger *zap.Logger
}

func NewNATS(url, prefix string, log *zap.Logger) (*NATS, error) {
	log = logger.OrNop(log)

	opts := []nats.Option{
		nats.Name("hh-interviewer"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("nats reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return newNATS(nc, prefix, log), nil
}

func newNATS(c conn, prefix string, log *zap.Logger) *NATS {
	prefix = strings.Trim(prefix, ". ")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{conn: c, prefix: prefix, logger: logger.OrNop(log)}
}

// Subject returns the subject an event type is published on.
func (n *NATS) Subject(eventType string) string {
	return n.prefix + "." + eventType
}

func (n *NATS) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	subject := n.Subject(event.Type)
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	n.logger.Debug("event published",
		zap.String("subject", subject),
		zap.String(logger.FieldInterviewID, event.InterviewID),
	)
	return nil
}

func (n *NATS) Close() {
	n.conn.Close()
}
