package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	URL           string        `yaml:"url"`
	StreamName    string        `yaml:"stream_name"`
	SubjectFilter string        `yaml:"subject_filter"` // e.g. "auction.events.>"
	SessionID     string        `yaml:"session_id"`     // empty relays every session
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

// DefaultJetStreamConsumerConfig returns default JetStream consumer configuration
func DefaultJetStreamConsumerConfig() JetStreamConsumerConfig {
	return JetStreamConsumerConfig{
		URL:           nats.DefaultURL,
		StreamName:    "AUCTION_EVENTS",
		SubjectFilter: "auction.events.>",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// EventConsumer feeds a gateway from the JetStream event stream instead of an
// in-process draft. It uses an ordered consumer, so there is nothing to ack
// and a restarted gateway simply picks up from new messages.
type EventConsumer struct {
	sink     events.Sink
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	config   JetStreamConsumerConfig
}

// NewEventConsumer connects to NATS and creates the ordered consumer
func NewEventConsumer(ctx context.Context, sink events.Sink, config JetStreamConsumerConfig) (*EventConsumer, error) {
	opts := []nats.Option{
		nats.Name("auction-gateway"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	consumer, err := js.OrderedConsumer(ctx, config.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{config.SubjectFilter},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create ordered consumer: %w", err)
	}

	log.Info().
		Str("stream", config.StreamName).
		Str("filter", config.SubjectFilter).
		Str("session_id", config.SessionID).
		Msg("created JetStream ordered consumer")

	return &EventConsumer{
		sink:     sink,
		nc:       nc,
		js:       js,
		consumer: consumer,
		config:   config,
	}, nil
}

// Start consumes until ctx is cancelled
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().Str("stream", ec.config.StreamName).Msg("starting JetStream event consumer")

	consumeCtx, err := ec.consumer.Consume(func(msg jetstream.Msg) {
		if err := ec.processMessage(msg); err != nil {
			log.Error().
				Err(err).
				Str("subject", msg.Subject()).
				Msg("failed to process message")
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	<-ctx.Done()
	log.Info().Msg("event consumer shutting down")
	return nil
}

// processMessage decodes one envelope and hands it to the sink
func (ec *EventConsumer) processMessage(msg jetstream.Msg) error {
	if ec.config.SessionID != "" {
		if session := msg.Headers().Get("Session-ID"); session != "" && session != ec.config.SessionID {
			return nil
		}
	}

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}
	if ec.config.SessionID != "" && envelope.SessionID != ec.config.SessionID {
		return nil
	}

	log.Debug().
		Str("event_id", envelope.ID).
		Str("session_id", envelope.SessionID).
		Str("event_type", string(envelope.Type)).
		Msg("relaying JetStream event")

	ec.sink.Emit(envelope)
	return nil
}

// Stop closes the NATS connection
func (ec *EventConsumer) Stop() error {
	log.Info().Msg("stopping event consumer")
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
