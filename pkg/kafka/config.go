// Package kafka wraps segmentio/kafka-go with the small producer and consumer
// surface used for wizard events and lead forwarding.
package kafka

import "time"

// Config holds Kafka connection parameters.
type Config struct {
	ConsumerGroup string
	ClientID      string

	// SASL configuration for authentication.
	SASLMechanism string // "PLAIN" or "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	// HandlerAttempts is how many times the consumer invokes a handler for one
	// message before logging it and moving on. Zero means 3.
	HandlerAttempts int
	// HandlerBackoff is the delay before the first handler retry; it doubles
	// on each attempt. Zero means 200ms.
	HandlerBackoff time.Duration

	// TLS enables TLS for Kafka connections.
	TLS         bool
	SASLEnabled bool
}

func (c Config) attempts() int {
	if c.HandlerAttempts <= 0 {
		return 3
	}
	return c.HandlerAttempts
}

func (c Config) backoff() time.Duration {
	if c.HandlerBackoff <= 0 {
		return 200 * time.Millisecond
	}
	return c.HandlerBackoff
}
