package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMySQL  = "mysql"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

type App struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Storage
	StoreDriver string `envconfig:"STORE_DRIVER" default:"mysql"`
	BoltPath    string `envconfig:"BOLT_PATH" default:"reservations.db"`

	// Timezone is the zone civil dates and hours are interpreted in.
	Timezone      string        `envconfig:"TIMEZONE" default:"Local"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	CorsOriginsRaw string `envconfig:"CORS_ORIGINS" default:"*"`

	// RabbitMQ; empty AMQPURL disables messaging
	AMQPURL         string `envconfig:"AMQP_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	PaymentQueue    string `envconfig:"PAYMENT_QUEUE" default:"booking.payment.q"`
}

func Load() (App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverMySQL, DriverBolt, DriverMemory:
	default:
		return c, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SweepInterval <= 0 {
		return c, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	return c, nil
}

func (c App) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// CorsOrigins splits CORS_ORIGINS on commas, falling back to "*".
func (c App) CorsOrigins() []string {
	parts := strings.Split(c.CorsOriginsRaw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
