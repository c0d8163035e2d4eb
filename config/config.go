package config

import (
	"fmt"
	"skillbridge/client/es"
	"skillbridge/common"
	"skillbridge/event"
	"skillbridge/infra/tracing"
	"skillbridge/persistence"
	"skillbridge/realtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/fundwit/go-commons/types"
)

// Config gathers every environment setting of the service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"skillbridge"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	// identity headers of an authenticating gateway are trusted
	TrustGatewayHeaders bool   `env:"TRUST_GATEWAY_HEADERS" envDefault:"false"`
	SessionIssuerKey    string `env:"SESSION_ISSUER_KEY"`

	AdminID   types.ID `env:"ADMIN_ID" envDefault:"1"`
	AdminName string   `env:"ADMIN_NAME" envDefault:"admin"`

	Log           common.LogConfig
	Database      persistence.DatabaseConfig
	Redis         realtime.RedisConfig
	Elasticsearch es.Config
	Tracing       tracing.Config
	Outbox        event.DispatcherConfig
}

func Load() (*Config, error) {
	c := Config{}
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	if err := c.Database.Normalize(); err != nil {
		return nil, err
	}
	c.AdminName = strings.TrimSpace(c.AdminName)
	if c.AdminID == 0 || c.AdminName == "" {
		return nil, fmt.Errorf("admin id and name are required")
	}
	if c.Elasticsearch.Enabled && len(c.Elasticsearch.Addresses) == 0 {
		return nil, fmt.Errorf("ELASTICSEARCH_URL is required when elasticsearch is enabled")
	}
	return &c, nil
}
