package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegermetrics "github.com/uber/jaeger-lib/metrics"
)

// Config switches tracing on. Agent, sampler and reporter settings are read from the
// standard JAEGER_* variables.
type Config struct {
	Enabled bool `env:"TRACING_ENABLED" envDefault:"false"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitGlobalTracer installs a jaeger tracer as the opentracing global tracer. When tracing
// is disabled the noop global tracer is kept and the returned closer does nothing.
func InitGlobalTracer(c Config, serviceName string) (io.Closer, error) {
	if !c.Enabled {
		return nopCloser{}, nil
	}
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("parse jaeger config: %w", err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaegerLogger{}), jaegercfg.Metrics(jaegermetrics.NullFactory))
	if err != nil {
		return nil, fmt.Errorf("create jaeger tracer: %w", err)
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.Infof("jaeger tracer initialized for service %s", cfg.ServiceName)
	return closer, nil
}

// jaegerLogger routes jaeger client logs to logrus.
type jaegerLogger struct{}

func (jaegerLogger) Error(msg string) {
	logrus.WithField("component", "jaeger").Error(msg)
}

func (jaegerLogger) Infof(msg string, args ...interface{}) {
	logrus.WithField("component", "jaeger").Infof(msg, args...)
}
