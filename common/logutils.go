package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var serviceName = "skillbridge"

// LogConfig selects the level and the output format of the standard logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

func init() {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	logger.AddHook(&ServiceFieldHook{})
}

// ConfigureLogging applies c to the standard logger, the service field hook is kept.
func ConfigureLogging(c LogConfig) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	var formatter logrus.Formatter
	switch strings.ToLower(c.Format) {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("unsupported log format %q", c.Format)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)
	return nil
}

// SetServiceName changes the service field attached to every log entry.
func SetServiceName(name string) {
	if name != "" {
		serviceName = name
	}
}

func GetServiceName() string {
	return serviceName
}

type ServiceFieldHook struct{}

func (hook *ServiceFieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *ServiceFieldHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = serviceName
	return nil
}
