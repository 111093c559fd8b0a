package config

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the logger described by c, writing to out.
func (c *Config) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	var formatter logrus.Formatter = &logrus.TextFormatter{DisableColors: c.Color == ColorNever}
	if c.LogFormat == LogFormatJSON {
		formatter = new(logrus.JSONFormatter)
	}
	return &logrus.Logger{
		Out:       out,
		Formatter: formatter,
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
	}, nil
}
