package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var log = logrus.WithField("component", "cmd")

type logFormat string

const (
	textFormat logFormat = "text"
	jsonFormat logFormat = "json"
)

var expectedLogFormats = []logFormat{textFormat, jsonFormat}

func isValidLogFormat(desiredFormat logFormat) bool {
	for _, format := range expectedLogFormats {
		if format == desiredFormat {
			return true
		}
	}
	return false
}

const logLevelOff = "off"

var expectedLogLevels = []string{
	logrus.TraceLevel.String(),
	logrus.DebugLevel.String(),
	logrus.InfoLevel.String(),
	logrus.WarnLevel.String(),
	logrus.ErrorLevel.String(),
	logLevelOff,
}

func configureLog(cfg *viper.Viper) error {
	desiredFormat := textFormat
	if cfg.GetString(logFormatKey) != "" {
		desiredFormat = logFormat(cfg.GetString(logFormatKey))
		if !isValidLogFormat(desiredFormat) {
			return fmt.Errorf(
				"invalid log format specified %q expecting one of %v",
				desiredFormat,
				expectedLogFormats,
			)
		}
	} else if cfg.GetString(logFileKey) != "" {
		// default for file is json
		desiredFormat = jsonFormat
	}

	switch desiredFormat {
	case jsonFormat:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case textFormat:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if path := cfg.GetString(logFileKey); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("unable to open log file %q: %w", path, err)
		}
		log.WithField("path", path).Info("Logger setup with a file output")
		logrus.SetOutput(file)
	} else {
		// stdout carries command output
		logrus.SetOutput(os.Stderr)
	}

	logLevelStr := cfg.GetString(logLevelKey)
	for _, expectedLogLevel := range expectedLogLevels {
		if expectedLogLevel == logLevelStr {
			if logLevelStr == logLevelOff {
				logrus.SetLevel(logrus.PanicLevel)
				return nil
			}
			logLevel, err := logrus.ParseLevel(logLevelStr)
			if err != nil {
				return err
			}
			logrus.SetLevel(logLevel)
			return nil
		}
	}
	return fmt.Errorf(
		"invalid log level specified %q expecting one of %v",
		logLevelStr,
		expectedLogLevels,
	)
}
