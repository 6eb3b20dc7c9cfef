package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/mikey/spam-doctor/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for input, want := range tests {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestInitLogger(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.Set("logging.level", "warn")

	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestInitConsoleLogger(t *testing.T) {
	for _, jsonFormat := range []bool{false, true} {
		logger, err := InitConsoleLogger(true, jsonFormat)
		if err != nil {
			t.Fatalf("InitConsoleLogger failed: %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("verbose logger should enable debug")
		}
	}

	logger, err := InitConsoleLogger(false, false)
	if err != nil {
		t.Fatalf("InitConsoleLogger failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be off without verbose")
	}
}
