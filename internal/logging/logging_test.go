package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuildSplitsByLevel(t *testing.T) {
	var low, high bytes.Buffer
	log, err := build("normal", zapcore.AddSync(&low), zapcore.AddSync(&high))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}

	log.Debug("hidden")
	log.Info("loaded")
	log.Error("failed")
	_ = log.Sync()

	if strings.Contains(low.String(), "hidden") {
		t.Errorf("debug record written at normal level: %q", low.String())
	}
	if !strings.Contains(low.String(), "loaded") || strings.Contains(low.String(), "failed") {
		t.Errorf("stdout = %q", low.String())
	}
	if !strings.Contains(high.String(), "failed") || strings.Contains(high.String(), "loaded") {
		t.Errorf("stderr = %q", high.String())
	}
}

func TestBuildLevels(t *testing.T) {
	var low, high bytes.Buffer
	log, err := build("debug", zapcore.AddSync(&low), zapcore.AddSync(&high))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	log.Debug("visible")
	if !strings.Contains(low.String(), "visible") {
		t.Errorf("debug record missing at debug level")
	}

	if _, err := New("none"); err != nil {
		t.Errorf("New(none) error = %v", err)
	}
	if _, err := New("verbose"); err == nil {
		t.Error("New(verbose) expected error")
	}
}
