package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lanternworks/scopeline/internal/config"
)

func TestNewServeCmd(t *testing.T) {
	cmd := newServeCmd()
	if cmd.Use != "serve" {
		t.Errorf("Use = %q, want %q", cmd.Use, "serve")
	}

	tests := []struct {
		name, defValue, shorthand string
	}{
		{"config", "scopeline.yaml", "c"},
		{"port", "0", "p"},
	}
	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Fatalf("expected --%s flag", tt.name)
		}
		if flag.DefValue != tt.defValue {
			t.Errorf("--%s default = %q, want %q", tt.name, flag.DefValue, tt.defValue)
		}
		if flag.Shorthand != tt.shorthand {
			t.Errorf("--%s shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
		}
	}
}

func TestServeCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("serve --help failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "API server") {
		t.Errorf("expected help to mention 'API server', got: %s", out)
	}
	if !strings.Contains(out, "scopeline.yaml") {
		t.Errorf("expected default config path 'scopeline.yaml', got: %s", out)
	}
}

func TestServeCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "--config", "/nonexistent/scopeline.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: read")
	}
}

func TestBuildNotifier(t *testing.T) {
	buf := new(bytes.Buffer)
	notifier, err := buildNotifier(&config.Config{}, buf)
	if err != nil {
		t.Fatalf("build notifier: %v", err)
	}
	if notifier == nil {
		t.Fatal("expected a notifier even with no channels configured")
	}
	if !strings.Contains(buf.String(), "No notification channels configured") {
		t.Errorf("expected no-channels message, got: %s", buf.String())
	}

	buf.Reset()
	cfg := &config.Config{}
	cfg.Email.Host = "smtp.example.com"
	cfg.Email.Port = 587
	cfg.Email.From = "noreply@example.com"
	if _, err := buildNotifier(cfg, buf); err != nil {
		t.Fatalf("build notifier with mail: %v", err)
	}
	if !strings.Contains(buf.String(), "mail") {
		t.Errorf("expected channel list to include 'mail', got: %s", buf.String())
	}
}
