package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/net/http/httpproxy"
)

type fakeBus struct {
	connectErr error
	owners     map[string]bool
	queryErr   error
}

func (b *fakeBus) Connect() error { return b.connectErr }

func (b *fakeBus) NameHasOwner(ctx context.Context, name string) (bool, error) {
	if b.queryErr != nil {
		return false, b.queryErr
	}
	return b.owners[name], nil
}

func TestSessionBusCheck(t *testing.T) {
	ctx := context.Background()

	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "")
	t.Setenv("XDG_RUNTIME_DIR", "")
	result := (&SessionBusCheck{Bus: &fakeBus{}}).Run(ctx)
	if result.Level != LevelError {
		t.Errorf("without address: level = %v, want error", result.Level)
	}

	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/run/user/1000/bus")
	result = (&SessionBusCheck{Bus: &fakeBus{connectErr: errors.New("refused")}}).Run(ctx)
	if result.Level != LevelError || result.Error == nil {
		t.Errorf("connect failure: result = %+v, want error", result)
	}

	result = (&SessionBusCheck{Bus: &fakeBus{}}).Run(ctx)
	if result.Level != LevelInfo {
		t.Errorf("reachable bus: level = %v, want ok", result.Level)
	}
	if result.Name != "session-bus" {
		t.Errorf("Name = %q, want session-bus", result.Name)
	}
}

func TestBusNameCheck(t *testing.T) {
	tests := []struct {
		name string
		bus  *fakeBus
		want CheckLevel
	}{
		{"running", &fakeBus{owners: map[string]bool{PortalBusName: true}}, LevelInfo},
		{"not running", &fakeBus{owners: map[string]bool{}}, LevelWarn},
		{"query fails", &fakeBus{queryErr: errors.New("denied")}, LevelWarn},
		{"no bus", &fakeBus{connectErr: errors.New("refused")}, LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &BusNameCheck{Bus: tt.bus, BusName: PortalBusName, Purpose: "file dialogs"}
			result := check.Run(context.Background())
			if result.Level != tt.want {
				t.Errorf("level = %v, want %v (%s)", result.Level, tt.want, result.Message)
			}
			if result.Name != PortalBusName {
				t.Errorf("Name = %q, want %q", result.Name, PortalBusName)
			}
		})
	}
}

func TestToolCheck(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "xdg-open")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("PATH", dir)
	ctx := context.Background()

	result := (&ToolCheck{Tool: "xdg-open", Missing: LevelError}).Run(ctx)
	if result.Level != LevelInfo || !strings.Contains(result.Message, tool) {
		t.Errorf("present tool: result = %+v", result)
	}

	result = (&ToolCheck{Tool: "gtk-launch", Missing: LevelWarn}).Run(ctx)
	if result.Level != LevelWarn {
		t.Errorf("missing optional tool: level = %v, want warn", result.Level)
	}
	result = (&ToolCheck{Tool: "gtk-launch", Missing: LevelError}).Run(ctx)
	if result.Level != LevelError {
		t.Errorf("missing required tool: level = %v, want error", result.Level)
	}
}

func TestConfigDirCheck(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	created := filepath.Join(tmp, "new", "mozhelper")
	result := (&ConfigDirCheck{Path: created}).Run(ctx)
	if result.Level != LevelInfo {
		t.Errorf("new dir: result = %+v", result)
	}
	if info, err := os.Stat(created); err != nil || !info.IsDir() {
		t.Errorf("config dir was not created: %v", err)
	}

	file := filepath.Join(tmp, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	result = (&ConfigDirCheck{Path: file}).Run(ctx)
	if result.Level != LevelWarn {
		t.Errorf("file path: level = %v, want warn", result.Level)
	}

	entries, err := os.ReadDir(created)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("write test left %d files behind", len(entries))
	}
}

func TestProxyCheck(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		env      httpproxy.Config
		level    CheckLevel
		contains string
	}{
		{"direct", httpproxy.Config{}, LevelInfo, "DIRECT"},
		{"http proxy", httpproxy.Config{HTTPProxy: "proxy.example.com:3128"}, LevelInfo, "http via proxy.example.com:3128"},
		{"no proxy list", httpproxy.Config{HTTPSProxy: "http://p:8080", NoProxy: "localhost"}, LevelInfo, "no_proxy: localhost"},
		{"malformed", httpproxy.Config{HTTPProxy: "http://%zz"}, LevelWarn, "http proxy setting is malformed"},
		{"malformed https", httpproxy.Config{HTTPProxy: "proxy:3128", HTTPSProxy: "socks5://%zz"}, LevelWarn, "https proxy setting is malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.env
			result := (&ProxyCheck{Env: &env}).Run(ctx)
			if result.Level != tt.level {
				t.Errorf("level = %v, want %v (%s)", result.Level, tt.level, result.Message)
			}
			if !strings.Contains(result.Message, tt.contains) {
				t.Errorf("Message = %q, want containing %q", result.Message, tt.contains)
			}
		})
	}
}

func TestValidateProxy(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"", false},
		{"proxy.example.com:3128", false},
		{"http://user:pw@proxy:8080", false},
		{"socks5://127.0.0.1:1080", false},
		{"http://%zz", true},
	}
	for _, tt := range tests {
		err := validateProxy(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateProxy(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestCheckerRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", dir)
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/tmp/bus")
	ctx := context.Background()

	checker := NewChecker(Config{
		Bus:           &fakeBus{owners: map[string]bool{PortalBusName: true, NotificationsBusName: true}},
		OptionalTools: []string{"gtk-launch"},
		ConfigDir:     filepath.Join(dir, "config"),
		Quiet:         true,
	})
	if err := checker.Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want warnings only", err)
	}
	if got := len(checker.Results(ctx)); got != 5 {
		t.Errorf("Results() returned %d results, want 5", got)
	}

	checker = NewChecker(Config{Tools: []string{"xdg-open", "xdg-mime"}})
	err := checker.Run(ctx)
	if err == nil {
		t.Fatal("Run() expected error for missing tools")
	}
	if !strings.Contains(err.Error(), "xdg-open") || !strings.Contains(err.Error(), "xdg-mime") {
		t.Errorf("Run() error = %v, want both tools listed", err)
	}

	skipped := NewChecker(Config{Skip: true, Tools: []string{"xdg-open"}})
	if err := skipped.Run(ctx); err != nil {
		t.Errorf("Run() with Skip error = %v", err)
	}
	if results := skipped.Results(ctx); results != nil {
		t.Errorf("Results() with Skip = %v, want nil", results)
	}
}

func TestCheckLevelString(t *testing.T) {
	if LevelError.String() != "error" || LevelWarn.String() != "warn" || LevelInfo.String() != "ok" {
		t.Error("unexpected level names")
	}
}
