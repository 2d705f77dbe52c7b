package video

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"telehealth-portal/config"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixedClock() time.Time { return fixedNow }

func TestRegistry(t *testing.T) {
	w := NewWhereby(config.WherebyConfig{APIKey: "key", Domain: "medianalytica.whereby.com", BaseURL: "http://unused"}, time.Hour, time.Second, testLogger())
	j := NewJitsi(config.JitsiConfig{Domain: "meet.jit.si"})

	if _, err := NewRegistry("zoom", w, j); err == nil {
		t.Fatal("expected error for unknown default provider")
	}

	reg, err := NewRegistry(ProviderJitsi, w, j)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	p, err := reg.Get("")
	if err != nil || p.Name() != ProviderJitsi {
		t.Fatalf("Get(\"\") = %v, %v; want jitsi", p, err)
	}
	if _, err := reg.Get("teams"); err == nil {
		t.Error("expected error for unknown provider")
	}

	statuses := reg.Statuses()
	if len(statuses) != 2 || statuses[0].Provider != ProviderJitsi || statuses[1].Provider != ProviderWhereby {
		t.Fatalf("statuses not sorted by name: %+v", statuses)
	}
	if !statuses[1].Env["WHEREBY_API_KEY"] || !statuses[1].Configured {
		t.Errorf("whereby status = %+v, want configured", statuses[1])
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Provider: ProviderDaily, Missing: []string{"DAILY_API_KEY"}}

	if got := err.Error(); !strings.Contains(got, "DAILY_API_KEY") {
		t.Errorf("Error() = %q, want the variable name", got)
	}
	steps := err.Troubleshooting()
	if len(steps) == 0 || !strings.Contains(steps[0], "DAILY_API_KEY") {
		t.Errorf("Troubleshooting() = %v", steps)
	}
}
