package apptime

import (
	"testing"
	"time"
)

func TestIsJoinable_Boundaries(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	scheduled := time.Date(2025, 3, 14, 10, 30, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"exactly five minutes before", scheduled.Add(-5 * time.Minute), true},
		{"one second before window", scheduled.Add(-5*time.Minute - time.Second), false},
		{"at scheduled instant", scheduled, true},
		{"exactly thirty minutes after", scheduled.Add(30 * time.Minute), true},
		{"one second after window", scheduled.Add(30*time.Minute + time.Second), false},
		{"previous day", scheduled.Add(-24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsJoinable("2025-03-14", "10:30", tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsJoinable at %s = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestIsPast(t *testing.T) {
	scheduled := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	past, err := IsPast("2025-03-14", "10:30", scheduled.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if past {
		t.Error("expected appointment not past at the end of the window")
	}

	past, _ = IsPast("2025-03-14", "10:30", scheduled.Add(30*time.Minute+time.Second))
	if !past {
		t.Error("expected appointment past one second after the window")
	}
}

func TestIsUpcoming(t *testing.T) {
	scheduled := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	upcoming, _ := IsUpcoming("2025-03-14", "10:30", scheduled.Add(-5*time.Minute-time.Second))
	if !upcoming {
		t.Error("expected upcoming before the window opens")
	}
	upcoming, _ = IsUpcoming("2025-03-14", "10:30", scheduled.Add(-5*time.Minute))
	if upcoming {
		t.Error("expected not upcoming once the window opens")
	}
}

func TestScheduledAt_InvalidInput(t *testing.T) {
	for _, in := range [][2]string{{"2025-13-01", "10:00"}, {"2025-01-01", "25:00"}, {"", ""}, {"14/03/2025", "10:30"}} {
		if _, err := ScheduledAt(in[0], in[1], time.UTC); err == nil {
			t.Errorf("expected error for %q %q", in[0], in[1])
		}
		if _, err := IsJoinable(in[0], in[1], time.Now()); err == nil {
			t.Errorf("expected IsJoinable error for %q %q", in[0], in[1])
		}
	}
}
