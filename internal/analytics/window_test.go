package analytics

import "testing"

func intPtr(v int) *int {
	return &v
}

func TestGoldenWindow(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, WindowDawn},
		{4, WindowDawn},
		{5, WindowEarlyMorning},
		{8, WindowEarlyMorning},
		{9, WindowMorning},
		{11, WindowMorning},
		{12, WindowLunch},
		{13, WindowLunch},
		{14, WindowAfternoon},
		{17, WindowAfternoon},
		{18, WindowEvening},
		{21, WindowEvening},
		{22, WindowLateNight},
		{23, WindowLateNight},
		{30, WindowLateNight},
	}
	for _, tc := range cases {
		if got := GoldenWindow(intPtr(tc.hour)); got != tc.want {
			t.Fatalf("GoldenWindow(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
	if got := GoldenWindow(nil); got != "" {
		t.Fatalf("expected empty label for nil hour, got %q", got)
	}
	if got := GoldenWindow(intPtr(-1)); got != "" {
		t.Fatalf("expected empty label for negative hour, got %q", got)
	}
}

func TestBestHourLabel(t *testing.T) {
	if got := BestHourLabel(intPtr(0)); got != "0시" {
		t.Fatalf("expected midnight label, got %q", got)
	}
	if got := BestHourLabel(intPtr(14)); got != "14시" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := BestHourLabel(nil); got != "정보없음" {
		t.Fatalf("expected no-data label, got %q", got)
	}
}
