package notification

import (
	"testing"
	"time"
)

func TestRetryDelayBackoff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{7, 60 * time.Minute},
		{20, 60 * time.Minute},
	}

	for _, tc := range cases {
		if got := retryDelay(tc.attempt); got != tc.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

type baseURLConfig struct {
	baseURL     string
	maxAttempts int
}

func (c baseURLConfig) GetAppBaseURL() string     { return c.baseURL }
func (c baseURLConfig) GetOutboxMaxAttempts() int { return c.maxAttempts }

func TestBuildTrackingURL(t *testing.T) {
	cases := []struct {
		base  string
		token string
		want  string
	}{
		{"https://app.example.com", "abc123", "https://app.example.com/track/abc123"},
		{"https://app.example.com/", "abc123", "https://app.example.com/track/abc123"},
		{"https://app.example.com//", "abc123", "https://app.example.com/track/abc123"},
	}

	for _, tc := range cases {
		m := &Module{cfg: baseURLConfig{baseURL: tc.base}}
		if got := m.buildTrackingURL(tc.token); got != tc.want {
			t.Errorf("buildTrackingURL(base=%q, %q) = %q, want %q", tc.base, tc.token, got, tc.want)
		}
	}
}
