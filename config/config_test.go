package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var envKeys = []string{
	"SERPAPI_API_KEY", "VERIBUY_HL", "VERIBUY_GL", "VERIBUY_NUM", "VERIBUY_MAX_RETRIES",
	"VERIBUY_RATE_PER_SECOND", "VERIBUY_RATE_BURST", "VERIBUY_MAX_CONCURRENT",
	"VERIBUY_PROXY", "VERIBUY_COUPON_RULES", "VERIBUY_LOG_LEVEL", "PORT", "VERIBUY_API_KEY",
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want *Config
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: DefaultConfig(),
		},
		{
			name: "all values set",
			env: map[string]string{
				"SERPAPI_API_KEY":         "serp",
				"VERIBUY_HL":              "de",
				"VERIBUY_GL":              "de",
				"VERIBUY_NUM":             "20",
				"VERIBUY_MAX_RETRIES":     "0",
				"VERIBUY_RATE_PER_SECOND": "0.5",
				"VERIBUY_RATE_BURST":      "1",
				"VERIBUY_MAX_CONCURRENT":  "2",
				"VERIBUY_PROXY":           "socks5://127.0.0.1:1080",
				"VERIBUY_COUPON_RULES":    "/etc/veribuy/coupons.yaml",
				"VERIBUY_LOG_LEVEL":       "debug",
				"PORT":                    "9090",
				"VERIBUY_API_KEY":         "mcp-token",
			},
			want: &Config{
				SerpAPIKey:     "serp",
				Language:       "de",
				Country:        "de",
				ResultsPerPage: 20,
				MaxRetries:     0,
				RatePerSecond:  0.5,
				RateBurst:      1,
				MaxConcurrent:  2,
				ProxyURL:       "socks5://127.0.0.1:1080",
				CouponRules:    "/etc/veribuy/coupons.yaml",
				LogLevel:       "debug",
				HTTPPort:       "9090",
				APIKey:         "mcp-token",
			},
		},
		{
			name: "unparseable numbers keep defaults",
			env: map[string]string{
				"VERIBUY_NUM":             "many",
				"VERIBUY_RATE_PER_SECOND": "fast",
				"VERIBUY_RATE_BURST":      "x",
				"VERIBUY_MAX_CONCURRENT":  "",
				"VERIBUY_MAX_RETRIES":     "-3",
			},
			want: DefaultConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got := DefaultConfig()
			got.applyEnv()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("applyEnv() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
