package uaparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		userAgent      string
		acceptLanguage string
		want           Classification
	}{
		{
			name:           "chrome windows",
			userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			acceptLanguage: "ru-RU,ru;q=0.9,en;q=0.8",
			want: Classification{
				Device: DeviceDesktop, Browser: "Chrome", BrowserVersion: "120.0.0.0",
				OS: "Windows", Platform: "Windows", Language: "ru-RU",
			},
		},
		{
			name:      "safari iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want: Classification{
				Device: DeviceMobile, Browser: "Safari", BrowserVersion: "17.0",
				OS: "iOS", Platform: "Apple",
			},
		},
		{
			name:      "edge before chrome",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			want: Classification{
				Device: DeviceDesktop, Browser: "Edge", BrowserVersion: "120.0.2210.91",
				OS: "Windows", Platform: "Windows",
			},
		},
		{
			name:      "firefox linux",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: Classification{
				Device: DeviceDesktop, Browser: "Firefox", BrowserVersion: "121.0",
				OS: "Linux", Platform: "Linux",
			},
		},
		{
			name:      "android tablet without mobile token",
			userAgent: "Mozilla/5.0 (Linux; Android 13; SM-X710) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: Classification{
				Device: DeviceTablet, Browser: "Chrome", BrowserVersion: "120.0.0.0",
				OS: "Android", Platform: "Android",
			},
		},
		{
			name:      "android phone",
			userAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want: Classification{
				Device: DeviceMobile, Browser: "Chrome", BrowserVersion: "120.0.0.0",
				OS: "Android", Platform: "Android",
			},
		},
		{
			name:      "ipad",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want: Classification{
				Device: DeviceTablet, Browser: "Safari", BrowserVersion: "17.0",
				OS: "iOS", Platform: "Apple",
			},
		},
		{
			name:           "empty user agent",
			userAgent:      "",
			acceptLanguage: "*",
			want:           Classification{Device: DeviceOther},
		},
		{
			name:      "curl",
			userAgent: "curl/8.4.0",
			want:      Classification{Device: DeviceOther},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.userAgent, tt.acceptLanguage)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrimaryLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru-RU"},
		{"en-US", "en-US"},
		{"de;q=0.7", "de"},
		{"*", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, primaryLanguage(tt.in), tt.in)
	}
}
