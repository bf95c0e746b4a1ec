// Package uaparse классифицирует посетителя по заголовкам запроса.
// Разбор детерминированный: неизвестные входы дают пустые значения или
// DeviceOther, ошибок не бывает.
package uaparse

import (
	"regexp"
	"strings"
)

// Классы устройств.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceOther   = "other"
)

// Classification результат разбора User-Agent и Accept-Language.
type Classification struct {
	Device         string
	Browser        string
	BrowserVersion string
	OS             string
	Platform       string
	Language       string
}

// Порядок проверки важен: Chrome подставляет "Safari" в свой UA,
// Edge и Opera подставляют "Chrome".
var browserRules = []struct {
	token   string
	name    string
	version *regexp.Regexp
}{
	{"edg/", "Edge", regexp.MustCompile(`edg/([\d.]+)`)},
	{"opr/", "Opera", regexp.MustCompile(`opr/([\d.]+)`)},
	{"opera", "Opera", regexp.MustCompile(`opera[/ ]([\d.]+)`)},
	{"firefox/", "Firefox", regexp.MustCompile(`firefox/([\d.]+)`)},
	{"chrome/", "Chrome", regexp.MustCompile(`chrome/([\d.]+)`)},
	{"safari/", "Safari", regexp.MustCompile(`version/([\d.]+)`)},
	{"msie", "Internet Explorer", regexp.MustCompile(`msie ([\d.]+)`)},
	{"trident/", "Internet Explorer", regexp.MustCompile(`rv:([\d.]+)`)},
}

// Classify разбирает заголовки User-Agent и Accept-Language.
func Classify(userAgent, acceptLanguage string) Classification {
	ua := strings.ToLower(userAgent)

	c := Classification{
		Device:   classifyDevice(ua),
		Language: primaryLanguage(acceptLanguage),
	}
	c.Browser, c.BrowserVersion = classifyBrowser(ua)
	c.OS, c.Platform = classifyOS(ua)
	return c
}

func classifyDevice(ua string) string {
	switch {
	case ua == "":
		return DeviceOther
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return DeviceTablet
	// Android планшеты не содержат токена "mobile".
	case strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return DeviceTablet
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return DeviceMobile
	case strings.Contains(ua, "windows") || strings.Contains(ua, "macintosh") ||
		strings.Contains(ua, "x11") || strings.Contains(ua, "linux"):
		return DeviceDesktop
	default:
		return DeviceOther
	}
}

func classifyBrowser(ua string) (name, version string) {
	for _, rule := range browserRules {
		if !strings.Contains(ua, rule.token) {
			continue
		}
		if m := rule.version.FindStringSubmatch(ua); len(m) > 1 {
			version = m[1]
		}
		return rule.name, version
	}
	return "", ""
}

func classifyOS(ua string) (os, platform string) {
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows", "Windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		return "iOS", "Apple"
	case strings.Contains(ua, "mac os x") || strings.Contains(ua, "macintosh"):
		return "macOS", "Apple"
	case strings.Contains(ua, "android"):
		return "Android", "Android"
	case strings.Contains(ua, "linux") || strings.Contains(ua, "x11"):
		return "Linux", "Linux"
	default:
		return "", ""
	}
}

// primaryLanguage выделяет первичный язык из Accept-Language
// ("ru-RU,ru;q=0.9,en;q=0.8" → "ru-RU").
func primaryLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	first := strings.Split(acceptLanguage, ",")[0]
	lang := strings.TrimSpace(strings.Split(first, ";")[0])
	if lang == "*" {
		return ""
	}
	return lang
}
