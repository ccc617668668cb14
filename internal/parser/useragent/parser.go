package useragent

import (
	"regexp"
	"strings"
)

const (
	Unknown = "Unknown"

	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// Info is the coarse classification attached to exported request details
type Info struct {
	Browser    string
	OS         string
	DeviceType string
}

type rule struct {
	name    string
	pattern *regexp.Regexp
}

var (
	// Order matters, more specific first
	browserRules = []rule{
		{"Edge", regexp.MustCompile(`(?i)Edg(?:e|A|iOS)?/\d+`)},
		{"Opera", regexp.MustCompile(`(?i)(?:Opera|OPR)/\d+`)},
		{"Chrome", regexp.MustCompile(`(?i)(?:Chrome|CriOS)/\d+`)},
		{"Firefox", regexp.MustCompile(`(?i)(?:Firefox|FxiOS)/\d+`)},
		{"Safari", regexp.MustCompile(`(?i)Version/\d+.*Safari`)},
		{"IE", regexp.MustCompile(`(?i)MSIE\s+\d+|Trident/.*rv:\d+`)},
	}

	osRules = []rule{
		{"Windows", regexp.MustCompile(`(?i)Windows NT`)},
		{"iOS", regexp.MustCompile(`(?i)iPhone|iPad|iPod`)},
		{"macOS", regexp.MustCompile(`(?i)Mac OS X`)},
		{"Android", regexp.MustCompile(`(?i)Android`)},
		{"ChromeOS", regexp.MustCompile(`(?i)CrOS`)},
		{"Linux", regexp.MustCompile(`(?i)Linux`)},
	}

	botNames = []struct {
		token string
		name  string
	}{
		{"googlebot", "Googlebot"},
		{"bingbot", "Bingbot"},
		{"yandexbot", "YandexBot"},
		{"duckduckbot", "DuckDuckBot"},
		{"baiduspider", "Baidu Spider"},
		{"applebot", "Applebot"},
		{"curl", "cURL"},
		{"wget", "Wget"},
		{"python", "Python Client"},
		{"go-http", "Go HTTP Client"},
	}

	botPattern    = regexp.MustCompile(`(?i)bot|crawler|spider|scraper|curl|wget|python|go-http`)
	mobilePattern = regexp.MustCompile(`(?i)mobile|android|iphone|ipad|ipod|blackberry|windows phone`)
)

// Classify derives browser, OS and device type from a User-Agent string.
// An empty agent classifies as Unknown/Unknown/unknown.
func Classify(userAgent string) Info {
	if strings.TrimSpace(userAgent) == "" {
		return Info{Browser: Unknown, OS: Unknown, DeviceType: DeviceUnknown}
	}

	if botPattern.MatchString(userAgent) {
		return Info{Browser: botName(userAgent), OS: "Bot", DeviceType: DeviceBot}
	}

	info := Info{
		Browser:    firstMatch(browserRules, userAgent),
		OS:         firstMatch(osRules, userAgent),
		DeviceType: DeviceDesktop,
	}
	if mobilePattern.MatchString(userAgent) {
		info.DeviceType = DeviceMobile
	}
	return info
}

func firstMatch(rules []rule, userAgent string) string {
	for _, r := range rules {
		if r.pattern.MatchString(userAgent) {
			return r.name
		}
	}
	return Unknown
}

func botName(userAgent string) string {
	lower := strings.ToLower(userAgent)
	for _, b := range botNames {
		if strings.Contains(lower, b.token) {
			return b.name
		}
	}
	return "Bot"
}
