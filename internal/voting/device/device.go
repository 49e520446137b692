// Package device describes the kiosk a voting session runs on.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Kiosk is the parsed User-Agent of a voting kiosk.
type Kiosk struct {
	Display string `json:"display"`
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Mobile  bool   `json:"mobile"`
}

// Describe parses a User-Agent header. Display has the form "Browser on OS"
// (e.g. "Chrome on Linux x86_64", "Safari on iPhone").
func Describe(userAgentString string) Kiosk {
	if strings.TrimSpace(userAgentString) == "" {
		return Kiosk{Display: "Unknown Device"}
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OS()
	k := Kiosk{Browser: browser, OS: os, Mobile: ua.Mobile()}

	if k.Mobile {
		if platform := ua.Platform(); platform != "" {
			k.Display = strings.TrimSpace(browser + " on " + platform)
			return k
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	k.Display = strings.TrimSpace(browser + " on " + os)
	return k
}
