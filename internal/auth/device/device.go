// Package device derives a coarse device descriptor from a raw user-agent
// string. Match order matters: Edge advertises Chrome, Chrome advertises
// Safari, and Android advertises Linux, so the more specific token is always
// tried first.
package device

import (
	"regexp"
	"strings"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
)

const (
	TypeMobile  = "Mobile"
	TypeTablet  = "Tablet"
	TypeDesktop = "Desktop"

	Unknown = "Unknown"
)

var browserPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"Edge", regexp.MustCompile(`Edge?/([0-9.]+)`)},
	{"Chrome", regexp.MustCompile(`Chrome/([0-9.]+)`)},
	{"Firefox", regexp.MustCompile(`Firefox/([0-9.]+)`)},
	{"Safari", regexp.MustCompile(`Version/([0-9.]+).*Safari`)},
}

// Parse classifies the user agent. Unknown fields come back as "Unknown";
// an empty user agent yields an all-Unknown desktop descriptor.
func Parse(ua string) domain.DeviceInfo {
	browser, version := parseBrowser(ua)
	deviceType := parseType(ua)

	return domain.DeviceInfo{
		Browser:        browser,
		BrowserVersion: version,
		OS:             parseOS(ua),
		DeviceType:     deviceType,
		Mobile:         deviceType != TypeDesktop,
	}
}

func parseBrowser(ua string) (name, version string) {
	for _, p := range browserPatterns {
		if m := p.re.FindStringSubmatch(ua); m != nil {
			return p.name, m[1]
		}
	}
	// Safari without a Version/ token still identifies itself.
	if strings.Contains(ua, "Safari") {
		return "Safari", ""
	}
	return Unknown, ""
}

func parseOS(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"), strings.Contains(ua, "like Mac OS X"):
		return "iOS"
	case strings.Contains(ua, "Mac OS X"), strings.Contains(ua, "Macintosh"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return Unknown
	}
}

func parseType(ua string) string {
	switch {
	case strings.Contains(ua, "iPad"), strings.Contains(ua, "Tablet"):
		return TypeTablet
	case strings.Contains(ua, "Android") && !strings.Contains(ua, "Mobile"):
		// Android without the Mobile token is a tablet form factor.
		return TypeTablet
	case strings.Contains(ua, "Mobi"), strings.Contains(ua, "iPhone"):
		return TypeMobile
	default:
		return TypeDesktop
	}
}
