package device

import (
	"strings"

	"github.com/mileusna/useragent"
)

// Unknown is the label used when a user-agent string cannot be parsed. An
// unparsable agent never fails a login, it just degrades the session record.
const Unknown = "Unknown"

// Info is the coarse device fingerprint recorded on a session.
type Info struct {
	OS      string
	Browser string
}

// Parse extracts OS and browser family from a raw User-Agent header.
func Parse(userAgent string) Info {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return Info{OS: Unknown, Browser: Unknown}
	}

	ua := useragent.Parse(userAgent)

	info := Info{OS: ua.OS, Browser: ua.Name}
	if info.OS == "" {
		info.OS = Unknown
	}
	if info.Browser == "" {
		info.Browser = Unknown
	}
	return info
}
