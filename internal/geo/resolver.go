package geo

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/oschwald/maxminddb-golang"
)

// Region labels used when no database lookup is possible or useful.
const (
	RegionUnknown  = "Unknown"
	RegionInternal = "LAN"
)

// Resolver maps a client IP to a human-readable region label.
type Resolver interface {
	RegionForIP(ip string) string
}

// city is the subset of the MaxMind city database we read.
type city struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// MaxMindResolver resolves regions from a MaxMind city database. A nil reader
// is valid and degrades every lookup to RegionUnknown, so the service can run
// without a database on disk.
type MaxMindResolver struct {
	reader *maxminddb.Reader
	logger *slog.Logger
}

func NewMaxMindResolver(dbPath string, logger *slog.Logger) (*MaxMindResolver, error) {
	if dbPath == "" {
		logger.Warn("no geoip database configured, regions will be unresolved")
		return &MaxMindResolver{logger: logger}, nil
	}

	reader, err := maxminddb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open geoip database %q: %w", dbPath, err)
	}

	return &MaxMindResolver{reader: reader, logger: logger}, nil
}

func (r *MaxMindResolver) Close() error {
	if r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

func (r *MaxMindResolver) RegionForIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return RegionUnknown
	}

	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return RegionInternal
	}

	if r.reader == nil {
		return RegionUnknown
	}

	var record city
	if err := r.reader.Lookup(parsed, &record); err != nil {
		r.logger.Warn("geoip lookup failed", slog.String("ip", ip), slog.Any("error", err))
		return RegionUnknown
	}

	country := record.Country.Names["en"]
	cityName := record.City.Names["en"]

	switch {
	case country != "" && cityName != "":
		return country + " " + cityName
	case country != "":
		return country
	case cityName != "":
		return cityName
	default:
		return RegionUnknown
	}
}

// static resolver for tests and deployments without geo data.
type staticResolver struct {
	region string
}

// NewStaticResolver returns a Resolver that answers every lookup with region,
// except the internal-network short circuit which still applies.
func NewStaticResolver(region string) Resolver {
	return &staticResolver{region: region}
}

func (r *staticResolver) RegionForIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return RegionUnknown
	}
	if parsed.IsLoopback() || parsed.IsPrivate() {
		return RegionInternal
	}
	return r.region
}
