package app

import (
	"net/url"
	"strings"
)

// RedactDSN hides passwords in URL and key=value style DSNs so they can be
// stored in run history and printed.
func RedactDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return dsn
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Redacted()
	}
	if !strings.Contains(strings.ToLower(dsn), "password=") {
		return dsn
	}
	parts := strings.Fields(dsn)
	for i := range parts {
		if strings.HasPrefix(strings.ToLower(parts[i]), "password=") {
			parts[i] = "password=xxxxx"
		}
	}
	return strings.Join(parts, " ")
}
