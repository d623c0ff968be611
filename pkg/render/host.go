package render

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// LocalSource labels posts whose navigation target stays on the blog.
const LocalSource = "local"

// SourceHost returns the registrable domain of an absolute navigation target,
// e.g. "https://blog.example.co.uk/p/1" -> "example.co.uk". Relative targets
// yield LocalSource.
func SourceHost(target string) string {
	if !strings.Contains(target, "://") {
		return LocalSource
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return LocalSource
	}
	host := u.Hostname()
	if !strings.Contains(host, ".") {
		return host
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return host
	}
	return domain
}
