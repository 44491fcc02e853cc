package usecase

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// HostKey returns the comparable network location of rawURL: the host in
// ASCII (punycode) lower case, plus the port when one is given. It returns
// "" for URLs without a host.
func HostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	host := u.Hostname()
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	host = strings.ToLower(host)

	if port := u.Port(); port != "" {
		return host + ":" + port
	}
	return host
}
