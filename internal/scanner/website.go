package scanner

import (
	"net"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/publicsuffix"
)

var (
	ErrMissingWebsite = eris.New("website is required")
	ErrInvalidWebsite = eris.New("website is not a valid http(s) url")
)

// DefaultPaths are the pages visited on every scan, in order.
var DefaultPaths = []string{
	"/",
	"/contact",
	"/contact-us",
	"/contactus",
	"/about",
	"/about-us",
	"/aboutus",
	"/team",
	"/our-team",
	"/leadership",
	"/management",
	"/support",
	"/help",
	"/locations",
	"/offices",
	"/company",
	"/impressum",
}

// NormalizeWebsite turns a user-supplied website into an absolute origin such as
// "https://www.acme.com" and its registrable root domain ("acme.com"). A missing scheme
// defaults to https.
func NormalizeWebsite(raw string) (origin, rootDomain string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrMissingWebsite
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimLeft(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", eris.Wrapf(ErrInvalidWebsite, "parse website %q: %v", raw, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", "", eris.Wrapf(ErrInvalidWebsite, "unsupported scheme %q", u.Scheme)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" || strings.ContainsAny(host, " \t") {
		return "", "", eris.Wrapf(ErrInvalidWebsite, "missing host in %q", raw)
	}

	hostport := host
	if port := u.Port(); port != "" {
		hostport = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		hostport = "[" + host + "]"
	}
	return scheme + "://" + hostport, RootDomain(host), nil
}

// RootDomain returns the registrable domain for host, or host itself when it has no
// public suffix (IP addresses, localhost).
func RootDomain(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if net.ParseIP(host) != nil {
		return host
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return root
}

func pageURL(origin, path string) string {
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(path, "/")
}
