// Package resolver maps a request's host onto the tenant page tree: tenant
// subdomains are rewritten to /{slug}/..., platform hosts pass through.
package resolver

import (
	"net"
	"strings"

	"baiki/internal/slug"
)

// Kind is the outcome of resolving a host.
type Kind string

const (
	KindRoot     Kind = "root"
	KindRewrite  Kind = "rewrite"
	KindRedirect Kind = "redirect"
	KindNotFound Kind = "not_found"
)

// Decision says what to do with a request. Path is set for rewrites, Location
// for redirects, Slug for rewrites and tenant-shaped not-founds.
type Decision struct {
	Kind     Kind
	Path     string
	Location string
	Slug     string
}

// Resolver holds the platform root domain and the paths that are never rewritten.
type Resolver struct {
	rootDomain  string
	passthrough []string
}

func New(rootDomain string, passthroughPrefixes []string) *Resolver {
	prefixes := make([]string, 0, len(passthroughPrefixes))
	for _, p := range passthroughPrefixes {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Resolver{
		rootDomain:  strings.ToLower(strings.TrimSuffix(strings.TrimSpace(rootDomain), ".")),
		passthrough: prefixes,
	}
}

// RootDomain is the normalized platform domain.
func (r *Resolver) RootDomain() string {
	return r.rootDomain
}

// Resolve decides how to route host+path. It has no side effects and does not
// check that the tenant exists.
func (r *Resolver) Resolve(host, path string) Decision {
	if path == "" {
		path = "/"
	}
	if r.isPassthrough(path) {
		return Decision{Kind: KindRoot}
	}

	hostname := normalizeHost(host)
	if hostname == r.rootDomain || hostname == "www."+r.rootDomain {
		return Decision{Kind: KindRoot}
	}

	suffix := "." + r.rootDomain
	if !strings.HasSuffix(hostname, suffix) {
		return Decision{Kind: KindRedirect, Location: "/"}
	}

	label := strings.TrimSuffix(hostname, suffix)
	if label == "" || label == "www" {
		return Decision{Kind: KindRoot}
	}
	if !slug.Valid(label) {
		return Decision{Kind: KindNotFound, Slug: label}
	}
	return Decision{Kind: KindRewrite, Path: "/" + label + path, Slug: label}
}

func (r *Resolver) isPassthrough(path string) bool {
	for _, p := range r.passthrough {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// normalizeHost drops the port and any trailing dot, and lowercases.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
