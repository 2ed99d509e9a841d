package odata

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/odex-dev/odex/pkg/edm"
)

// ErrInvalidServiceURL is returned by [ParseServiceURL] for URLs that cannot
// identify a service root.
var ErrInvalidServiceURL = errors.New("invalid service URL")

// Service identifies an OData service by its root URL, optionally annotated
// with the protocol version once it is known.
type Service struct {
	// Root is the normalized service root, without a trailing slash and
	// without a $metadata suffix.
	Root string

	// Version is the detected protocol version; empty until metadata has
	// been fetched or the version probed.
	Version edm.Version
}

// ParseServiceURL normalizes a user-supplied URL into a service root.
//
// Accepted sloppiness: a missing scheme defaults to https, trailing slashes
// are trimmed, and a pasted metadata URL (".../$metadata") is reduced to its
// service root. The host must be non-empty.
func ParseServiceURL(raw string) (Service, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Service{}, fmt.Errorf("%w: empty", ErrInvalidServiceURL)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return Service{}, fmt.Errorf("%w: %v", ErrInvalidServiceURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Service{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidServiceURL, u.Scheme)
	}
	if u.Host == "" {
		return Service{}, fmt.Errorf("%w: missing host", ErrInvalidServiceURL)
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Path = strings.TrimSuffix(u.Path, "/$metadata")
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	return Service{Root: u.String()}, nil
}

// WithVersion returns a copy of the service annotated with the version.
func (s Service) WithVersion(v edm.Version) Service {
	s.Version = v
	return s
}

// MetadataURL returns the $metadata document URL for the service.
func (s Service) MetadataURL() string {
	return s.Root + "/$metadata"
}

// CollectionURL returns the URL of an entity set under the service root.
func (s Service) CollectionURL(entitySet string) string {
	return s.Root + "/" + url.PathEscape(entitySet)
}
