package odata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/odex-dev/odex/pkg/cache"
	"github.com/odex-dev/odex/pkg/edm"
	"github.com/odex-dev/odex/pkg/httputil"
	"github.com/odex-dev/odex/pkg/observability"
)

const httpTimeout = 30 * time.Second

// acceptQuery prefers JSON but keeps Atom/XML acceptable for V2 services
// that predate JSON responses.
const acceptQuery = "application/json;q=1.0, application/atom+xml;q=0.8, application/xml;q=0.7"

// Client fetches metadata and executes queries against OData services.
// Responses flow through the configured cache; transient failures are
// retried with exponential backoff.
type Client struct {
	http   *http.Client
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// NewClient creates a client. A nil cache disables caching, a nil keyer
// selects the default key schema, and a nil logger discards output.
func NewClient(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Client{
		http:   &http.Client{Timeout: httpTimeout},
		cache:  c,
		keyer:  keyer,
		logger: logger,
	}
}

// FetchMetadata retrieves and parses the service's $metadata document.
// The raw EDMX is cached by service root; pass refresh to bypass the cache.
func (c *Client) FetchMetadata(ctx context.Context, svc Service, refresh bool) (*edm.Document, error) {
	key := c.keyer.MetadataKey(svc.Root)

	if !refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			if doc, err := edm.ParseBytes(data); err == nil {
				c.logger.Debug("metadata cache hit", "service", svc.Root)
				return doc, nil
			}
			// Unparseable cache entry: fall through and refetch.
		}
	}

	data, _, err := c.get(ctx, svc.MetadataURL(), "application/xml")
	if err != nil {
		return nil, err
	}

	doc, err := edm.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(ctx, key, data, cache.TTLMetadata)
	c.logger.Debug("fetched metadata",
		"service", svc.Root,
		"version", doc.Version,
		"entity_types", len(doc.EntityTypes()))
	return doc, nil
}

// DetectVersion determines the service's protocol version, preferring the
// metadata document and falling back to the OData-Version response header
// of the service root.
func (c *Client) DetectVersion(ctx context.Context, svc Service) (edm.Version, error) {
	if doc, err := c.FetchMetadata(ctx, svc, false); err == nil {
		return doc.Version, nil
	}

	_, header, err := c.get(ctx, svc.Root, acceptQuery)
	if err != nil {
		return "", err
	}
	return versionFromHeader(header)
}

// versionFromHeader reads the version headers set by V4 (OData-Version) and
// V2/V3 (DataServiceVersion) services.
func versionFromHeader(h http.Header) (edm.Version, error) {
	for _, name := range []string{"OData-Version", "DataServiceVersion"} {
		switch v := h.Get(name); {
		case v == "":
		case v[0] == '4':
			return edm.V4, nil
		case v[0] == '3':
			return edm.V3, nil
		case v[0] == '2' || v[0] == '1':
			return edm.V2, nil
		}
	}
	return "", edm.ErrUnknownVersion
}

// Execute runs a query and returns the normalized result set. Results are
// cached briefly (see [cache.TTLQuery]); pass refresh to bypass.
func (c *Client) Execute(ctx context.Context, svc Service, q Query, refresh bool) (*ResultSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := c.keyer.QueryKey(svc.Root, q.Encode(svc.Version))
	if !refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			var rs ResultSet
			if err := json.Unmarshal(data, &rs); err == nil {
				return &rs, nil
			}
		}
	}

	body, header, err := c.get(ctx, q.URL(svc), acceptQuery)
	if err != nil {
		return nil, err
	}

	rs, err := Normalize(body, header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rs); err == nil {
		_ = c.cache.Set(ctx, key, data, cache.TTLQuery)
	}
	c.logger.Debug("executed query",
		"entity_set", q.EntitySet,
		"rows", len(rs.Rows))
	return rs, nil
}

// get performs a GET with retry, returning body and headers.
func (c *Client) get(ctx context.Context, url, accept string) ([]byte, http.Header, error) {
	var (
		body   []byte
		header http.Header
	)

	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", accept)

		observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
			return httputil.Retryable(err)
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

		if err := httputil.CheckStatus(resp.StatusCode); err != nil {
			return err
		}

		body, err = io.ReadAll(resp.Body)
		header = resp.Header
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return body, header, nil
}
