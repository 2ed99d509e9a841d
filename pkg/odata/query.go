package odata

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/odex-dev/odex/pkg/edm"
)

// ErrInvalidQuery is returned by [Query.Validate] for unusable queries.
var ErrInvalidQuery = errors.New("invalid query")

// Query is an ad-hoc OData query against one entity set. The zero value
// selects everything; fields map 1:1 to system query options.
type Query struct {
	EntitySet string   `json:"entity_set"`
	Select    []string `json:"select,omitempty"`
	Filter    string   `json:"filter,omitempty"`
	OrderBy   string   `json:"orderby,omitempty"`
	Expand    []string `json:"expand,omitempty"`
	Top       int      `json:"top,omitempty"`
	Skip      int      `json:"skip,omitempty"`
	Count     bool     `json:"count,omitempty"`
}

// Validate checks that the query can be encoded.
func (q Query) Validate() error {
	if q.EntitySet == "" {
		return fmt.Errorf("%w: entity set is required", ErrInvalidQuery)
	}
	if q.Top < 0 {
		return fmt.Errorf("%w: top must not be negative", ErrInvalidQuery)
	}
	if q.Skip < 0 {
		return fmt.Errorf("%w: skip must not be negative", ErrInvalidQuery)
	}
	return nil
}

// Encode renders the system query options as a URL query string, in a fixed
// option order so the same query always yields the same string (queries are
// used as cache keys). The count option is the one version-dependent piece:
// V4 uses $count=true, V2/V3 use $inlinecount=allpages.
func (q Query) Encode(version edm.Version) string {
	var opts []string
	add := func(name, value string) {
		opts = append(opts, name+"="+url.QueryEscape(value))
	}

	if len(q.Select) > 0 {
		add("$select", strings.Join(q.Select, ","))
	}
	if q.Filter != "" {
		add("$filter", q.Filter)
	}
	if q.OrderBy != "" {
		add("$orderby", q.OrderBy)
	}
	if len(q.Expand) > 0 {
		add("$expand", strings.Join(q.Expand, ","))
	}
	if q.Top > 0 {
		add("$top", strconv.Itoa(q.Top))
	}
	if q.Skip > 0 {
		add("$skip", strconv.Itoa(q.Skip))
	}
	if q.Count {
		if version == edm.V4 {
			add("$count", "true")
		} else {
			add("$inlinecount", "allpages")
		}
	}

	return strings.Join(opts, "&")
}

// URL returns the full request URL for the query against a service.
func (q Query) URL(svc Service) string {
	u := svc.CollectionURL(q.EntitySet)
	if encoded := q.Encode(svc.Version); encoded != "" {
		u += "?" + encoded
	}
	return u
}
