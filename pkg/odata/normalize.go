package odata

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ResultSet is the version-independent shape of a query response. The same
// structure comes back whether the service spoke V4 JSON, V2 JSON, or Atom.
type ResultSet struct {
	// Columns lists the property names present in Rows, sorted.
	Columns []string `json:"columns"`

	// Rows holds one map per entity, keyed by property name.
	Rows []map[string]any `json:"rows"`

	// Count is the server-reported total across all pages, or -1 when the
	// service did not report one.
	Count int64 `json:"count"`
}

// Normalize converts a raw response body into a [ResultSet], dispatching on
// the Content-Type header. Atom and XML bodies go through the feed parser;
// everything else is treated as JSON.
func Normalize(body []byte, contentType string) (*ResultSet, error) {
	if strings.Contains(contentType, "atom") || strings.Contains(contentType, "xml") {
		return normalizeAtom(body)
	}
	return normalizeJSON(body)
}

// normalizeJSON handles both response envelopes: V4 wraps rows in "value"
// with an optional "@odata.count", V2/V3 wrap them in "d" (or "d.results")
// with "__count" as a string.
func normalizeJSON(body []byte) (*ResultSet, error) {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	rs := &ResultSet{Count: -1}

	var raw any
	switch {
	case envelope["value"] != nil:
		raw = envelope["value"]
		if c, ok := envelope["@odata.count"].(float64); ok {
			rs.Count = int64(c)
		}
	case envelope["d"] != nil:
		raw = envelope["d"]
		if inner, ok := raw.(map[string]any); ok {
			if inner["results"] != nil {
				raw = inner["results"]
			}
			if c, ok := inner["__count"].(string); ok {
				if n, err := strconv.ParseInt(c, 10, 64); err == nil {
					rs.Count = n
				}
			}
		}
	default:
		// A single entity without an envelope.
		raw = []any{envelope}
	}

	items, ok := raw.([]any)
	if !ok {
		if m, isMap := raw.(map[string]any); isMap {
			items = []any{m}
		} else {
			return nil, fmt.Errorf("%w: unexpected response shape", ErrInvalidQuery)
		}
	}

	cols := map[string]struct{}{}
	for _, item := range items {
		entity, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make(map[string]any, len(entity))
		for k, v := range entity {
			if !scalarProperty(k, v) {
				continue
			}
			row[k] = v
			cols[k] = struct{}{}
		}
		rs.Rows = append(rs.Rows, row)
	}

	rs.Columns = sortedKeys(cols)
	return rs, nil
}

// scalarProperty reports whether a response key/value pair is a plain entity
// property. Annotation keys ("@odata.etag", "__metadata") and nested objects
// (deferred navigation links, expanded entities) are dropped.
func scalarProperty(key string, value any) bool {
	if strings.HasPrefix(key, "@") || strings.HasPrefix(key, "__") {
		return false
	}
	switch value.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// atomFeed mirrors the subset of the Atom feed format used by V2/V3
// services: entries carry their properties under content/m:properties.
type atomFeed struct {
	Count   string `xml:"count"`
	Entries []struct {
		Content struct {
			Properties propBag `xml:"properties"`
		} `xml:"content"`
		// V4 Atom nests properties directly under entry for media entries;
		// V2 always uses content. Both are tried.
		Properties propBag `xml:"properties"`
	} `xml:"entry"`
}

// propBag collects child elements of an m:properties node as name/value
// pairs, preserving null markers.
type propBag struct {
	props map[string]any
	order []string
}

func (b *propBag) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	b.props = map[string]any{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var isNull bool
			for _, attr := range t.Attr {
				if attr.Name.Local == "null" && attr.Value == "true" {
					isNull = true
				}
			}
			var text string
			if err := d.DecodeElement(&text, &t); err != nil {
				return err
			}
			name := t.Name.Local
			if isNull {
				b.props[name] = nil
			} else {
				b.props[name] = text
			}
			b.order = append(b.order, name)
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

func normalizeAtom(body []byte) (*ResultSet, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decoding atom feed: %w", err)
	}

	rs := &ResultSet{Count: -1}
	if n, err := strconv.ParseInt(strings.TrimSpace(feed.Count), 10, 64); err == nil {
		rs.Count = n
	}

	cols := map[string]struct{}{}
	for _, entry := range feed.Entries {
		bag := entry.Content.Properties
		if len(bag.props) == 0 {
			bag = entry.Properties
		}
		row := make(map[string]any, len(bag.props))
		for name, value := range bag.props {
			row[name] = value
			cols[name] = struct{}{}
		}
		rs.Rows = append(rs.Rows, row)
	}

	rs.Columns = sortedKeys(cols)
	return rs, nil
}
