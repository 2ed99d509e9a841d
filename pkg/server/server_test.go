package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/odex-dev/odex/pkg/cache"
	"github.com/odex-dev/odex/pkg/catalog"
	"github.com/odex-dev/odex/pkg/diagram"
	"github.com/odex-dev/odex/pkg/pipeline"
)

const testEDMX = `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
  <edmx:DataServices>
    <Schema Namespace="Demo" xmlns="http://docs.oasis-open.org/odata/ns/edm">
      <EntityType Name="Product">
        <Key><PropertyRef Name="ID"/></Key>
        <Property Name="ID" Type="Edm.Int32" Nullable="false"/>
        <Property Name="Name" Type="Edm.String"/>
      </EntityType>
      <EntityContainer Name="Container">
        <EntitySet Name="Products" EntityType="Demo.Product"/>
      </EntityContainer>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`

// newUpstream fakes an OData service serving metadata and one entity set.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/$metadata":
			w.Header().Set("Content-Type", "application/xml")
			io.WriteString(w, testEDMX)
		case "/Products":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"value": [{"ID": 1, "Name": "Chai"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(Options{
		Runner:  pipeline.NewRunner(cache.NewMemoryCache(), nil, logger),
		Catalog: catalog.NewMemoryStore(),
		Logger:  logger,
	})

	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)
	return srv, api
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	_, api := newTestServer(t)

	var body map[string]string
	if status := getJSON(t, api.URL+"/healthz", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestMetadataEndpoint(t *testing.T) {
	upstream := newUpstream(t)
	_, api := newTestServer(t)

	var body struct {
		Version     string `json:"version"`
		EntityTypes []struct {
			Name string `json:"Name"`
		} `json:"entity_types"`
	}
	status := getJSON(t, api.URL+"/api/metadata?url="+upstream.URL, &body)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body.Version != "4.0" {
		t.Errorf("version = %q, want 4.0", body.Version)
	}
	if len(body.EntityTypes) != 1 {
		t.Errorf("entity_types = %d, want 1", len(body.EntityTypes))
	}
}

func TestMetadataEndpointBadURL(t *testing.T) {
	_, api := newTestServer(t)

	if status := getJSON(t, api.URL+"/api/metadata?url=", nil); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	upstream := newUpstream(t)
	_, api := newTestServer(t)

	var body struct {
		Diagram struct {
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
		} `json:"diagram"`
		DiagramHash string `json:"diagram_hash"`
	}
	status := postJSON(t, api.URL+"/api/layout",
		`{"service_url": "`+upstream.URL+`", "formats": ["json"]}`, &body)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(body.Diagram.Nodes) != 1 || body.Diagram.Nodes[0].ID != "Product" {
		t.Errorf("diagram nodes = %+v", body.Diagram.Nodes)
	}
	if body.DiagramHash == "" {
		t.Error("diagram_hash is empty")
	}
}

func TestLayoutEndpointValidation(t *testing.T) {
	_, api := newTestServer(t)

	if status := postJSON(t, api.URL+"/api/layout", `{}`, nil); status != http.StatusBadRequest {
		t.Errorf("missing service_url: status = %d, want 400", status)
	}
	if status := postJSON(t, api.URL+"/api/layout",
		`{"service_url": "https://example.com", "formats": ["gif"]}`, nil); status != http.StatusBadRequest {
		t.Errorf("bad format: status = %d, want 400", status)
	}
}

func TestLayoutEndpointTopology(t *testing.T) {
	_, api := newTestServer(t)

	var body diagram.Result
	status := postJSON(t, api.URL+"/api/layout",
		`{
			"nodes": [
				{"id": "a", "position": {"x": 0, "y": 0}},
				{"id": "b", "position": {"x": 400, "y": 0}}
			],
			"edges": [{"id": "e1", "source": "a", "target": "b"}]
		}`, &body)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	if len(body.Nodes) != 2 || len(body.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(body.Nodes), len(body.Edges))
	}
	if body.Edges[0].SourceConnectionPointID == "" || body.Edges[0].TargetConnectionPointID == "" {
		t.Error("edge endpoints not annotated")
	}

	src := body.Nodes[0].ConnectionPoints
	tgt := body.Nodes[1].ConnectionPoints
	if len(src) != 1 || src[0].Side != diagram.SideRight {
		t.Errorf("source points = %+v, want one on right", src)
	}
	if len(tgt) != 1 || tgt[0].Side != diagram.SideLeft {
		t.Errorf("target points = %+v, want one on left", tgt)
	}
	if src[0].OffsetPercent != 50 {
		t.Errorf("source offset = %v, want 50", src[0].OffsetPercent)
	}
}

func TestLayoutEndpointTopologyDuplicateID(t *testing.T) {
	_, api := newTestServer(t)

	status := postJSON(t, api.URL+"/api/layout",
		`{
			"nodes": [
				{"id": "a", "position": {"x": 0, "y": 0}},
				{"id": "a", "position": {"x": 400, "y": 0}}
			],
			"edges": []
		}`, nil)
	if status != http.StatusBadRequest {
		t.Errorf("duplicate node ID: status = %d, want 400", status)
	}
}

func TestQueryEndpoint(t *testing.T) {
	upstream := newUpstream(t)
	_, api := newTestServer(t)

	var body struct {
		Rows []map[string]any `json:"rows"`
	}
	status := postJSON(t, api.URL+"/api/query",
		`{"service_url": "`+upstream.URL+`", "query": {"entity_set": "Products"}}`, &body)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(body.Rows) != 1 || body.Rows[0]["Name"] != "Chai" {
		t.Errorf("rows = %+v", body.Rows)
	}
}

func TestQueryEndpointInvalid(t *testing.T) {
	upstream := newUpstream(t)
	_, api := newTestServer(t)

	status := postJSON(t, api.URL+"/api/query",
		`{"service_url": "`+upstream.URL+`", "query": {}}`, nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestServicesCatalog(t *testing.T) {
	upstream := newUpstream(t)
	_, api := newTestServer(t)

	// Exploring a service registers it.
	if status := getJSON(t, api.URL+"/api/metadata?url="+upstream.URL, nil); status != http.StatusOK {
		t.Fatalf("metadata status = %d", status)
	}

	var body struct {
		Services []struct {
			ServiceURL  string `json:"service_url"`
			EntityCount int    `json:"entity_count"`
		} `json:"services"`
	}
	if status := getJSON(t, api.URL+"/api/services", &body); status != http.StatusOK {
		t.Fatalf("services status = %d", status)
	}
	if len(body.Services) != 1 {
		t.Fatalf("services = %d, want 1", len(body.Services))
	}
	if body.Services[0].EntityCount != 1 {
		t.Errorf("entity_count = %d, want 1", body.Services[0].EntityCount)
	}

	// Delete removes it.
	req, _ := http.NewRequest(http.MethodDelete, api.URL+"/api/services?url="+upstream.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
}
