// Package catalog tracks the OData services a user has explored.
//
// The catalog stores service facts (root URL, protocol version, model
// counts), never query results or diagrams. Two backends implement the
// Store interface:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
//
// Entries are keyed by the normalized service root, so re-registering a
// service updates its record in place.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/odex-dev/odex/pkg/edm"
)

// Sentinel errors for catalog operations.
var (
	// ErrNotFound is returned when a service is not in the catalog.
	ErrNotFound = errors.New("service not found")
)

// Entry is one cataloged service.
type Entry struct {
	// ID is a stable identifier assigned on first registration.
	ID string `json:"id" bson:"_id"`

	// ServiceURL is the normalized service root.
	ServiceURL string `json:"service_url" bson:"service_url"`

	// Name is an optional user-assigned label.
	Name string `json:"name,omitempty" bson:"name,omitempty"`

	// Version is the detected protocol version.
	Version edm.Version `json:"version,omitempty" bson:"version,omitempty"`

	// EntityCount and RelationshipCount summarize the service's model.
	EntityCount       int `json:"entity_count" bson:"entity_count"`
	RelationshipCount int `json:"relationship_count" bson:"relationship_count"`

	// FirstSeen and LastSeen track registration times.
	FirstSeen time.Time `json:"first_seen" bson:"first_seen"`
	LastSeen  time.Time `json:"last_seen" bson:"last_seen"`
}

// New creates an entry for a service with a fresh ID and both timestamps set
// to now.
func New(serviceURL, name string) Entry {
	now := time.Now().UTC()
	return Entry{
		ID:         uuid.NewString(),
		ServiceURL: serviceURL,
		Name:       name,
		FirstSeen:  now,
		LastSeen:   now,
	}
}

// Store persists catalog entries.
//
// Upsert inserts a new entry or updates the existing one for the same
// ServiceURL, preserving the original ID and FirstSeen. Get looks up by
// service URL and returns [ErrNotFound] when absent. List returns entries
// ordered by most recent LastSeen.
type Store interface {
	Upsert(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, serviceURL string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, serviceURL string) error
	Close(ctx context.Context) error
}
