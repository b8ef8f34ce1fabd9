// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/postify/postify/internal/catalog"
	"github.com/postify/postify/internal/repositories"
	"github.com/postify/postify/internal/services"
	"github.com/postify/postify/internal/shared"
)

// FakeAcquirer is a test double for [services.Acquirer] returning canned
// results or a fixed error.
type FakeAcquirer struct {
	Result   *services.AcquisitionResult
	Err      error
	Requests []services.AcquisitionRequest
}

func (f *FakeAcquirer) Fetch(ctx context.Context, req services.AcquisitionRequest) (*services.AcquisitionResult, error) {
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Result == nil {
		return nil, errors.New("fake acquirer has no result configured")
	}
	return f.Result, nil
}

// NewTestCatalog creates a catalog over an in-memory store with migrations
// applied and the cache hydrated.
func NewTestCatalog(t *testing.T) (*catalog.Catalog, *sql.DB) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	c := catalog.New(repositories.NewTrackRepository(db), repositories.NewMetaRepository(db), nil)
	if err := c.LoadAll(); err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	return c, db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

var _ io.Writer = (*FWriter)(nil)
