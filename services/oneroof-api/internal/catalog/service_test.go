package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/libs/appwrite/appwritetest"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

func newReader(t *testing.T, srv *appwritetest.Server) *Reader {
	t.Helper()
	gw, err := appwrite.New(appwrite.Config{
		Endpoint:             srv.Endpoint(),
		Project:              "test-project",
		Key:                  "server-key",
		DatabaseID:           "db",
		ServicesCollectionID: "services",
		StorageBucketID:      "storage",
	})
	if err != nil {
		t.Fatalf("appwrite.New failed: %v", err)
	}
	return NewReader(gw)
}

func TestListServices(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	reader := newReader(t, srv)

	first := srv.SeedDocument("services", map[string]any{
		"name": "Plumbing", "description": "Pipes and taps",
		"image": "https://cdn.example.com/plumbing.png", "price": 49.5, "available": true,
	})
	second := srv.SeedDocument("services", map[string]any{
		"name": "Cleaning", "description": "Deep clean",
		"image": "file-42", "price": 30.0, "available": false,
	})

	services, err := reader.ListServices(context.Background())
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(services))
	}

	// Store insertion order is preserved.
	if services[0].ID != first || services[1].ID != second {
		t.Fatalf("unexpected order: %s, %s", services[0].ID, services[1].ID)
	}

	seen := map[string]bool{}
	for _, svc := range services {
		if seen[svc.ID] {
			t.Fatalf("duplicate service id %s", svc.ID)
		}
		seen[svc.ID] = true
		if svc.Price < 0 {
			t.Fatalf("negative price on %s", svc.ID)
		}
	}

	// Absolute image URLs pass through untouched.
	if services[0].ImageURL != "https://cdn.example.com/plumbing.png" {
		t.Fatalf("absolute image url rewritten: %s", services[0].ImageURL)
	}
	// Bare file ids resolve against the storage bucket.
	if !strings.Contains(services[1].ImageURL, "/storage/buckets/storage/files/file-42/view") {
		t.Fatalf("file id not resolved: %s", services[1].ImageURL)
	}
}

func TestGetService(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	reader := newReader(t, srv)

	id := srv.SeedDocument("services", map[string]any{
		"name": "Plumbing", "description": "Pipes", "image": "", "price": 49.5, "available": true,
	})

	svc, err := reader.GetService(context.Background(), id)
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if svc.Name != "Plumbing" || svc.Price != 49.5 || !svc.Available {
		t.Fatalf("unexpected service: %+v", svc)
	}

	if _, err := reader.GetService(context.Background(), "missing"); !errors.Is(err, model.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestNegativePriceRejected(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	reader := newReader(t, srv)

	srv.SeedDocument("services", map[string]any{
		"name": "Broken", "price": -1.0, "available": true,
	})

	if _, err := reader.ListServices(context.Background()); !errors.Is(err, model.ErrCatalogFetch) {
		t.Fatalf("expected ErrCatalogFetch for negative price, got %v", err)
	}
}
