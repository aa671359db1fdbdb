package appwrite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/libs/appwrite/appwritetest"
)

func newClient(t *testing.T, srv *appwritetest.Server) *appwrite.Client {
	t.Helper()
	gw, err := appwrite.New(appwrite.Config{
		Endpoint:             srv.Endpoint(),
		Project:              "test-project",
		Platform:             "com.example.test",
		Key:                  "server-key",
		DatabaseID:           "db",
		UserCollectionID:     "users",
		ServicesCollectionID: "services",
		BookingCollectionID:  "bookings",
		StorageBucketID:      "storage",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return gw
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := appwrite.New(appwrite.Config{Project: "p"}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if _, err := appwrite.New(appwrite.Config{Endpoint: "http://localhost/v1"}); err == nil {
		t.Fatal("expected error for missing project")
	}
}

func TestAccountLifecycle(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	gw := newClient(t, srv)
	ctx := context.Background()

	acct, err := gw.CreateAccount(ctx, "acct-1", "a@b.com", "secret123", "alice")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if acct.ID != "acct-1" || acct.Email != "a@b.com" {
		t.Fatalf("unexpected account: %+v", acct)
	}

	if _, err := gw.CreateAccount(ctx, "acct-2", "a@b.com", "secret123", "alice"); !appwrite.IsConflict(err) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}

	sess, err := gw.CreateEmailSession(ctx, "a@b.com", "secret123")
	if err != nil {
		t.Fatalf("CreateEmailSession failed: %v", err)
	}
	if sess.Secret == "" || sess.UserID != "acct-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := gw.CreateEmailSession(ctx, "a@b.com", "wrong"); !appwrite.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}

	got, err := gw.WithSession(sess.Secret).GetAccount(ctx)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.ID != acct.ID {
		t.Fatalf("expected account %s, got %s", acct.ID, got.ID)
	}

	if err := gw.WithSession(sess.Secret).DeleteSession(ctx, appwrite.CurrentSession); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := gw.WithSession(sess.Secret).GetAccount(ctx); !appwrite.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized after sign-out, got %v", err)
	}
}

func TestDocumentCRUDAndQueries(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	gw := newClient(t, srv)
	ctx := context.Background()

	type doc struct {
		ID    string `json:"$id"`
		Owner string `json:"owner"`
		Kind  string `json:"kind"`
	}

	var created doc
	if err := gw.CreateDocument(ctx, "bookings", "doc-1", map[string]string{"owner": "u1", "kind": "x"}, &created); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if created.ID != "doc-1" || created.Owner != "u1" {
		t.Fatalf("unexpected created doc: %+v", created)
	}

	if err := gw.CreateDocument(ctx, "bookings", "doc-2", map[string]string{"owner": "u2", "kind": "x"}, nil); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	var list struct {
		Total     int   `json:"total"`
		Documents []doc `json:"documents"`
	}
	queries := []appwrite.Query{appwrite.Equal("owner", "u1")}
	if err := gw.ListDocuments(ctx, "bookings", queries, &list); err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if list.Total != 1 || list.Documents[0].ID != "doc-1" {
		t.Fatalf("expected only doc-1, got %+v", list)
	}

	var updated doc
	if err := gw.UpdateDocument(ctx, "bookings", "doc-1", map[string]string{"kind": "y"}, &updated); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	if updated.Kind != "y" || updated.Owner != "u1" {
		t.Fatalf("update should merge attributes, got %+v", updated)
	}

	if err := gw.DeleteDocument(ctx, "bookings", "doc-1"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	var missing doc
	if err := gw.GetDocument(ctx, "bookings", "doc-1", &missing); !appwrite.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTransportErrorHasNoStatus(t *testing.T) {
	gw, err := appwrite.New(appwrite.Config{
		Endpoint: "http://127.0.0.1:1/v1",
		Project:  "test-project",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = gw.GetAccount(context.Background())
	if !appwrite.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestURLDerivationIsPure(t *testing.T) {
	// No server at all: URL derivation must not touch the network.
	gw, err := appwrite.New(appwrite.Config{
		Endpoint:        "https://store.example.com/v1",
		Project:         "proj",
		StorageBucketID: "bucket-1",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	avatar := gw.InitialsAvatarURL("Alice Smith")
	if !strings.HasPrefix(avatar, "https://store.example.com/v1/avatars/initials?") {
		t.Fatalf("unexpected avatar url: %s", avatar)
	}
	if !strings.Contains(avatar, "name=Alice+Smith") || !strings.Contains(avatar, "project=proj") {
		t.Fatalf("avatar url missing params: %s", avatar)
	}
	if gw.InitialsAvatarURL("Alice Smith") != avatar {
		t.Fatal("avatar url should be deterministic")
	}

	view := gw.FileViewURL("file-9")
	want := "https://store.example.com/v1/storage/buckets/bucket-1/files/file-9/view?project=proj"
	if view != want {
		t.Fatalf("file view url = %s, want %s", view, want)
	}
}
