package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/libs/appwrite/appwritetest"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

func newService(t *testing.T, srv *appwritetest.Server) *Service {
	t.Helper()
	gw, err := appwrite.New(appwrite.Config{
		Endpoint:         srv.Endpoint(),
		Project:          "test-project",
		Platform:         "com.example.test",
		Key:              "server-key",
		DatabaseID:       "db",
		UserCollectionID: "users",
	})
	if err != nil {
		t.Fatalf("appwrite.New failed: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(gw, logger)
}

func TestCreateAccount(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	svc := newService(t, srv)
	ctx := context.Background()

	user, sess, err := svc.CreateAccount(ctx, "a@b.com", "pw123456", "alice")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if user.Username != "alice" || user.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.AvatarURL == "" {
		t.Fatal("expected a derived avatar url")
	}
	if user.AccountID == "" || user.ID == "" {
		t.Fatalf("expected identity and profile ids, got %+v", user)
	}
	if sess.Secret == "" {
		t.Fatal("expected an active session")
	}

	// The session from sign-up resolves straight to the new user.
	resolved, ok, err := svc.ResolveCurrentUser(ctx, sess.Secret)
	if err != nil || !ok {
		t.Fatalf("ResolveCurrentUser failed: ok=%v err=%v", ok, err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("resolved user %s, want %s", resolved.ID, user.ID)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	svc := newService(t, srv)
	ctx := context.Background()

	if _, _, err := svc.CreateAccount(ctx, "", "pw123456", "alice"); !errors.Is(err, model.ErrAccountCreation) {
		t.Fatalf("expected ErrAccountCreation for empty email, got %v", err)
	}
	if _, _, err := svc.CreateAccount(ctx, "a@b.com", "short", "alice"); !errors.Is(err, model.ErrAccountCreation) {
		t.Fatalf("expected ErrAccountCreation for short password, got %v", err)
	}
	if srv.AccountCount() != 0 {
		t.Fatal("validation failures must not create identities")
	}
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	svc := newService(t, srv)
	ctx := context.Background()

	if _, _, err := svc.CreateAccount(ctx, "a@b.com", "pw123456", "alice"); err != nil {
		t.Fatalf("first CreateAccount failed: %v", err)
	}
	_, _, err := svc.CreateAccount(ctx, "a@b.com", "pw123456", "other")
	if !errors.Is(err, model.ErrAccountCreation) {
		t.Fatalf("expected ErrAccountCreation, got %v", err)
	}
	if !appwrite.IsConflict(err) {
		t.Fatalf("expected the conflict to stay visible in the chain, got %v", err)
	}
	if srv.AccountCount() != 1 {
		t.Fatalf("expected 1 identity, got %d", srv.AccountCount())
	}
}

func TestCreateAccountCompensatesOnProfileFailure(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	svc := newService(t, srv)
	ctx := context.Background()

	srv.FailNextDocumentCreate("users", http.StatusInternalServerError)

	_, _, err := svc.CreateAccount(ctx, "a@b.com", "pw123456", "alice")
	if !errors.Is(err, model.ErrAccountCreation) {
		t.Fatalf("expected ErrAccountCreation, got %v", err)
	}
	if srv.AccountCount() != 0 {
		t.Fatalf("half-completed sign-up must delete the identity, %d left", srv.AccountCount())
	}
	if srv.DocumentCount("users") != 0 {
		t.Fatal("no profile document should remain")
	}
}

func TestAuthenticate(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	svc := newService(t, srv)
	ctx := context.Background()

	if _, _, err := svc.CreateAccount(ctx, "a@b.com", "pw123456", "alice"); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	sess, err := svc.Authenticate(ctx, "a@b.com", "pw123456")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if sess.Secret == "" {
		t.Fatal("expected session secret")
	}

	if _, err := svc.Authenticate(ctx, "a@b.com", "wrong-pass"); !errors.Is(err, model.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestResolveCurrentUserUnauthenticated(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	svc := newService(t, srv)
	ctx := context.Background()

	// No secret at all.
	user, ok, err := svc.ResolveCurrentUser(ctx, "")
	if user != nil || ok || err != nil {
		t.Fatalf("empty secret: got (%v, %v, %v), want (nil, false, nil)", user, ok, err)
	}

	// A secret the store does not recognize.
	user, ok, err = svc.ResolveCurrentUser(ctx, "bogus")
	if user != nil || ok || err != nil {
		t.Fatalf("invalid secret: got (%v, %v, %v), want (nil, false, nil)", user, ok, err)
	}
}

func TestEndSession(t *testing.T) {
	srv := appwritetest.New()
	defer srv.Close()
	svc := newService(t, srv)
	ctx := context.Background()

	_, sess, err := svc.CreateAccount(ctx, "a@b.com", "pw123456", "alice")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := svc.EndSession(ctx, sess.Secret); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if _, ok, _ := svc.ResolveCurrentUser(ctx, sess.Secret); ok {
		t.Fatal("session must be unusable after EndSession")
	}

	if err := svc.EndSession(ctx, sess.Secret); !errors.Is(err, model.ErrSession) {
		t.Fatalf("ending a dead session should report ErrSession, got %v", err)
	}
	if err := svc.EndSession(ctx, ""); !errors.Is(err, model.ErrSession) {
		t.Fatalf("empty secret should report ErrSession, got %v", err)
	}
}
