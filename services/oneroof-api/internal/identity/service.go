// Package identity implements account creation, sign-in/out, and
// current-user resolution against the remote identity provider and the
// user profile collection.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

type Service struct {
	gw     *appwrite.Client
	logger *slog.Logger
}

func New(gw *appwrite.Client, logger *slog.Logger) *Service {
	return &Service{gw: gw, logger: logger}
}

type userDoc struct {
	ID        string `json:"$id,omitempty"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
}

func (d userDoc) toModel() *model.User {
	return &model.User{
		ID:        d.ID,
		AccountID: d.AccountID,
		Email:     d.Email,
		Username:  d.Username,
		AvatarURL: d.Avatar,
	}
}

// CreateAccount creates the remote identity, signs it in, and creates the
// linked profile record. The two writes have no transactional guarantee,
// so a profile failure compensates by deleting the just-created identity.
func (s *Service) CreateAccount(ctx context.Context, email, password, username string) (*model.User, *model.Session, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return nil, nil, fmt.Errorf("%w: email and username required", model.ErrAccountCreation)
	}
	if len(password) < 8 {
		return nil, nil, fmt.Errorf("%w: password must be at least 8 characters", model.ErrAccountCreation)
	}

	acct, err := s.gw.CreateAccount(ctx, uuid.NewString(), email, password, username)
	if err != nil {
		if appwrite.IsConflict(err) {
			return nil, nil, fmt.Errorf("%w: email already registered: %w", model.ErrAccountCreation, err)
		}
		return nil, nil, fmt.Errorf("%w: create identity: %w", model.ErrAccountCreation, err)
	}

	avatarURL := s.gw.InitialsAvatarURL(username)

	sess, err := s.gw.CreateEmailSession(ctx, email, password)
	if err != nil {
		s.compensate(ctx, acct.ID)
		return nil, nil, fmt.Errorf("%w: establish session: %w", model.ErrAccountCreation, err)
	}

	attrs := userDoc{
		AccountID: acct.ID,
		Email:     email,
		Username:  username,
		Avatar:    avatarURL,
	}
	var created userDoc
	cfg := s.gw.Config()
	if err := s.gw.CreateDocument(ctx, cfg.UserCollectionID, uuid.NewString(), attrs, &created); err != nil {
		s.compensate(ctx, acct.ID)
		return nil, nil, fmt.Errorf("%w: create profile: %w", model.ErrAccountCreation, err)
	}

	return created.toModel(), &model.Session{ID: sess.ID, UserID: sess.UserID, Secret: sess.Secret}, nil
}

// compensate rolls back a half-completed sign-up by deleting the identity
// with the server key. Failure here leaves an orphaned identity, which is
// logged for manual cleanup.
func (s *Service) compensate(ctx context.Context, accountID string) {
	if err := s.gw.DeleteUser(ctx, accountID); err != nil {
		s.logger.Error("sign-up compensation failed, orphaned identity remains",
			"account_id", accountID, "err", err)
	}
}

// Authenticate exchanges credentials for a session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Session, error) {
	sess, err := s.gw.CreateEmailSession(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if appwrite.IsUnauthorized(err) {
			return nil, fmt.Errorf("%w: invalid credentials", model.ErrAuthentication)
		}
		return nil, fmt.Errorf("%w: %w", model.ErrAuthentication, err)
	}
	return &model.Session{ID: sess.ID, UserID: sess.UserID, Secret: sess.Secret}, nil
}

// ResolveCurrentUser looks up the profile behind a session secret. A
// missing, expired, or unmatched session yields (nil, false, nil), the
// explicit unauthenticated outcome, distinct from a system failure.
func (s *Service) ResolveCurrentUser(ctx context.Context, sessionSecret string) (*model.User, bool, error) {
	if sessionSecret == "" {
		return nil, false, nil
	}

	acct, err := s.gw.WithSession(sessionSecret).GetAccount(ctx)
	if err != nil {
		if appwrite.IsUnauthorized(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: resolve identity: %w", model.ErrTransport, err)
	}

	cfg := s.gw.Config()
	var list struct {
		Total     int       `json:"total"`
		Documents []userDoc `json:"documents"`
	}
	queries := []appwrite.Query{appwrite.Equal("accountId", acct.ID), appwrite.Limit(1)}
	if err := s.gw.ListDocuments(ctx, cfg.UserCollectionID, queries, &list); err != nil {
		return nil, false, fmt.Errorf("%w: lookup profile: %w", model.ErrTransport, err)
	}
	if len(list.Documents) == 0 {
		return nil, false, nil
	}
	return list.Documents[0].toModel(), true, nil
}

// EndSession invalidates the session behind the secret.
func (s *Service) EndSession(ctx context.Context, sessionSecret string) error {
	if sessionSecret == "" {
		return fmt.Errorf("%w: no active session", model.ErrSession)
	}
	if err := s.gw.WithSession(sessionSecret).DeleteSession(ctx, appwrite.CurrentSession); err != nil {
		if appwrite.IsUnauthorized(err) || appwrite.IsNotFound(err) {
			return fmt.Errorf("%w: no active session: %w", model.ErrSession, err)
		}
		return fmt.Errorf("%w: end session: %w", model.ErrTransport, err)
	}
	return nil
}
