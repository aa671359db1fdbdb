// Package appwritetest runs an in-memory stand-in for the remote document
// store so that gateway-backed services can be exercised without a live
// deployment. It covers the subset of the API the application uses:
// accounts, email sessions, document CRUD with equality filters, and the
// health endpoint.
package appwritetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type account struct {
	ID       string
	Email    string
	Name     string
	Password string
}

type session struct {
	ID     string
	UserID string
	Secret string
}

type document struct {
	ID        string
	CreatedAt time.Time
	Data      map[string]any
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	accounts    []*account
	sessions    map[string]*session // by secret
	collections map[string][]*document
	failCreate  map[string]int // collection id -> status to return once
}

func New() *Server {
	s := &Server{
		sessions:    map[string]*session{},
		collections: map[string][]*document{},
		failCreate:  map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pass"})
	})
	mux.HandleFunc("/v1/account", s.handleAccount)
	mux.HandleFunc("/v1/account/sessions/email", s.handleCreateSession)
	mux.HandleFunc("/v1/account/sessions/", s.handleDeleteSession)
	mux.HandleFunc("/v1/users/", s.handleDeleteUser)
	mux.HandleFunc("/v1/databases/", s.handleDatabases)
	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint is the base URL to hand to the gateway config.
func (s *Server) Endpoint() string { return s.URL + "/v1" }

// SeedDocument inserts a document directly and returns its generated id.
func (s *Server) SeedDocument(collectionID string, data map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := &document{ID: uuid.NewString(), CreatedAt: time.Now().UTC(), Data: data}
	s.collections[collectionID] = append(s.collections[collectionID], doc)
	return doc.ID
}

// Document returns a stored document's attributes by id.
func (s *Server) Document(collectionID, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.collections[collectionID] {
		if doc.ID == id {
			return doc.Data, true
		}
	}
	return nil, false
}

func (s *Server) DocumentCount(collectionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collectionID])
}

func (s *Server) AccountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// FailNextDocumentCreate makes the next document create in the collection
// fail with the given status. Used to exercise error and compensation paths.
func (s *Server) FailNextDocumentCreate(collectionID string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate[collectionID] = status
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			UserID   string `json:"userId"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "general_argument_invalid", "invalid body")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, acct := range s.accounts {
			if acct.Email == req.Email {
				writeError(w, http.StatusConflict, "user_already_exists", "a user with the same email already exists")
				return
			}
		}
		acct := &account{ID: req.UserID, Email: req.Email, Name: req.Name, Password: req.Password}
		if acct.ID == "" {
			acct.ID = uuid.NewString()
		}
		s.accounts = append(s.accounts, acct)
		writeJSON(w, http.StatusCreated, map[string]any{"$id": acct.ID, "email": acct.Email, "name": acct.Name})
	case http.MethodGet:
		s.mu.Lock()
		defer s.mu.Unlock()
		acct := s.accountForRequest(r)
		if acct == nil {
			writeError(w, http.StatusUnauthorized, "general_unauthorized_scope", "missing or invalid session")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"$id": acct.ID, "email": acct.Email, "name": acct.Name})
	default:
		writeError(w, http.StatusMethodNotAllowed, "general_method_not_allowed", "method not allowed")
	}
}

// accountForRequest resolves the session secret from the request header to
// its account. Callers must hold s.mu.
func (s *Server) accountForRequest(r *http.Request) *account {
	sess, ok := s.sessions[r.Header.Get("X-Appwrite-Session")]
	if !ok {
		return nil
	}
	for _, acct := range s.accounts {
		if acct.ID == sess.UserID {
			return acct
		}
	}
	return nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "general_method_not_allowed", "method not allowed")
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "general_argument_invalid", "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.Email == req.Email && acct.Password == req.Password {
			sess := &session{ID: uuid.NewString(), UserID: acct.ID, Secret: uuid.NewString()}
			s.sessions[sess.Secret] = sess
			writeJSON(w, http.StatusCreated, map[string]any{
				"$id":    sess.ID,
				"userId": sess.UserID,
				"secret": sess.Secret,
				"expire": time.Now().Add(365 * 24 * time.Hour).UTC().Format(time.RFC3339),
			})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "user_invalid_credentials", "invalid credentials")
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "general_method_not_allowed", "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/account/sessions/")
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[r.Header.Get("X-Appwrite-Session")]
	if !ok {
		writeError(w, http.StatusUnauthorized, "general_unauthorized_scope", "missing or invalid session")
		return
	}
	if id != "current" && id != sess.ID {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	delete(s.sessions, sess.Secret)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "general_method_not_allowed", "method not allowed")
		return
	}
	if r.Header.Get("X-Appwrite-Key") == "" {
		writeError(w, http.StatusUnauthorized, "general_unauthorized_scope", "server key required")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, acct := range s.accounts {
		if acct.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			for secret, sess := range s.sessions {
				if sess.UserID == id {
					delete(s.sessions, secret)
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user_not_found", "user not found")
}

// handleDatabases serves /v1/databases/{db}/collections/{col}/documents[/{id}].
func (s *Server) handleDatabases(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/databases/"), "/")
	if len(parts) < 4 || parts[1] != "collections" || parts[3] != "documents" {
		writeError(w, http.StatusNotFound, "general_route_not_found", "route not found")
		return
	}
	collectionID := parts[2]
	var documentID string
	if len(parts) >= 5 {
		documentID = parts[4]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case documentID == "" && r.Method == http.MethodPost:
		s.createDocument(w, r, collectionID)
	case documentID == "" && r.Method == http.MethodGet:
		s.listDocuments(w, r, collectionID)
	case documentID != "" && r.Method == http.MethodGet:
		if doc := s.find(collectionID, documentID); doc != nil {
			writeJSON(w, http.StatusOK, s.render(collectionID, doc))
			return
		}
		writeError(w, http.StatusNotFound, "document_not_found", "document not found")
	case documentID != "" && r.Method == http.MethodPatch:
		doc := s.find(collectionID, documentID)
		if doc == nil {
			writeError(w, http.StatusNotFound, "document_not_found", "document not found")
			return
		}
		var req struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "general_argument_invalid", "invalid body")
			return
		}
		for k, v := range req.Data {
			doc.Data[k] = v
		}
		writeJSON(w, http.StatusOK, s.render(collectionID, doc))
	case documentID != "" && r.Method == http.MethodDelete:
		docs := s.collections[collectionID]
		for i, doc := range docs {
			if doc.ID == documentID {
				s.collections[collectionID] = append(docs[:i], docs[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeError(w, http.StatusNotFound, "document_not_found", "document not found")
	default:
		writeError(w, http.StatusMethodNotAllowed, "general_method_not_allowed", "method not allowed")
	}
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request, collectionID string) {
	if status, ok := s.failCreate[collectionID]; ok {
		delete(s.failCreate, collectionID)
		writeError(w, status, "general_server_error", "injected failure")
		return
	}
	var req struct {
		DocumentID string         `json:"documentId"`
		Data       map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "general_argument_invalid", "invalid body")
		return
	}
	if req.DocumentID == "" {
		req.DocumentID = uuid.NewString()
	}
	if s.find(collectionID, req.DocumentID) != nil {
		writeError(w, http.StatusConflict, "document_already_exists", "document already exists")
		return
	}
	doc := &document{ID: req.DocumentID, CreatedAt: time.Now().UTC(), Data: req.Data}
	s.collections[collectionID] = append(s.collections[collectionID], doc)
	writeJSON(w, http.StatusCreated, s.render(collectionID, doc))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request, collectionID string) {
	type query struct {
		Method    string `json:"method"`
		Attribute string `json:"attribute"`
		Values    []any  `json:"values"`
	}
	limit := -1
	var filters []query
	for _, raw := range r.URL.Query()["queries[]"] {
		var q query
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			writeError(w, http.StatusBadRequest, "general_query_invalid", "invalid query")
			return
		}
		switch q.Method {
		case "equal":
			filters = append(filters, q)
		case "limit":
			if len(q.Values) == 1 {
				limit = int(toFloat(q.Values[0]))
			}
		}
	}

	var matched []map[string]any
	for _, doc := range s.collections[collectionID] {
		ok := true
		for _, q := range filters {
			if !equalsAny(doc.Data[q.Attribute], q.Values) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, s.render(collectionID, doc))
		}
	}
	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	if matched == nil {
		matched = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(matched), "documents": matched})
}

func (s *Server) find(collectionID, id string) *document {
	for _, doc := range s.collections[collectionID] {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}

func (s *Server) render(collectionID string, doc *document) map[string]any {
	out := map[string]any{
		"$id":           doc.ID,
		"$collectionId": collectionID,
		"$createdAt":    doc.CreatedAt.Format(time.RFC3339Nano),
	}
	for k, v := range doc.Data {
		out[k] = v
	}
	return out
}

func equalsAny(got any, want []any) bool {
	for _, v := range want {
		if fmt.Sprint(got) == fmt.Sprint(v) {
			return true
		}
	}
	return false
}

func toFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]any{"message": message, "code": status, "type": errType})
}
