package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/security"
	"github.com/bookxchange/marketplace/internal/core/service"
	"github.com/bookxchange/marketplace/internal/infrastructure/db/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	e        *echo.Echo
	accounts *memory.AccountRepository
	books    *memory.BookRepository
	hasher   *security.BcryptHasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	books := memory.NewBookRepository(store)
	comments := memory.NewCommentRepository(store)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	codec, err := security.NewTokenCodec(testSecret, time.Hour, time.Now)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	verifier, err := security.NewCredentialVerifier(accounts, hasher)
	if err != nil {
		t.Fatalf("NewCredentialVerifier: %v", err)
	}
	identity := security.NewIdentityResolver(accounts)

	e := NewRouter(Deps{
		Log:            log,
		Tokens:         codec,
		Accounts:       identity,
		Auth:           service.NewAuthService(accounts, hasher, verifier, identity, codec, log),
		Books:          service.NewBookService(books, comments, accounts, memory.NewImageStore("/images"), nil, nil, log),
		Comments:       service.NewCommentService(comments, books, accounts, log),
		Users:          service.NewUserService(accounts, nil, log),
		MaxUploadBytes: 1 << 20,
		CORSOrigins:    []string{"*"},
	})
	return &testServer{e: e, accounts: accounts, books: books, hasher: hasher}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

// seed inserts an account directly, bypassing registration.
func (s *testServer) seed(t *testing.T, email, username, password string, role domain.Role) *domain.Account {
	t.Helper()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	acc, err := s.accounts.Create(context.Background(), &domain.Account{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CountryCode:  "AT",
		Role:         role,
		Enabled:      true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return acc
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d %s", email, rec.Code, rec.Body.String())
	}
	return body["accessToken"].(string)
}

func (s *testServer) createBook(t *testing.T, token string) int64 {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/books", token,
		`{"title":"Dune","authorName":"Frank Herbert","language":"English","condition":"GOOD","exchangeType":"GIVEAWAY"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create book: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	return int64(body["id"].(float64))
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/auth/register", "",
		`{"email":"  Alice@Example.com ","username":"alice_reads","password":"Secret123","countryCode":"at"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if body["email"] != "alice@example.com" || body["role"] != "USER" || body["tokenType"] != "Bearer" {
		t.Fatalf("unexpected register body %v", body)
	}

	rec, body = s.do(t, http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"Secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	if body["role"] != "USER" || body["expiresInMs"] != float64(time.Hour.Milliseconds()) {
		t.Fatalf("unexpected login body %v", body)
	}

	rec, body = s.do(t, http.MethodPost, "/auth/register", "",
		`{"email":"alice@example.com","username":"alice_two","password":"Secret123","countryCode":"AT"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}
	if body["path"] != "/auth/register" || body["error"] != "Conflict" {
		t.Fatalf("unexpected error envelope %v", body)
	}
}

func TestRouter_LoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "alice@example.com", "alice_reads", "Secret123", domain.RoleUser)
	dis := s.seed(t, "dave@example.com", "dave_disabled", "Secret123", domain.RoleUser)
	dis.Enabled = false
	if _, err := s.accounts.Update(context.Background(), dis); err != nil {
		t.Fatalf("disable: %v", err)
	}

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"wrong password", `{"email":"alice@example.com","password":"Wrong123"}`, http.StatusUnauthorized, msgInvalidCredentials},
		{"unknown email", `{"email":"nobody@example.com","password":"Secret123"}`, http.StatusUnauthorized, msgInvalidCredentials},
		{"disabled with right password", `{"email":"dave@example.com","password":"Secret123"}`, http.StatusForbidden, msgAccountDisabled},
		{"disabled with wrong password", `{"email":"dave@example.com","password":"Wrong123"}`, http.StatusUnauthorized, msgInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPost, "/auth/login", "", tt.body)
			if rec.Code != tt.status || body["message"] != tt.message {
				t.Fatalf("expected %d %q, got %d %v", tt.status, tt.message, rec.Code, body)
			}
		})
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "alice@example.com", "alice_reads", "Secret123", domain.RoleUser)
	s.seed(t, "root@example.com", "root_admin", "Secret123", domain.RoleAdmin)
	userToken := s.login(t, "alice@example.com", "Secret123")
	adminToken := s.login(t, "root@example.com", "Secret123")

	rec, body := s.do(t, http.MethodGet, "/admin/users", userToken, "")
	if rec.Code != http.StatusForbidden || body["message"] != "Access denied" {
		t.Fatalf("user on admin route: expected 403 Access denied, got %d %v", rec.Code, body)
	}

	rec, body = s.do(t, http.MethodGet, "/admin/users", "", "")
	if rec.Code != http.StatusUnauthorized || body["message"] != msgAuthRequired {
		t.Fatalf("anonymous on admin route: expected 401, got %d %v", rec.Code, body)
	}

	rec, _ = s.do(t, http.MethodGet, "/admin/users", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rec.Code)
	}
}

func TestRouter_CatalogPageBeyondEnd(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "alice@example.com", "alice", "Secret123", domain.RoleUser)
	s.createBook(t, s.login(t, "alice@example.com", "Secret123"))

	for _, query := range []string{"page=2&limit=2", "page=4611686018427387905&limit=2", "page=9223372036854775807&limit=100"} {
		rec, body := s.do(t, http.MethodGet, "/books?"+query, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %s", query, rec.Code, rec.Body.String())
		}
		items, _ := body["items"].([]any)
		if len(items) != 0 || body["total"] != float64(1) {
			t.Fatalf("%s: expected empty page with total 1, got %v", query, body)
		}
	}
}

func TestRouter_HiddenBookIsNotFound(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "alice@example.com", "alice_reads", "Secret123", domain.RoleUser)
	s.seed(t, "bob@example.com", "bob_builder", "Secret123", domain.RoleUser)
	alice := s.login(t, "alice@example.com", "Secret123")
	bob := s.login(t, "bob@example.com", "Secret123")

	id := s.createBook(t, alice)
	rec, _ := s.do(t, http.MethodPut, fmt.Sprintf("/books/%d", id), alice,
		`{"title":"Dune","authorName":"Frank Herbert","language":"English","condition":"GOOD","exchangeType":"GIVEAWAY","status":"RESERVED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reserve: expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	path := fmt.Sprintf("/books/%d", id)
	if rec, _ := s.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("anonymous: expected 404, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodGet, path, bob, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("other user: expected 404, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodGet, path, alice, ""); rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", rec.Code)
	}

	rec, body := s.do(t, http.MethodGet, "/books", "", "")
	if rec.Code != http.StatusOK || body["total"] != float64(0) {
		t.Fatalf("catalog should hide reserved books, got %d %v", rec.Code, body)
	}
}

func TestRouter_CommentOwnership(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "alice@example.com", "alice_reads", "Secret123", domain.RoleUser)
	s.seed(t, "bob@example.com", "bob_builder", "Secret123", domain.RoleUser)
	s.seed(t, "root@example.com", "root_admin", "Secret123", domain.RoleAdmin)
	alice := s.login(t, "alice@example.com", "Secret123")
	bob := s.login(t, "bob@example.com", "Secret123")
	admin := s.login(t, "root@example.com", "Secret123")

	bookID := s.createBook(t, alice)
	rec, body := s.do(t, http.MethodPost, fmt.Sprintf("/comments/book/%d", bookID), alice, `{"content":"Still available!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	commentPath := fmt.Sprintf("/comments/%d", int64(body["id"].(float64)))

	rec, body = s.do(t, http.MethodPut, commentPath, bob, `{"content":"hijacked"}`)
	if rec.Code != http.StatusForbidden || body["message"] != "Access denied" {
		t.Fatalf("non-author edit: expected 403, got %d %v", rec.Code, body)
	}

	rec, body = s.do(t, http.MethodPut, commentPath, admin, `{"content":"moderated"}`)
	if rec.Code != http.StatusOK || body["content"] != "moderated" {
		t.Fatalf("admin edit: expected 200, got %d %v", rec.Code, body)
	}

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/comments/book/%d", bookID), "", `{"content":"anon"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous comment: expected 401, got %d", rec.Code)
	}
}

func TestRouter_DisabledAfterIssuance(t *testing.T) {
	s := newTestServer(t)
	acc := s.seed(t, "alice@example.com", "alice_reads", "Secret123", domain.RoleUser)
	token := s.login(t, "alice@example.com", "Secret123")

	if rec, _ := s.do(t, http.MethodGet, "/users/me", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("before disable: expected 200, got %d", rec.Code)
	}

	acc.Enabled = false
	if _, err := s.accounts.Update(context.Background(), acc); err != nil {
		t.Fatalf("disable: %v", err)
	}

	rec, body := s.do(t, http.MethodGet, "/users/me", token, "")
	if rec.Code != http.StatusUnauthorized || body["message"] != msgAuthRequired {
		t.Fatalf("after disable: expected 401, got %d %v", rec.Code, body)
	}

	// Public routes still work for the now-anonymous caller.
	if rec, _ := s.do(t, http.MethodGet, "/books", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("public route: expected 200, got %d", rec.Code)
	}
}

func TestRouter_InvalidTokenIsAnonymous(t *testing.T) {
	s := newTestServer(t)

	if rec, _ := s.do(t, http.MethodGet, "/books", "garbage.token.value", ""); rec.Code != http.StatusOK {
		t.Fatalf("public route with bad token: expected 200, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodGet, "/books/me", "garbage.token.value", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("protected route with bad token: expected 401, got %d", rec.Code)
	}
}

func TestRouter_ValidationEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/auth/register", "",
		`{"email":"a@example.com","username":"bob","password":"weak","countryCode":"AUT"}`)
	if rec.Code != http.StatusBadRequest || body["message"] != "Validation failed" {
		t.Fatalf("expected 400 Validation failed, got %d %v", rec.Code, body)
	}
	details, _ := body["details"].([]any)
	if len(details) < 3 {
		t.Fatalf("expected a detail per field, got %v", body["details"])
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec, _ := s.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
