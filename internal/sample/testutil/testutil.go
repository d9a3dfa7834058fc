package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/middleware"
	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

const (
	JWTSecret = "ssep-test-jwt-secret"
	TestSheet = "Sheet1"
)

// SetupStore creates a ledger store backed by a temp file. The ledger
// starts with the single seed record that Load writes for a missing file.
func SetupStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	st := store.New(path, TestSheet, zap.NewNop())
	if err := st.Load(); err != nil {
		t.Fatalf("Failed to load test ledger: %v", err)
	}
	return st
}

// SetupEmptyStore creates a store and removes the seed record so tests
// start from a clean ledger.
func SetupEmptyStore(t *testing.T) *store.Store {
	t.Helper()
	st := SetupStore(t)
	ids := make([]string, 0, 1)
	for _, r := range st.All() {
		ids = append(ids, r.ID)
	}
	if _, err := st.DeleteByIDs(ids); err != nil {
		t.Fatalf("Failed to clear seed records: %v", err)
	}
	return st
}

// SeedRecord adds a record through the store and returns it with its
// assigned id.
func SeedRecord(t *testing.T, st *store.Store, company, model, partName string) entity.Record {
	t.Helper()
	saved, err := st.Add(entity.Record{
		Company:  company,
		Model:    model,
		PartName: partName,
		Quantity: 10,
	})
	if err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}
	return saved
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, role, company string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     userID,
		"uid":     userID,
		"name":    name,
		"role":    role,
		"company": company,
		"iss":     "ssep",
		"iat":     now.Unix(),
		"exp":     now.Add(24 * time.Hour).Unix(),
		"jti":     fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// AdminToken returns a token for an admin test user
func AdminToken() string {
	return GenerateTestToken("test-admin-001", "Test Admin", entity.RoleAdmin, "신성EP")
}

// ClientToken returns a token for a client user of the given company
func ClientToken(company string) string {
	return GenerateTestToken("test-client-001", "Test Client", entity.RoleClient, company)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DoUpload executes a multipart file upload against the test router
func DoUpload(r *gin.Engine, path, filename string, content []byte, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", filename)
	part.Write(content)
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
