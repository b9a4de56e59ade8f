// jwt_test.go — Unit tests for viewer access tokens.
package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	viewerID := uuid.New()
	tok, err := GenerateAccessToken(viewerID)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := ValidateAccessToken(tok)
	if err != nil {
		t.Fatalf("ValidateAccessToken error: %v", err)
	}
	if claims.ViewerID() != viewerID {
		t.Errorf("ViewerID = %s; want %s", claims.ViewerID(), viewerID)
	}
	if claims.Issuer != "perch" {
		t.Errorf("Issuer = %q; want perch", claims.Issuer)
	}
}

func TestValidateAccessToken_RejectsWrongSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret-a")
	tok, err := GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	t.Setenv("AUTH_JWT_SECRET", "secret-b")
	if _, err := ValidateAccessToken(tok); err == nil {
		t.Error("expected validation failure with wrong secret")
	}
}

// RequireAuth is mounted with chi's r.Use, which takes exactly
// func(http.Handler) http.Handler.
var _ func(http.Handler) http.Handler = RequireAuth

func TestRequireAuth_MissingToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", w.Code)
	}
}

func TestRequireAuth_InjectsViewerID(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	viewerID := uuid.New()
	tok, err := GenerateAccessToken(viewerID)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	var got uuid.UUID
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ViewerIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if got != viewerID {
		t.Errorf("context viewer ID = %s; want %s", got, viewerID)
	}
}
