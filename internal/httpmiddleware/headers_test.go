package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func serveWith(mw gin.HandlerFunc, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	mw := CORS([]string{"http://localhost:5173"})

	w := serveWith(mw, http.MethodGet, "http://localhost:5173")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allowed origin header = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials not allowed for listed origin")
	}

	w = serveWith(mw, http.MethodGet, "http://evil.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin got %q", got)
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("unlisted origin status = %d, want 403", w.Code)
	}

	w = serveWith(CORS(nil), http.MethodGet, "http://evil.example")
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("disabled cors = %d %v", w.Code, w.Header())
	}

	w = serveWith(mw, http.MethodOptions, "http://localhost:5173")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}

	w = serveWith(CORS([]string{"*"}), http.MethodGet, "http://anything.example")
	if w.Header().Get("Access-Control-Allow-Origin") != "*" || w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Errorf("wildcard headers = %v", w.Header())
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := serveWith(SecurityHeaders(false), http.MethodGet, "")
	if w.Header().Get("X-Frame-Options") != "DENY" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers = %v", w.Header())
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("hsts set without opting in")
	}
	w = serveWith(SecurityHeaders(true), http.MethodGet, "")
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("hsts missing")
	}
}
