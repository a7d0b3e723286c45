package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"studentportal/internal/store"
)

func newGuardedRouter(g *Guard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api", g.RequireAPI(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("email")})
	})
	r.GET("/view", g.RequireView(), func(c *gin.Context) {
		c.String(http.StatusOK, "card")
	})
	return r
}

func TestRequireAPI(t *testing.T) {
	g := NewGuard(store.NewMemory(), "portal", "")
	r := newGuardedRouter(g)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	_, _ = g.Login(context.Background(), "a@b.co", "pw")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body != `{"email":"a@b.co"}` {
		t.Errorf("body = %s", body)
	}
}

func TestRequireView(t *testing.T) {
	g := NewGuard(store.NewMemory(), "portal", "")
	r := newGuardedRouter(g)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/view", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != LoginPath {
		t.Fatalf("status = %d location = %q, want redirect to %s", w.Code, w.Header().Get("Location"), LoginPath)
	}
}

func TestMiddlewareTokenSources(t *testing.T) {
	g := NewGuard(store.NewMemory(), "portal", "secret")
	r := newGuardedRouter(g)
	s, err := g.Login(context.Background(), "a@b.co", "pw")
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("bearer token: status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/view", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: s.Token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("cookie token: status = %d, want 200", w.Code)
	}
}

func TestSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/set", func(c *gin.Context) { SetCookie(c, Session{Token: "tok"}, true) })
	r.GET("/skip", func(c *gin.Context) { SetCookie(c, Session{}, false) })
	r.GET("/clear", func(c *gin.Context) { ClearCookie(c, false) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != "tok" || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("cookies = %+v", cookies)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/skip", nil))
	if len(w.Result().Cookies()) != 0 {
		t.Error("cookie set without a token")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clear", nil))
	if cookies := w.Result().Cookies(); len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("clear cookies = %+v", cookies)
	}
}
