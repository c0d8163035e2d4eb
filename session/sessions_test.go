package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"skillbridge/authority"
	"skillbridge/bizerror"
	"skillbridge/session"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestExtractSessionFromGinContext(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return empty session when absent or invalid", func(t *testing.T) {
		ginCtx := &gin.Context{}
		s := session.ExtractSessionFromGinContext(ginCtx)
		Expect(s.Token).To(BeEmpty())
		Expect(s.Context).To(Equal(context.Background()))

		ginCtx.Set(session.KeySecCtx, "string value")
		Expect(session.ExtractSessionFromGinContext(ginCtx).Token).To(BeEmpty())

		ginCtx.Set(session.KeySecCtx, &session.Session{})
		Expect(session.ExtractSessionFromGinContext(ginCtx).Token).To(BeEmpty())
	})

	t.Run("should return a copy of the stored session", func(t *testing.T) {
		ginCtx := &gin.Context{}
		stored := &session.Session{Token: "a token", Identity: session.Identity{ID: 10, Name: "ann"}, Perms: authority.Permissions{"student"}}
		ginCtx.Set(session.KeySecCtx, stored)

		s := session.ExtractSessionFromGinContext(ginCtx)
		Expect(s.Token).To(Equal("a token"))
		Expect(s.Identity).To(Equal(session.Identity{ID: 10, Name: "ann"}))
		Expect(s.Perms).To(Equal(authority.Permissions{"student"}))

		s.Perms[0] = "admin"
		Expect(stored.Perms).To(Equal(authority.Permissions{"student"}))
	})
}

func TestInjectSessionIntoGinContext(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should work correctly", func(t *testing.T) {
		ginCtx := &gin.Context{}
		session.InjectSessionIntoGinContext(ginCtx, nil)
		_, found := ginCtx.Get(session.KeySecCtx)
		Expect(found).To(BeFalse())

		session.InjectSessionIntoGinContext(ginCtx, &session.Session{})
		_, found = ginCtx.Get(session.KeySecCtx)
		Expect(found).To(BeFalse())

		session.InjectSessionIntoGinContext(ginCtx, &session.Session{Token: "a token"})
		val, found := ginCtx.Get(session.KeySecCtx)
		Expect(found).To(BeTrue())
		Expect(val.(*session.Session).Token).To(Equal("a token"))
	})
}

func TestIdentityDisplayName(t *testing.T) {
	RegisterTestingT(t)

	Expect(session.Identity{Name: "ann"}.DisplayName()).To(Equal("ann"))
	Expect(session.Identity{Name: "ann", Nickname: "Ann L"}.DisplayName()).To(Equal("Ann L"))
}

func newAuthRouter() *gin.Engine {
	r := gin.Default()
	r.Use(bizerror.ErrorHandling())
	r.GET("/me", session.SimpleAuthFilter(), func(c *gin.Context) {
		s := session.ExtractSessionFromGinContext(c)
		c.JSON(http.StatusOK, gin.H{"id": &s.Identity.ID, "perms": s.Perms})
	})
	return r
}

func TestSimpleAuthFilter(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should reject request without credentials", func(t *testing.T) {
		r := newAuthRouter()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should accept token from cookie", func(t *testing.T) {
		token := session.IssueToken(session.Identity{ID: 100, Name: "ann"}, authority.Permissions{"teacher"})
		r := newAuthRouter()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"id":"100","perms":["teacher"]}`))
	})

	t.Run("should accept bearer token", func(t *testing.T) {
		token := session.IssueToken(session.Identity{ID: 101, Name: "bob"}, authority.Permissions{"student"})
		r := newAuthRouter()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"id":"101","perms":["student"]}`))
	})

	t.Run("should reject unknown token", func(t *testing.T) {
		r := newAuthRouter()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer unknown")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should accept gateway headers only when trusted", func(t *testing.T) {
		defer func() { session.TrustGatewayHeaders = false }()
		r := newAuthRouter()

		newReq := func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set(session.HeaderUserID, "200")
			req.Header.Set(session.HeaderUserRole, "Alumni")
			return req
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newReq())
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		session.TrustGatewayHeaders = true
		w = httptest.NewRecorder()
		r.ServeHTTP(w, newReq())
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"id":"200","perms":["alumni"]}`))

		req := newReq()
		req.Header.Set(session.HeaderUserRole, "robot")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
}
