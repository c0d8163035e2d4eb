package testinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"skillbridge/authority"
	"skillbridge/session"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession build session with the given roles
func BuildSession(uid types.ID, roles ...string) *session.Session {
	perms := authority.Permissions{}
	perms = append(perms, roles...)
	return &session.Session{
		Token:    "token_" + strconv.FormatUint(uint64(uid), 10),
		Identity: session.Identity{ID: uid, Name: "user" + uid.String(), Nickname: "User " + uid.String()},
		Perms:    perms,
		Context:  context.Background(),
	}
}

// InjectSession returns a middleware binding s to every request, standing in for the auth filter.
func InjectSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, s)
		c.Next()
	}
}

func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	bodyBytes, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(bodyBytes), resp
}
