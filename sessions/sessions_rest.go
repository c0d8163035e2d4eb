package sessions

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"skillbridge/account"
	"skillbridge/authority"
	"skillbridge/bizerror"
	"skillbridge/persistence"
	"skillbridge/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathSessions = "/v1/sessions"
	PathSession  = "/v1/session"

	HeaderIssuerKey = "X-Session-Issuer-Key"
)

// IssuerKey is shared with the authentication service, which calls POST /v1/sessions after
// verifying credentials. An empty key disables token issuance.
var IssuerKey = ""

var LoadUserFunc = func(id types.ID) (*account.User, error) {
	return account.LoadUser(persistence.ActiveDataSourceManager.GormDB(context.Background()), id)
}

type SessionIssuing struct {
	UserID types.ID `json:"userId" binding:"required"`
}

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group(PathSessions)
	g.POST("", IssueSessionHandler)
	g.DELETE("", LogoutHandler)
}

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathSession, middleWares...)
	g.GET("", DetailSessionHandler)
}

// IssueSessionHandler hands out a token for an existing profile, the role of the profile
// becomes the only permission of the session.
func IssueSessionHandler(c *gin.Context) {
	key := c.GetHeader(HeaderIssuerKey)
	if IssuerKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(IssuerKey)) != 1 {
		panic(bizerror.ErrUnauthenticated)
	}
	issuing := SessionIssuing{}
	if err := c.ShouldBindBodyWith(&issuing, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	user, err := LoadUserFunc(issuing.UserID)
	if errors.Is(err, bizerror.ErrUserNotFound) {
		panic(bizerror.ErrUnauthenticated)
	}
	if err != nil {
		panic(err)
	}

	identity := session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname}
	token := session.IssueToken(identity, authority.Permissions{user.Role})
	value, _ := session.TokenCache.Get(token)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, true)
	c.JSON(http.StatusCreated, value)
}

func LogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, true)
	c.AbortWithStatus(http.StatusNoContent)
}

// DetailSessionHandler reloads the role of the current profile, the token keeps its
// remaining lifetime.
func DetailSessionHandler(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)

	now := time.Now()
	ttl := session.TokenExpiration - now.Sub(sec.SigningTime)
	if ttl <= 0 {
		session.TokenCache.Delete(sec.Token)
		panic(bizerror.ErrUnauthenticated)
	}
	user, err := LoadUserFunc(sec.Identity.ID)
	if errors.Is(err, bizerror.ErrUserNotFound) {
		session.TokenCache.Delete(sec.Token)
		panic(bizerror.ErrUnauthenticated)
	}
	if err != nil {
		panic(err)
	}
	refreshed := session.Session{Token: sec.Token, Identity: session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname},
		Perms: authority.Permissions{user.Role}, SigningTime: sec.SigningTime}
	session.TokenCache.Set(sec.Token, &refreshed, ttl)
	c.JSON(http.StatusOK, &refreshed)
}
