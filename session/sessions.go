package session

import (
	"context"
	"skillbridge/authority"
	"skillbridge/bizerror"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 24 * time.Hour

// TokenCache holds sessions issued by the upstream authentication service.
var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

// TrustGatewayHeaders enables identity headers set by an authenticating gateway.
var TrustGatewayHeaders = false

// IssueToken registers an already authenticated principal and returns its token.
func IssueToken(identity Identity, perms authority.Permissions) string {
	token := uuid.New().String()
	s := Session{Token: token, Identity: identity, Perms: perms, SigningTime: time.Now()}
	TokenCache.Set(token, &s, cache.DefaultExpiration)
	return token
}

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	var reqCtx context.Context = context.Background()
	if ctx.Request != nil {
		reqCtx = ctx.Request.Context() // trace context
	}
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: reqCtx}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: reqCtx}
	}
	s := s0.Clone()
	s.Context = reqCtx
	return &s
}

func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if s := sessionFromToken(ctx); s != nil {
			InjectSessionIntoGinContext(ctx, s)
			ctx.Next()
			return
		}
		if TrustGatewayHeaders {
			if s := sessionFromGatewayHeaders(ctx); s != nil {
				InjectSessionIntoGinContext(ctx, s)
				ctx.Next()
				return
			}
		}
		panic(bizerror.ErrUnauthenticated)
	}
}

func sessionFromToken(ctx *gin.Context) *Session {
	token, err := ctx.Cookie(KeySecToken)
	if err != nil || token == "" {
		auth := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return nil
		}
		token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	value, found := TokenCache.Get(token)
	if !found {
		return nil
	}
	s, ok := value.(*Session)
	if !ok {
		return nil
	}
	return s
}

func sessionFromGatewayHeaders(ctx *gin.Context) *Session {
	id, err := types.ParseID(ctx.GetHeader(HeaderUserID))
	if err != nil || id == 0 {
		return nil
	}
	role := strings.ToLower(strings.TrimSpace(ctx.GetHeader(HeaderUserRole)))
	if !authority.IsKnownRole(role) {
		return nil
	}
	return &Session{
		Token:       "gateway:" + id.String(),
		Identity:    Identity{ID: id, Name: ctx.GetHeader(HeaderUserName)},
		Perms:       authority.Permissions{role},
		SigningTime: time.Now(),
	}
}

func InjectSessionIntoGinContext(ctx *gin.Context, secCtx *Session) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}
