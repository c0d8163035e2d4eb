package servehttp

import (
	"context"
	"errors"
	"net/http"
	"skillbridge/account"
	"skillbridge/bizerror"
	"skillbridge/domain/project/projectrest"
	"skillbridge/indices"
	"skillbridge/infra/metrics"
	"skillbridge/infra/tracing"
	"skillbridge/notification"
	"skillbridge/realtime"
	"skillbridge/session"
	"skillbridge/sessions"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const ShutdownTimeout = 3 * time.Second

type EngineOptions struct {
	ServiceName string
	// mounts the index management api
	SearchEnabled bool
}

// BuildEngine assembles the gin engine with every api of the service. Authenticated groups
// run behind session.SimpleAuthFilter.
func BuildEngine(opts EngineOptions) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), tracing.TracingIngress("/metrics", "/"), metrics.GinMiddleware(), bizerror.ErrorHandling())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, opts.ServiceName)
	})
	metrics.RegisterMetricsAPI(engine)

	auth := session.SimpleAuthFilter()
	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, auth)
	account.RegisterUsersRestAPI(engine, auth)
	projectrest.RegisterProjectsRestAPI(engine, auth)
	notification.RegisterNotificationsRestAPI(engine, auth)
	realtime.RegisterRealtimeRestAPI(engine, auth)
	if opts.SearchEnabled {
		indices.RegisterIndicesRestAPI(engine, auth)
	}
	return engine
}

// StartHTTPServer serves engine until ctx is done, then shuts the server down gracefully.
func StartHTTPServer(ctx context.Context, addr string, engine *gin.Engine) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("http server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logrus.Infof("[QUIT] shutdown signal has been received, the service will exit in %s.", ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	// streaming responses end with their request contexts
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("[QUIT] http server is shutdown gracefully, new request will be rejected.")
	return nil
}
