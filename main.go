package main

import (
	"context"
	"os"
	"os/signal"
	"skillbridge/account"
	"skillbridge/client/es"
	"skillbridge/common"
	"skillbridge/config"
	"skillbridge/domain"
	"skillbridge/event"
	"skillbridge/indices"
	"skillbridge/infra/tracing"
	"skillbridge/notification"
	"skillbridge/persistence"
	"skillbridge/realtime"
	"skillbridge/servehttp"
	"skillbridge/session"
	"skillbridge/sessions"
	"syscall"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed %v", err)
	}
	common.SetServiceName(cfg.ServiceName)
	if err := common.ConfigureLogging(cfg.Log); err != nil {
		logrus.Fatalf("configure logging failed %v", err)
	}
	logrus.Info("service start")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	closer, err := tracing.InitGlobalTracer(cfg.Tracing, cfg.ServiceName)
	if err != nil {
		logrus.Fatalf("init tracer failed %v", err)
	}
	defer closer.Close()

	// create database (no conflict)
	if cfg.Database.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(cfg.Database.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: &cfg.Database}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	if err := migrateSchema(ds.GormDB(ctx)); err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}
	if err := account.EnsureAdminProfile(ctx, cfg.AdminID, cfg.AdminName); err != nil {
		logrus.Fatalf("admin profile bootstrap failed %v", err)
	}

	session.TrustGatewayHeaders = cfg.TrustGatewayHeaders
	sessions.IssuerKey = cfg.SessionIssuerKey

	if cfg.Redis.Addr != "" {
		client := realtime.NewRedisClient(cfg.Redis)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logrus.Fatalf("redis connection failed %v", err)
		}
		realtime.ActiveBroadcaster = realtime.NewRedisBroadcaster(client, cfg.Redis.Prefix)
		logrus.Infof("realtime messages are relayed through redis %s", cfg.Redis.Addr)
	}

	event.RegisterHandler(notification.HandlerName, notification.EventHandler)
	event.RegisterHandler(realtime.HandlerName, realtime.EventHandler)
	if cfg.Elasticsearch.Enabled {
		client, err := es.CreateClient(cfg.Elasticsearch)
		if err != nil {
			logrus.Fatalf("elasticsearch client creation failed %v", err)
		}
		es.ActiveESClient = client
		if err := indices.EnsureProjectIndex(ctx); err != nil {
			logrus.Fatalf("project index preparation failed %v", err)
		}
		event.RegisterHandler(indices.ProjectIndexEventHandlerName, indices.ProjectIndexEventHandler)
	}

	dispatcher := event.NewDispatcher(cfg.Outbox)
	event.NotifyCommittedFunc = dispatcher.Notify
	go dispatcher.Start(ctx)

	engine := servehttp.BuildEngine(servehttp.EngineOptions{ServiceName: cfg.ServiceName, SearchEnabled: es.Enabled()})
	if err := servehttp.StartHTTPServer(ctx, cfg.HTTPAddr, engine); err != nil {
		logrus.Errorf("http server failed %v", err)
		stop()
		os.Exit(1)
	}
	logrus.Info("[QUIT] service exiting")
}

// migrateSchema creates or extends the tables of every persisted model.
func migrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Project{}, &domain.Application{}, &domain.Invitation{},
		&account.User{}, &event.EventRecord{}, &notification.Notification{}).Error
}
