package wire

import (
	"context"
	"fmt"
	"time"

	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/dbmongo"
	"smsvault/internal/dbmysql"
	"smsvault/internal/logger"
	"smsvault/internal/notif"
	"smsvault/internal/sms"
)

// Application is everything cmd/api needs to serve and shut down.
type Application struct {
	Config        *config.Config
	Logger        logger.Logger
	Handler       *sms.Handler
	Notifications *notif.NotificationService
}

func ProvideConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func ProvideLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.NewLogger(cfg.Logging)
}

// ProvideMessageRepository opens the configured backend. The cleanup closes
// the underlying connection.
func ProvideMessageRepository(cfg *config.Config, log logger.Logger) (common.MessageRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMongo:
		mc, err := dbmongo.NewMongoConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Message store: mongodb %s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)

		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mc.Close(ctx); err != nil {
				log.Warnf("Closing mongodb: %v", err)
			}
		}
		return dbmongo.NewMessageStore(mc), cleanup, nil

	case config.StoreBackendSQL, "":
		db, err := dbmysql.NewDatabase(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Message store: %s", cfg.Database.Driver)

		cleanup := func() {
			sqlDB, err := db.DB()
			if err != nil {
				return
			}
			if err := sqlDB.Close(); err != nil {
				log.Warnf("Closing database: %v", err)
			}
		}
		return dbmysql.NewMessageRepository(db), cleanup, nil
	}

	return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

// ProvideNotificationService builds the notifier. The cleanup drains the
// queue so already accepted messages are still mailed on shutdown.
func ProvideNotificationService(cfg *config.Config, emailService common.EmailService, log logger.Logger) (*notif.NotificationService, func()) {
	service := notif.NewNotificationService(cfg, emailService, log)
	return service, service.Shutdown
}
