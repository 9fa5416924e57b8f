//go:build wireinject
// +build wireinject

package wire

import (
	"smsvault/internal/common"
	"smsvault/internal/notif"
	"smsvault/internal/sms"

	"github.com/google/wire"
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideMessageRepository,
		notif.NewEmailService,
		ProvideNotificationService,
		wire.Bind(new(common.Notifier), new(*notif.NotificationService)),
		sms.NewService,
		sms.NewHandler,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
