package nats

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lidofinance/blockview/internal/env"
)

const reconnectWait = 2 * time.Second

func New(cfg *env.AppConfig, log *slog.Logger) (*nats.Conn, error) {
	return nats.Connect(cfg.NatsDefaultURL,
		nats.Name(cfg.Name),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("Nats client got disconnected", slog.String("error", err.Error()))
				return
			}
			log.Warn("Nats client got disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("Nats client got reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("Nats connection closed")
		}),
	)
}
