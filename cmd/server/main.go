package main

import (
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Hasninemamud/AuctionCraft/internal/auction"
	"github.com/Hasninemamud/AuctionCraft/internal/config"
	"github.com/Hasninemamud/AuctionCraft/internal/db"
	"github.com/Hasninemamud/AuctionCraft/internal/notify"
	"github.com/Hasninemamud/AuctionCraft/internal/routes"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}

	database, err := db.Open(cfg.DbDsn)
	if err != nil {
		log.WithError(err).Fatal("db error")
	}

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SmtpHost,
		Port:     cfg.SmtpPort,
		Username: cfg.SmtpUser,
		Password: cfg.SmtpPass,
		From:     cfg.SmtpFrom,
	})

	var events auction.EventPublisher
	if cfg.NatsURL != "" {
		publisher, err := notify.ConnectEvents(cfg.NatsURL)
		if err != nil {
			log.WithError(err).Fatal("nats error")
		}
		defer publisher.Close()
		events = publisher
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	routes.Register(router, database, cfg, mailer, events)

	if err := router.Run(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
