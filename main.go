package main

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/config"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/handlers"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/mailer"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/notify"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := cfg.NewLogger()

	db, err := models.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	if err := models.SeedAdmin(db, cfg.AdminUser, cfg.AdminPass); err != nil {
		log.WithError(err).Fatal("failed to seed admin user")
	}

	certs := models.NewCertificateStore(db)
	users := models.NewUserStore(db)
	smtp := mailer.NewSMTP(mailer.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		User:       cfg.SMTP.User,
		Pass:       cfg.SMTP.Pass,
		SenderName: cfg.SMTP.SenderName,
	})

	loc, err := time.LoadLocation(cfg.Scan.Timezone)
	if err != nil {
		log.WithError(err).Fatal("invalid scan timezone")
	}
	service := notify.NewService(certs, smtp, log)
	service.Dedupe = cfg.Scan.Dedupe
	service.Now = func() time.Time { return time.Now().In(loc) }

	window := notify.Window{MinDays: cfg.Scan.WindowMinDays, MaxDays: cfg.Scan.WindowMaxDays}

	app := fiber.New()
	handlers.RegisterHealth(app)
	handlers.RegisterAuth(app, handlers.NewAuthHandler(users, cfg.JWTSecret, log))
	handlers.RegisterCertificates(app,
		handlers.NewCertificateHandler(certs, service, window, cfg.Scan.ManualTimeout, log),
		handlers.Protect(cfg.JWTSecret))

	w := worker.New(service, window, log)
	if err := w.Start(cfg.Scan.DailyAt, cfg.Scan.Timezone); err != nil {
		log.WithError(err).Fatal("failed to start scan scheduler")
	}
	defer w.Stop()

	log.WithField("addr", cfg.Addr).Info("server starting")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
