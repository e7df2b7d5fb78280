package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fact-registration/internal/config"
	"fact-registration/internal/database"
	httpapi "fact-registration/internal/http"
	"fact-registration/internal/logger"
	"fact-registration/internal/mqttx"
	"fact-registration/internal/notify"
	"fact-registration/internal/redisx"
	"fact-registration/internal/repository"
	"fact-registration/internal/service"
	"fact-registration/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "fact-registration")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	eventLoc, err := time.LoadLocation(cfg.Event.Timezone)
	if err != nil {
		log.Warn("unknown event timezone, using UTC", zap.String("timezone", cfg.Event.Timezone), zap.Error(err))
		eventLoc = time.UTC
	}

	redisClient := redisx.NewRedisClient(&cfg.Redis)
	redisUp := true
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisx.Ping(pingCtx, redisClient); err != nil {
		log.Warn("redis unavailable, report stream disabled", zap.Error(err))
		redisUp = false
	}
	pingCancel()

	mailer := notify.NewSMTPNotifier(cfg.SMTP)
	channels := []notify.Notifier{mailer}
	if redisUp {
		channels = append(channels, notify.NewStreamNotifier(redisClient, cfg.Notify.Stream))
	}
	var mqttClient *mqttx.Client
	if cfg.MQTT.Enabled {
		if c, err := mqttx.NewClient(&cfg.MQTT); err == nil {
			mqttClient = c
			channels = append(channels, notify.NewMQTTNotifier(c, cfg.MQTT.Topic, cfg.MQTT.QoS))
		} else {
			log.Warn("mqtt enabled but connection failed", zap.Error(err))
		}
	}
	if cfg.Notify.WebhookURL != "" {
		channels = append(channels, notify.NewWebhookNotifier(cfg.Notify.WebhookURL))
	}
	adminNotifier := notify.NewMulti(log, channels...)

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for fact-registration")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}

	var (
		locationsRepo     repository.LocationsRepository
		workshopsRepo     repository.WorkshopsRepository
		registrationsRepo repository.RegistrationRepository
	)
	if db != nil {
		locationsRepo = repository.NewPostgresLocationsRepository(db)
		workshopsRepo = repository.NewPostgresWorkshopsRepository(db)
		registrationsRepo = repository.NewPostgresRegistrationRepository(db)
	} else {
		memWorkshops := repository.NewMemoryWorkshopsRepo()
		locationsRepo = repository.NewMemoryLocationsRepo()
		workshopsRepo = memWorkshops
		registrationsRepo = repository.NewMemoryRegistrationRepo(memWorkshops)
	}

	recipients := cfg.Notify.AdminRecipients
	assignSvc := service.NewLocationAssignmentService(workshopsRepo, locationsRepo, adminNotifier,
		recipients, cfg.Event.Name, log)

	handlers := httpapi.Handlers{
		Locations: httpapi.NewLocationsHandler(service.NewLocationService(locationsRepo, log), log),
		Workshops: httpapi.NewWorkshopsHandler(service.NewWorkshopService(workshopsRepo, locationsRepo, log), log),
		Verifications: httpapi.NewVerificationHandler(
			service.NewVerificationService(store.NewRedisKV(redisClient), mailer,
				time.Duration(cfg.VerificationTTLMinutes)*time.Minute, log), log),
	}
	handlers.Schools = httpapi.NewSchoolsHandler(service.NewSchoolService(registrationsRepo), log)
	handlers.Delegates = httpapi.NewDelegatesHandler(
		service.NewDelegateService(registrationsRepo, workshopsRepo, locationsRepo, mailer, cfg.Event.Name, log), log)
	facilitatorSvc := service.NewFacilitatorService(registrationsRepo, workshopsRepo, log)
	handlers.Facilitators = httpapi.NewFacilitatorsHandler(facilitatorSvc, log)
	handlers.FacilitatorRegistrations = httpapi.NewFacilitatorRegistrationsHandler(facilitatorSvc, log)

	var (
		sheets  *service.RegistrationUpdateService
		summary *service.SummaryService
		reports *service.ReportService
	)
	if redisUp {
		reports = service.NewReportService(redisClient, cfg.Notify.Stream)
	}
	if db != nil {
		delegatesRepo := repository.NewPostgresDelegatesRepository(db)
		sheets = service.NewRegistrationUpdateService(workshopsRepo, locationsRepo, delegatesRepo,
			adminNotifier, recipients, cfg.Event.Name, log)
		summary = service.NewSummaryService(delegatesRepo)
		handlers.Flags = httpapi.NewFlagsHandler(
			service.NewFlagService(repository.NewPostgresFlagsRepository(db), log), log)
		handlers.Notifications = httpapi.NewNotificationsHandler(
			service.NewNotificationService(repository.NewPostgresNotificationsRepository(db), eventLoc, log), log)
		handlers.Agenda = httpapi.NewAgendaHandler(
			service.NewAgendaService(repository.NewPostgresAgendaRepository(db), eventLoc, log), log)
	}
	handlers.Actions = httpapi.NewAdminActionsHandler(assignSvc, sheets, summary, reports, log)

	router := httpapi.NewRouter(log)
	router.RegisterRoutes(handlers)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.Info("fact-registration listening", zap.String("addr", cfg.HTTP.Addr), zap.Int("notify_channels", adminNotifier.Len()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = redisClient.Close()
	_ = database.Close(db)
}
