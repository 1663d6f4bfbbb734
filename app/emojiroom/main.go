package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/superfeelapi/goEmojiRoom/business/session"
	"github.com/superfeelapi/goEmojiRoom/business/tiles"
	"github.com/superfeelapi/goEmojiRoom/business/web"
	"github.com/superfeelapi/goEmojiRoom/business/worker"
	"github.com/superfeelapi/goEmojiRoom/foundation/config"
	"github.com/superfeelapi/goEmojiRoom/foundation/external/faceapi"
	"github.com/superfeelapi/goEmojiRoom/foundation/livekit"
	"github.com/superfeelapi/goEmojiRoom/foundation/logger"
	"github.com/superfeelapi/goEmojiRoom/foundation/mqtt"
	"github.com/superfeelapi/goEmojiRoom/foundation/pubsub"
	"github.com/superfeelapi/goEmojiRoom/foundation/redis"
	"go.uber.org/zap"
)

var (
	version   string
	buildTime string
)

type appConfig struct {
	conf.Version
	Room struct {
		Name             string        `conf:"default:cs-spark"`
		Slots            int           `conf:"default:8"`
		Interval         time.Duration `conf:"default:1s"`
		AdmitWithoutTile bool          `conf:"default:true"`
		MaxInFlight      int           `conf:"default:8"`
		ConfigFilePath   string        `conf:"noprint"`
	}
	Web struct {
		Address         string        `conf:"default:0.0.0.0:8080"`
		ReadTimeout     time.Duration `conf:"default:10s"`
		WriteTimeout    time.Duration `conf:"default:20s"`
		ShutdownTimeout time.Duration `conf:"default:10s"`
		PresenterKey    string        `conf:"mask"`
		WSBuffer        int           `conf:"default:16"`
	}
	Face struct {
		Endpoint string `conf:"default:https://westeurope.api.cognitive.microsoft.com"`
		ApiKey   string `conf:"mask"`
		Mode     string `conf:"default:detect"`
	}
	LiveKit struct {
		URL           string
		ApiKey        string
		ApiSecret     string        `conf:"mask"`
		Identity      string        `conf:"default:emojiroom-watcher"`
		TokenLifetime time.Duration `conf:"default:2h"`
	}
	Redis struct {
		Address       string
		Password      string `conf:"mask"`
		UpdateChannel string `conf:"default:emojiroom:updates"`
	}
	MQTT struct {
		Broker   string
		ClientID string `conf:"default:emojiroom"`
		Topic    string `conf:"default:emojiroom"`
		QoS      int    `conf:"default:1"`
	}
	Logger struct {
		LogDirectory string `conf:"noprint"`
	}
}

func main() {
	// =================================================================================================================
	// Configuration

	cfg := appConfig{
		Version: conf.Version{
			Build: version,
			Desc:  buildTime,
		},
	}

	// Configuration Parsing, --help and --version are answered by conf.
	help, err := conf.Parse("EMOJIROOM", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			os.Exit(0)
		}
		fmt.Println(err)
		os.Exit(1)
	}

	// =================================================================================================================
	// Application Logger

	log, err := logger.New(cfg.Logger.LogDirectory, cfg.Room.Name, "emojiroom")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Errorw("shutdown", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg appConfig, log *zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// =================================================================================================================
	// Set Room Configuration

	room := config.Room{Name: cfg.Room.Name}
	if cfg.Room.ConfigFilePath != "" {
		var err error
		room, err = config.GetRoom(cfg.Room.ConfigFilePath, cfg.Room.Name)
		if err != nil {
			return fmt.Errorf("room config: %w", err)
		}
	}
	room = room.Merge(cfg.Room.Slots, cfg.Room.Interval, cfg.Room.AdmitWithoutTile, cfg.Face.Mode)

	if room.PresenterOnly && cfg.Web.PresenterKey == "" {
		return fmt.Errorf("room[%s] is presenter only but no presenter key is configured", room.Name)
	}
	presenterKey := cfg.Web.PresenterKey
	if !room.PresenterOnly {
		presenterKey = ""
	}

	// =================================================================================================================
	// Configuration Stringify

	out, err := conf.String(&cfg)
	if err != nil {
		log.Errorw("startup", "ERROR", err)
	}
	log.Infow("startup", "config", out)
	log.Infow("startup", "room", room.Name, "slots", room.Slots, "interval", room.Interval,
		"admitWithoutTile", *room.AdmitWithoutTile, "presenterOnly", room.PresenterOnly, "faceMode", room.FaceMode)

	// =================================================================================================================
	// Tiles And Registry

	table, err := tiles.New(room.Slots)
	if err != nil {
		return fmt.Errorf("tiles: %w", err)
	}
	registry := session.NewRegistry(room.Name, table, *room.AdmitWithoutTile)
	broker := pubsub.NewBroker()

	// =================================================================================================================
	// Face API

	analyzer, err := faceapi.New(cfg.Face.Endpoint, cfg.Face.ApiKey, faceapi.Mode(room.FaceMode))
	if err != nil {
		return fmt.Errorf("faceapi: %w", err)
	}

	// =================================================================================================================
	// Redis

	var producer worker.Producer
	if cfg.Redis.Address != "" {
		redisClient, err := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.UpdateChannel, log)
		if err != nil {
			log.Errorw("startup", "service", "redis", "ERROR", err)
		} else {
			producer = redisClient
			defer redisClient.Close()
		}
	}

	// =================================================================================================================
	// MQTT

	var emitter worker.Emitter
	if cfg.MQTT.Broker != "" {
		mqttClient := mqtt.New(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			QoS:      byte(cfg.MQTT.QoS),
		}, log)
		if err := mqttClient.Connect(); err != nil {
			mqttClient.Close()
			log.Errorw("startup", "service", "mqtt", "ERROR", err)
		} else {
			emitter = mqttClient
			defer mqttClient.Close()
		}
	}

	// =================================================================================================================
	// LiveKit Watcher

	if cfg.LiveKit.URL != "" && cfg.LiveKit.ApiKey != "" {
		watcher, err := livekit.Watch(ctx, livekit.Config{
			URL:       cfg.LiveKit.URL,
			APIKey:    cfg.LiveKit.ApiKey,
			APISecret: cfg.LiveKit.ApiSecret,
			Room:      room.Name,
			Identity:  cfg.LiveKit.Identity,
		}, livekit.Events{
			Join: func(sid, identity string) {
				p, err := registry.Join(sid, identity)
				if err != nil {
					log.Infow("livekit: join", "sid", sid, "identity", identity, "ERROR", err)
					return
				}
				log.Infow("livekit: join", "sid", sid, "identity", identity, "slot", p.Slot)
			},
			Leave: registry.Leave,
		}, log)
		if err != nil {
			log.Errorw("startup", "service", "livekit", "ERROR", err)
		} else {
			defer watcher.Close()
		}
	}

	// =================================================================================================================
	// Run Worker

	workerCh := worker.Run(worker.Settings{
		Config: worker.Config{
			Interval:    room.Interval,
			MaxInFlight: cfg.Room.MaxInFlight,
		},
		Context:  ctx,
		Logger:   log,
		Registry: registry,
		Analyzer: analyzer,
		Broker:   broker,
		Redis:    producer,
		MQTT:     emitter,
	})

	// =================================================================================================================
	// Start API Service

	handlers := web.New(web.Settings{
		Config: web.Config{
			LiveKit: web.LiveKit{
				URL:           cfg.LiveKit.URL,
				APIKey:        cfg.LiveKit.ApiKey,
				APISecret:     cfg.LiveKit.ApiSecret,
				TokenLifetime: cfg.LiveKit.TokenLifetime,
			},
			PresenterKey: presenterKey,
			WSBuffer:     cfg.Web.WSBuffer,
		},
		Logger:   log,
		Registry: registry,
		Analyzer: analyzer,
		Broker:   broker,
	})

	api := http.Server{
		Addr:         cfg.Web.Address,
		Handler:      handlers.Routes(),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Blocking main and waiting for error or shutdown.
	var runErr error
	select {
	case err := <-serverErrors:
		runErr = fmt.Errorf("server error: %w", err)

	case err := <-workerCh:
		if err != nil {
			runErr = fmt.Errorf("worker error: %w", err)
		}

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
	}
	defer log.Infow("shutdown", "status", "shutdown complete")

	sctx, scancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer scancel()

	if err := api.Shutdown(sctx); err != nil {
		api.Close()
		log.Errorw("shutdown", "ERROR", fmt.Errorf("could not stop server gracefully: %w", err))
	}

	cancel()
	for range workerCh {
	}

	return runErr
}
