package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/Dead-0User/digital-table-backend/internal/kitchen"
	"github.com/Dead-0User/digital-table-backend/internal/mongo"
	"github.com/Dead-0User/digital-table-backend/internal/order"
	"github.com/Dead-0User/digital-table-backend/internal/ws"
	"github.com/Dead-0User/digital-table-backend/pkg"
	"github.com/Dead-0User/digital-table-backend/pkg/event"
)

const (
	appNamespace = "TABLEORDER"
	appName      = "tableorder"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	orderRepo := mongo.NewOrderRepo(db)
	menuItemRepo := mongo.NewMenuItemRepo(db)
	tableRepo := mongo.NewTableRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL, func(topic string, err error) {
		logger.Error("event handler failed", "topic", topic, "error", err)
	})
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	// JetStream retains the order event log so the kitchen board can replay
	// it on startup. Live delivery still goes through the core subscriber.
	stream, err := pkg.NewNATSStream(pkg.NATSStreamConfig{
		URL:          natsURL,
		StreamName:   config.GetStringOrDef("nats.stream.name", "ORDER_EVENTS"),
		Topic:        event.OrdersTopic,
		ConsumerName: appName,
		MaxAge:       24 * time.Hour,
	})
	if err != nil {
		logger.Info("JetStream unavailable, kitchen board will warm from MongoDB", "error", err)
		stream = nil
	}

	svc := order.NewService(order.ServiceDeps{
		Orders:    orderRepo,
		Menu:      menuItemRepo,
		Tables:    tableRepo,
		Publisher: pub,
	}, logger)

	var board *kitchen.Board
	if stream != nil {
		board = kitchen.NewBoard(stream, orderRepo, logger)
	} else {
		board = kitchen.NewBoard(nil, orderRepo, logger)
	}

	hub := ws.NewHub()
	orderSub := kitchen.NewOrderSubscriber(sub, board, logger)
	orderSub.SetHub(hub)

	orderHandler := order.NewHandler(svc, logger)
	kitchenHandler := kitchen.NewHandler(board, logger)
	wsHandler := ws.NewHandler(hub, logger)

	hubLifecycle := apt.LifecycleHooks{
		OnStart: func(context.Context) error {
			go hub.Run()
			return nil
		},
	}

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	streamLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			if stream != nil {
				return stream.Close()
			}
			return nil
		},
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		hubLifecycle,
		orderSub,
		publisherLifecycle,
		subLifecycle,
		streamLifecycle,
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", orderHandler, kitchenHandler, wsHandler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
