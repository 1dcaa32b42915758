package main

import (
	"context"
	"log"
	"net/http"

	"github.com/rs/cors"

	"inkpress/api/auth"
	"inkpress/api/router"
	"inkpress/config"
	"inkpress/db"
	_ "inkpress/docs" // swag generated package
	"inkpress/eventbus"
	"inkpress/logger"
	"inkpress/media"
)

// @title           Inkpress API
// @version         1.0
// @description     Blog content management API: posts, comments, likes, images
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB: ", err)
	}

	jwtManager, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	mediaStore, err := media.NewMinIOStore(ctx, cfg.Media)
	if err != nil {
		log.Fatal("failed to initialize media store: ", err)
	}

	var bus eventbus.Bus = eventbus.Noop{}
	if brokers := config.KafkaBrokers(); brokers != "" {
		kb, err := eventbus.NewKafkaBus(brokers)
		if err != nil {
			log.Fatal("failed to initialize kafka producer: ", err)
		}
		defer kb.Close()
		bus = kb
	} else {
		logger.Log.Info("KAFKA_BOOTSTRAP_SERVERS not set, lifecycle events disabled")
	}

	r := router.New(router.Deps{
		JWT:   jwtManager,
		Media: mediaStore,
		Bus:   bus,
	})

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	logger.Log.Infof("listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
