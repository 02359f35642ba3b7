package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AaronLay10/SeedEngine/internal/api"
	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
	"github.com/AaronLay10/SeedEngine/internal/mqtt"
	"github.com/AaronLay10/SeedEngine/internal/storage/backend"
	"github.com/AaronLay10/SeedEngine/internal/version"
	"github.com/AaronLay10/SeedEngine/internal/world/standard"
)

func main() {
	events.SetOutput(os.Stderr)

	svc, err := config.ServiceFromEnv()
	if err != nil {
		log.Fatalf("failed to load service config: %v", err)
	}

	base := config.Default()
	if svc.SettingsPath != "" {
		if base, err = config.LoadSettings(svc.SettingsPath); err != nil {
			log.Fatalf("failed to load settings: %v", err)
		}
	}

	hostname, _ := os.Hostname()
	events.Emit(events.LevelInfo, "system.startup", "api starting", map[string]interface{}{
		"service":  "api",
		"version":  version.Version,
		"hostname": hostname,
		"archive":  backend.Name(svc),
	})

	store, err := backend.Open(svc)
	if err != nil {
		log.Fatalf("failed to open seed archive: %v", err)
	}
	defer store.Close()
	events.SetSink(store)

	auth, err := api.AuthFromEnv()
	if err != nil {
		log.Fatalf("failed to resolve API credentials: %v", err)
	}
	alertCfg, err := api.AlertConfigFromEnv()
	if err != nil {
		log.Fatalf("failed to load alert config: %v", err)
	}

	opts := api.Options{
		Base:   base,
		World:  standard.Definition,
		Store:  store,
		Auth:   auth,
		TLS:    api.TLSFromEnv(),
		Alerts: api.NewAlerter(alertCfg),
	}

	// MQTT is optional: the API serves seeds without a broker. A broker that
	// fails to connect is still watched so the outage raises an alert.
	if svc.MQTTURL != "" {
		client := mqtt.NewClient(mqtt.OptionsFromService(svc, fmt.Sprintf("seedengine-api-%s", hostname)))
		opts.Broker = client
		if err := client.Connect(); err != nil {
			events.Emit(events.LevelWarn, "mqtt.disconnected", "broker unavailable, publishing disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			opts.Publisher = mqtt.NewPublisher(client, svc.MQTTPrefix)
			defer client.Disconnect()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(opts)
	srv.StartAlertMonitor(ctx, 5*time.Second)

	if err := srv.ListenAndServe(ctx, svc.APIPort); err != nil {
		log.Printf("api server failed: %v", err)
	}
}
