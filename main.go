package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/jasemontop/GlobalChatroom/modules/api"
	"github.com/jasemontop/GlobalChatroom/modules/broadcast"
	"github.com/jasemontop/GlobalChatroom/modules/party"
	"github.com/jasemontop/GlobalChatroom/modules/reviews"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== GlobalChatroom - party chat server ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	partyModule := party.NewModule(logger)
	broadcastModule := broadcast.NewModule()
	apiModule := api.NewModule()
	reviewsModule := reviews.NewModule()

	// Inject broadcast hub into API module
	// (done manually because the hub is not exposed via ServiceContainer)
	apiModule.SetHub(broadcastModule.GetHub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - party: Core coordinator (ServiceProviderModule + EventEmitterModule)
	// - broadcast: Event consumer (WebSocket fan-out hub)
	// - api: Driving adapter (Fiber HTTP/WebSocket server, depends on party)
	// - reviews: Standalone review-collection service
	app.Register(partyModule)
	app.Register(broadcastModule)
	app.Register(apiModule)
	app.Register(reviewsModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	reviewsPort := os.Getenv("REVIEWS_PORT")
	if reviewsPort == "" {
		reviewsPort = "4000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Inbound: setIdentity, createParty, joinParty, leaveParty,")
	log.Println("           sendMessage, sendImage, deleteMessage, typing, sendInvite")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET /health          - Health check")
	log.Println("  GET /api/v1/parties  - Party list snapshot")
	log.Println("  GET /api/v1/users    - Presence snapshot")
	log.Println("")
	log.Printf("Reviews Service (http://localhost:%s):", reviewsPort)
	log.Println("  POST /submit         - Submit a rating")
	log.Println("  GET  /reviews.json   - Full review collection")
	log.Println("  GET  /admin/reviews  - Admin dashboard (?secret=...)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
