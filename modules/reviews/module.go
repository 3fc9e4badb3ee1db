package reviews

import (
	"context"
	"crypto/subtle"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Module runs the review-collection service on its own port. It shares
// nothing with the party coordinator; file I/O here never serializes
// message routing.
type Module struct {
	app    *fiber.App
	store  *Store
	port   string
	secret string
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new reviews module. The admin endpoint stays locked
// unless ADMIN_SECRET is set.
func NewModule() *Module {
	port := os.Getenv("REVIEWS_PORT")
	if port == "" {
		port = "4000"
	}
	path := os.Getenv("REVIEWS_FILE")
	if path == "" {
		path = "reviews.json"
	}
	return &Module{
		store:  NewStore(path),
		port:   port,
		secret: os.Getenv("ADMIN_SECRET"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "reviews"
}

// Start initializes the reviews HTTP server.
func (m *Module) Start(_ context.Context) error {
	m.app = fiber.New(fiber.Config{
		AppName:               "GlobalChatroom Reviews",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[reviews] HTTP server error: %v", err)
		}
	}()

	log.Printf("[reviews] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts down the reviews HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[reviews] Shutting down HTTP server...")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":    m.port,
			"reviews": m.store.Count(),
		},
	}
}

// Store returns the underlying review store.
func (m *Module) Store() *Store {
	return m.store
}

func (m *Module) setupRoutes() {
	m.app.Post("/submit", m.submitReview)
	m.app.Get("/reviews.json", m.listReviews)
	m.app.Get("/admin/reviews", m.adminReviews)
}

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
	User     string `json:"user"`
}

// submitReview handles POST /submit.
func (m *Module) submitReview(c *fiber.Ctx) error {
	var req SubmitRequest
	// Malformed bodies fall through with zero values; a missing rating is
	// the only rejected case.
	_ = c.BodyParser(&req)

	if req.Rating == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "rating required",
		})
	}

	if _, err := m.store.Append(req.Rating, req.Feedback, req.User); err != nil {
		log.Printf("[reviews] Failed to append review: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store review",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// listReviews handles GET /reviews.json.
func (m *Module) listReviews(c *fiber.Ctx) error {
	return c.JSON(m.store.All())
}

// adminReviews handles GET /admin/reviews, gated by the shared secret.
func (m *Module) adminReviews(c *fiber.Ctx) error {
	supplied := c.Query("secret")
	if m.secret == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(m.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	all := m.store.All()
	return c.JSON(fiber.Map{
		"reviews": all,
		"total":   len(all),
	})
}
