/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  uuid per request, echoed as X-Request-ID
  4. CORS:       Cross-origin requests for the local frontend

ROUTES:
  GET    /api                       Service metadata
  GET    /health                    Health check
  GET    /rooms                     Room catalog
  GET    /search                    Availability search
  POST   /bookings                  Create booking
  DELETE /bookings/{id}             Cancel booking
  GET    /users/{id}/bookings       Per-user booking list
  GET    /*                         Static frontend (web/), with fallback

SECURITY NOTE:
  No authentication middleware. All endpoints are public by design.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Get("/api", h.Meta)
	r.Get("/health", h.Health)
	r.Get("/rooms", h.ListRooms)
	r.Get("/search", h.Search)
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.CreateBooking)
		r.Delete("/{id}", h.CancelBooking)
	})
	r.Get("/users/{id}/bookings", h.UserBookings)

	// Static frontend
	staticDir := "./web"
	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
			fullPath := filepath.Join(staticDir, req.URL.Path)
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, req)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Study Room Booking</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Study Room Booking API</h1>
<p>No frontend is built. The API is fully usable directly:</p>
<ul>
<li><a href="/rooms">/rooms</a> - List rooms</li>
<li><a href="/search?date=2025-11-16&start=13:00&end=14:00">/search</a> - Availability</li>
<li>POST /bookings - Create a booking</li>
<li><a href="/users/1/bookings">/users/{id}/bookings</a> - Your bookings</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}

// =============================================================================
// REQUEST ID MIDDLEWARE
// =============================================================================

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID attaches a uuid to each request and echoes it in the
// X-Request-ID response header. The id also lands in every error envelope
// and audit record, tying client reports to the errors.ndjson stream.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
