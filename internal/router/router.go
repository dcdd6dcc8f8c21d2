package router

import (
	"net/http"
	"strings"

	"eklart/internal/handler"
	"eklart/internal/middleware"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	articleHandler *handler.ArticleHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	jwtSecret string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Article routes: list and detail
	articleRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/articles" && r.URL.Path != "/api/articles/" {
			articleHandler.GetByID(w, r)
			return
		}
		articleHandler.List(w, r)
	}
	mux.HandleFunc("/api/articles", articleRouteHandler)
	mux.HandleFunc("/api/articles/", articleRouteHandler)

	// Cart routes: the bare path serves fetch/add, subpaths carry either a
	// verb (clear, merge) or an article ID
	cartRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api/cart" || path == "/api/cart/" {
			switch r.Method {
			case http.MethodGet:
				cartHandler.Get(w, r)
			case http.MethodPost:
				cartHandler.Add(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		rest := strings.TrimPrefix(path, "/api/cart/")
		switch {
		case rest == "merge" && r.Method == http.MethodPost:
			cartHandler.Merge(w, r)
		case rest == "clear" && r.Method == http.MethodDelete:
			cartHandler.Clear(w, r)
		default:
			articleID, err := uuid.Parse(rest)
			if err != nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			switch r.Method {
			case http.MethodPut:
				cartHandler.UpdateQuantity(w, r, articleID)
			case http.MethodDelete:
				cartHandler.Remove(w, r, articleID)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		}
	}
	mux.HandleFunc("/api/cart", cartRouteHandler)
	mux.HandleFunc("/api/cart/", cartRouteHandler)

	// Order routes: checkout and history
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" && r.URL.Path != "/api/orders/" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPost:
			orderHandler.Create(w, r)
		case http.MethodGet:
			orderHandler.List(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> ShopperAuth
	var h http.Handler = mux
	h = middleware.ShopperAuth(jwtSecret, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
