package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"TierlistBackend/internal/handler"
	"TierlistBackend/internal/service"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func setCORSHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only browser requests carry an Origin
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs method, path, status and latency. Bodies are not
// logged since uploads carry whole images.
func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

// NewRouter wires the tierlist API. staticDir, when set, is served under
// /static/ for the frontend. maxRequestBytes caps a whole upload request.
func NewRouter(s service.TierlistService, staticDir string, maxRequestBytes int64, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := mux.NewRouter()

	r.Use(loggingMiddleware(logger))
	r.Use(setCORSHeaders)

	r.HandleFunc("/board", handler.GetBoard(s, logger)).Methods("GET")
	r.HandleFunc("/tiers", handler.ListTiers(s, logger)).Methods("GET")
	r.HandleFunc("/tiers/{id}", handler.UpdateTier(s, logger)).Methods("PUT", "OPTIONS")
	r.HandleFunc("/tiers/{id}/move", handler.MoveWithinTier(s, logger)).Methods("POST", "OPTIONS")
	r.HandleFunc("/unranked/move", handler.MoveWithinTier(s, logger)).Methods("POST", "OPTIONS")

	r.HandleFunc("/images", handler.UploadImages(s, maxRequestBytes, logger)).Methods("POST", "OPTIONS")
	r.HandleFunc("/images/{id}/tier", handler.ReassignTier(s, logger)).Methods("POST", "OPTIONS")

	r.HandleFunc("/drag/start", handler.DragStart(s, logger)).Methods("POST", "OPTIONS")
	r.HandleFunc("/drag/over", handler.DragOver(s, logger)).Methods("POST", "OPTIONS")
	r.HandleFunc("/drag/end", handler.DragEnd(s, logger)).Methods("POST", "OPTIONS")

	r.HandleFunc("/reset", handler.Reset(s, logger)).Methods("POST", "OPTIONS")

	if staticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	return r
}
