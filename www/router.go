package www

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"pycramdb/store"
)

var log = logrus.WithField("component", "www")

// Connectivity reports whether the event publisher is connected.
type Connectivity interface {
	IsConnected() bool
}

type Handlers struct {
	db  *store.DB
	msg Connectivity
}

// NewRouter builds the JSON API. msg may be nil when events are not
// published.
func NewRouter(db *store.DB, msg Connectivity) http.Handler {
	h := &Handlers{db: db, msg: msg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealthCheck)
		r.Get("/schema", h.apiSchema)

		r.Get("/actions", h.apiListActions)
		r.Post("/actions", h.apiInsertAction)
		r.Get("/actions/{id}", h.apiGetAction)
		r.Delete("/actions/{id}", h.apiDeleteAction)

		r.Post("/values/{kind}", h.apiInsertValue)
		r.Get("/values/{kind}/{id}", h.apiGetValue)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
