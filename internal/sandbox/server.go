package sandbox

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"peer-review-assigner/internal/api"
	"peer-review-assigner/internal/logger"
)

func NewRouter(store *Store, log *zap.Logger, cfgLogger *logger.Config, token string, timeout time.Duration) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.MiddlewareLogger(log, cfgLogger))
	router.Use(middleware.Recoverer)
	if timeout > 0 {
		router.Use(middleware.Timeout(timeout))
	}

	router.Route("/api/v1/courses/{courseID}", func(r chi.Router) {
		r.Use(bearerAuth(token, log))

		r.Get("/", GetCourse(store, log))
		r.Get("/users", ListUsers(store, log))
		r.Get("/assignments/{assignmentID}", GetAssignment(store, log))
		r.Get("/assignments/{assignmentID}/submissions", ListSubmissions(store, log))
		r.Post("/assignments/{assignmentID}/submissions/{submissionID}/peer_reviews", CreatePeerReview(store, log))
	})

	return router
}

func bearerAuth(token string, log *zap.Logger) func(http.Handler) http.Handler {
	expected := []byte("Bearer " + token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if token != "" && subtle.ConstantTimeCompare(got, expected) != 1 {
				log.Warn("rejected request with invalid token", zap.String("path", r.URL.Path))
				api.WriteApiError(w, log, api.ErrUnauthorized, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
