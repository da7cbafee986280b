package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"peer-review-assigner/internal/api"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

func GetCourse(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := idParam(w, r, "courseID", logger)
		if !ok {
			return
		}

		course, err := store.Course(courseID)
		if err != nil {
			writeStoreError(w, logger, "GetCourse", err)
			return
		}

		writeJSON(w, logger, http.StatusOK, course)
	}
}

func GetAssignment(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := idParam(w, r, "courseID", logger)
		if !ok {
			return
		}
		assignmentID, ok := idParam(w, r, "assignmentID", logger)
		if !ok {
			return
		}

		assignment, err := store.Assignment(courseID, assignmentID)
		if err != nil {
			writeStoreError(w, logger, "GetAssignment", err)
			return
		}

		writeJSON(w, logger, http.StatusOK, assignment)
	}
}

func ListUsers(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := idParam(w, r, "courseID", logger)
		if !ok {
			return
		}

		enrollment := r.URL.Query().Get("enrollment_type")
		if enrollment != "" && enrollment != "student" {
			writeJSON(w, logger, http.StatusOK, []api.User{})
			return
		}

		users, err := store.Students(courseID)
		if err != nil {
			writeStoreError(w, logger, "ListUsers", err)
			return
		}

		writePage(w, r, logger, users)
	}
}

func ListSubmissions(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := idParam(w, r, "courseID", logger)
		if !ok {
			return
		}
		assignmentID, ok := idParam(w, r, "assignmentID", logger)
		if !ok {
			return
		}

		submissions, err := store.Submissions(courseID, assignmentID)
		if err != nil {
			writeStoreError(w, logger, "ListSubmissions", err)
			return
		}

		writePage(w, r, logger, submissions)
	}
}

func CreatePeerReview(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := idParam(w, r, "courseID", logger)
		if !ok {
			return
		}
		assignmentID, ok := idParam(w, r, "assignmentID", logger)
		if !ok {
			return
		}
		submissionID, ok := idParam(w, r, "submissionID", logger)
		if !ok {
			return
		}

		if err := r.ParseForm(); err != nil {
			logger.Warn("CreatePeerReview: failed to parse form", zap.Error(err))
			api.WriteApiError(w, logger, "failed to parse form", http.StatusBadRequest)
			return
		}

		reviewerID, err := strconv.ParseInt(r.PostForm.Get("user_id"), 10, 64)
		if err != nil {
			logger.Warn("CreatePeerReview: invalid user_id", zap.String("user_id", r.PostForm.Get("user_id")))
			api.WriteApiError(w, logger, api.ErrInvalidUserID, http.StatusBadRequest)
			return
		}

		review, err := store.CreatePeerReview(courseID, assignmentID, submissionID, reviewerID)
		if err != nil {
			writeStoreError(w, logger, "CreatePeerReview", err)
			return
		}

		writeJSON(w, logger, http.StatusOK, review)

		logger.Info("CreatePeerReview: successfully assigned peer review",
			zap.Int64("submission_id", submissionID),
			zap.Int64("assessor_id", reviewerID),
			zap.Int64("review_id", review.ID),
		)
	}
}

func writeStoreError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrAssignmentNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrUserNotFound):
		logger.Warn(op+": not found", zap.Error(err))
		api.WriteApiError(w, logger, api.ErrNotFound, http.StatusNotFound)

	case errors.Is(err, ErrSelfReview):
		logger.Warn(op+": self review", zap.Error(err))
		api.WriteApiError(w, logger, api.ErrSelfReview, http.StatusBadRequest)

	case errors.Is(err, ErrAlreadyAssigned):
		logger.Warn(op+": already assigned", zap.Error(err))
		api.WriteApiError(w, logger, api.ErrAlreadyAssigned, http.StatusBadRequest)

	default:
		logger.Error(op+": failed", zap.Error(err))
		api.WriteApiError(w, logger, "An error occurred.", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writePage writes one page of items and a Link header pointing at the next
// page, using the platform's page/per_page query parameters.
func writePage[T any](w http.ResponseWriter, r *http.Request, logger *zap.Logger, items []T) {
	query := r.URL.Query()

	perPage, err := strconv.Atoi(query.Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = defaultPerPage
	}
	perPage = min(perPage, maxPerPage)

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	start := min((page-1)*perPage, len(items))
	end := min(start+perPage, len(items))

	if end < len(items) {
		next := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
		if r.TLS != nil {
			next.Scheme = "https"
		}
		q := cloneQuery(query)
		q.Set("page", strconv.Itoa(page+1))
		q.Set("per_page", strconv.Itoa(perPage))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next.String()))
	}

	writeJSON(w, logger, http.StatusOK, items[start:end])
}

func cloneQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func idParam(w http.ResponseWriter, r *http.Request, name string, logger *zap.Logger) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn("invalid id in path", zap.String("param", name), zap.String("value", raw))
		api.WriteApiError(w, logger, api.ErrNotFound, http.StatusNotFound)
		return 0, false
	}
	return id, true
}
