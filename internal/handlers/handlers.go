package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"twitter-clone/internal/database"
	"twitter-clone/internal/store"
	"twitter-clone/internal/utils"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// Server holds all server dependencies of the reference content store
type Server struct {
	Repo           database.Repository
	Metrics        *utils.MetricsCollector
	Dataset        string
	Token          string
	RequestTimeout time.Duration

	validate *validator.Validate
	now      func() time.Time
}

// NewServer creates a new Server instance with the given components
func NewServer(repo database.Repository, metrics *utils.MetricsCollector, dataset, token string) *Server {
	if metrics == nil {
		metrics = utils.NewMetricsCollector()
	}
	return &Server{
		Repo:           repo,
		Metrics:        metrics,
		Dataset:        dataset,
		Token:          token,
		RequestTimeout: 5 * time.Second, // Default timeout for repository calls
		validate:       utils.NewValidator(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Routes registers every store endpoint on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.HandleHealth())
	mux.HandleFunc("/getTweets", s.HandleGetPosts())
	mux.HandleFunc("/addPost", s.HandleAddPost())
	mux.HandleFunc("/getComments", s.HandleGetComments())
	mux.HandleFunc("/addComment", s.HandleAddComment())
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.RequestTimeout)
}

// checkDataset rejects requests addressed to a dataset this store does not serve.
func (s *Server) checkDataset(r *http.Request) error {
	if r.Header.Get(store.DatasetHeader) != s.Dataset {
		return utils.NewAppError(utils.ErrNotFound, "unknown dataset", nil)
	}
	return nil
}

// authorizeWrite checks the bearer token when one is configured.
func (s *Server) authorizeWrite(r *http.Request) error {
	if s.Token == "" {
		return nil
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		return utils.NewAppError(utils.ErrUnauthorized, "missing or invalid token", nil)
	}
	return nil
}

func (s *Server) observe(operation string, start time.Time, err error) {
	s.Metrics.IncrementRequests(operation)
	s.Metrics.AddOperationLatency(operation, time.Since(start))
	if err != nil {
		s.Metrics.IncrementErrors(operation)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := utils.AppErrorToHTTPStatus(utils.ErrorCode(err))
	message := http.StatusText(status)
	var appErr *utils.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		log.Errorf("Store request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
