package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		posts, err := s.Repo.ListPosts(ctx)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"dataset":     s.Dataset,
			"post_count":  len(posts),
			"uptime":      s.Metrics.Uptime().String(),
			"server_time": time.Now(),
		})
	}
}

// HandleGetPosts serves GET /getTweets, newest first.
func (s *Server) HandleGetPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		posts, err := s.getPosts(r)
		s.observe("get_posts", start, err)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, models.PostsResponse{Tweets: posts})
	}
}

func (s *Server) getPosts(r *http.Request) ([]models.Post, error) {
	if err := s.checkDataset(r); err != nil {
		return nil, err
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	return s.Repo.ListPosts(ctx)
}

// HandleAddPost serves POST /addPost. The store assigns the id and timestamp.
func (s *Server) HandleAddPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		post, err := s.addPost(r)
		s.observe("add_post", start, err)
		if err != nil {
			writeError(w, err)
			return
		}

		log.WithFields(log.Fields{
			"id":       post.ID,
			"username": post.Username,
		}).Info("Tweet posted")
		writeJSON(w, http.StatusOK, models.WriteAck{Message: "Tweet Posted!"})
	}
}

func (s *Server) addPost(r *http.Request) (*models.Post, error) {
	if err := s.checkDataset(r); err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(r); err != nil {
		return nil, err
	}

	var req models.AddPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "Invalid request format", err)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, utils.NewValidationFailure("text must not be blank")
	}

	post := &models.Post{
		ID:         uuid.New().String(),
		Username:   strings.TrimSpace(req.Username),
		ProfileImg: req.ProfileImg,
		Text:       strings.TrimSpace(req.Text),
		Image:      strings.TrimSpace(req.Image),
		CreatedAt:  s.now(),
	}
	if post.Username == "" {
		post.Username = models.UnknownUser.Name
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	if err := s.Repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
