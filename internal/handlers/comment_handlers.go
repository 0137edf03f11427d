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

// HandleGetComments serves GET /getComments?tweetId=, newest first.
func (s *Server) HandleGetComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		comments, err := s.getComments(r)
		s.observe("get_comments", start, err)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, comments)
	}
}

func (s *Server) getComments(r *http.Request) ([]models.Comment, error) {
	if err := s.checkDataset(r); err != nil {
		return nil, err
	}

	postID := r.URL.Query().Get("tweetId")
	if postID == "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "tweetId is required", nil)
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	return s.Repo.ListComments(ctx, postID)
}

// HandleAddComment serves POST /addComment. The referenced post must exist.
func (s *Server) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		comment, err := s.addComment(r)
		s.observe("add_comment", start, err)
		if err != nil {
			writeError(w, err)
			return
		}

		log.WithFields(log.Fields{
			"id":      comment.ID,
			"tweetId": comment.PostID,
		}).Info("Comment posted")
		writeJSON(w, http.StatusOK, models.WriteAck{Message: "Comment Posted!"})
	}
}

func (s *Server) addComment(r *http.Request) (*models.Comment, error) {
	if err := s.checkDataset(r); err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(r); err != nil {
		return nil, err
	}

	var req models.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "Invalid request format", err)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, utils.NewValidationFailure("comment and tweetId are required")
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	exists, err := s.Repo.PostExists(ctx, req.TweetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewAppError(utils.ErrNotFound, "tweet "+req.TweetID+" not found", nil)
	}

	comment := &models.Comment{
		ID:         uuid.New().String(),
		PostID:     req.TweetID,
		Username:   strings.TrimSpace(req.Username),
		ProfileImg: req.ProfileImg,
		Text:       strings.TrimSpace(req.Comment),
		CreatedAt:  s.now(),
	}
	if comment.Username == "" {
		comment.Username = models.UnknownUser.Name
	}

	if err := s.Repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
