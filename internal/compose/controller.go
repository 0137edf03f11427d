// Package compose validates and submits new posts and replies.
package compose

import (
	"context"
	"errors"
	"time"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Writer is the create half of the content store.
type Writer interface {
	AddPost(ctx context.Context, req models.AddPostRequest) (*models.WriteAck, error)
	AddComment(ctx context.Context, req models.AddCommentRequest) (*models.WriteAck, error)
}

// Controller turns drafts into exactly one write each. It never refreshes a
// collection itself; the owning view model does that after success.
type Controller struct {
	writer   Writer
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewController(writer Writer, notifier Notifier) *Controller {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Controller{
		writer:   writer,
		notifier: notifier,
		validate: utils.NewValidator(),
		now:      time.Now,
	}
}

// SubmitPost publishes draft as author. A nil author posts as UnknownUser.
// The returned Post is the submitted content; it has no store id.
func (c *Controller) SubmitPost(ctx context.Context, draft models.PostDraft, author *models.Identity) (*models.Post, error) {
	if err := c.check(draft); err != nil {
		return nil, err
	}

	who := author.OrUnknown()
	req := models.AddPostRequest{
		Text:       draft.Trimmed(),
		Username:   who.Name,
		ProfileImg: who.Image,
		Image:      draft.Image,
	}

	toastID := c.start("Posting Tweet...")
	if _, err := c.writer.AddPost(ctx, req); err != nil {
		c.finish(toastID, ToastFailure, "Could not post Tweet")
		log.WithField("author", who.Name).Errorf("Post submission failed: %v", err)
		return nil, asWriteFailure("post", err)
	}
	c.finish(toastID, ToastSuccess, "Tweet Posted")

	return &models.Post{
		Username:   req.Username,
		ProfileImg: req.ProfileImg,
		Text:       req.Text,
		Image:      req.Image,
		CreatedAt:  c.now(),
	}, nil
}

// SubmitReply publishes draft as a comment on postID. Authentication is
// gated by the caller; a nil author here still falls back to UnknownUser.
func (c *Controller) SubmitReply(ctx context.Context, draft models.ReplyDraft, postID string, author *models.Identity) (*models.Comment, error) {
	if err := c.check(draft); err != nil {
		return nil, err
	}
	if postID == "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "reply needs a persisted post id", nil)
	}

	who := author.OrUnknown()
	req := models.AddCommentRequest{
		Comment:    draft.Trimmed(),
		TweetID:    postID,
		Username:   who.Name,
		ProfileImg: who.Image,
	}

	toastID := c.start("Posting Reply...")
	if _, err := c.writer.AddComment(ctx, req); err != nil {
		c.finish(toastID, ToastFailure, "Could not post Reply")
		log.WithFields(log.Fields{"author": who.Name, "postId": postID}).Errorf("Reply submission failed: %v", err)
		return nil, asWriteFailure("comment", err)
	}
	c.finish(toastID, ToastSuccess, "Reply Posted!")

	return &models.Comment{
		PostID:     postID,
		Username:   req.Username,
		ProfileImg: req.ProfileImg,
		Text:       req.Comment,
		CreatedAt:  c.now(),
	}, nil
}

func (c *Controller) check(draft interface{}) error {
	if err := c.validate.Struct(draft); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return utils.NewValidationFailure(fieldErrs[0].Field() + " must not be blank")
		}
		return utils.NewValidationFailure(err.Error())
	}
	return nil
}

func (c *Controller) start(message string) string {
	id := uuid.NewString()
	c.notifier.Notify(Toast{ID: id, Status: ToastLoading, Message: message})
	return id
}

func (c *Controller) finish(id string, status ToastStatus, message string) {
	c.notifier.Notify(Toast{ID: id, Status: status, Message: message})
}

func asWriteFailure(what string, err error) error {
	if utils.IsErrorCode(err, utils.ErrWriteFailure) {
		return err
	}
	return utils.NewWriteFailure(what, err)
}
