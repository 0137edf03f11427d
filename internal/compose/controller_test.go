package compose

import (
	"context"
	"errors"
	"sync"
	"testing"

	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	posts    []models.AddPostRequest
	comments []models.AddCommentRequest
	err      error
}

func (w *fakeWriter) AddPost(ctx context.Context, req models.AddPostRequest) (*models.WriteAck, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.posts = append(w.posts, req)
	if w.err != nil {
		return nil, w.err
	}
	return &models.WriteAck{Message: "Tweet Posted!"}, nil
}

func (w *fakeWriter) AddComment(ctx context.Context, req models.AddCommentRequest) (*models.WriteAck, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.comments = append(w.comments, req)
	if w.err != nil {
		return nil, w.err
	}
	return &models.WriteAck{Message: "Comment Posted!"}, nil
}

var ann = &models.Identity{Name: "Ann Lee", Image: "https://img.test/ann.png"}

func TestSubmitPost(t *testing.T) {
	writer := &fakeWriter{}
	recorder := &Recorder{}
	controller := NewController(writer, recorder)

	post, err := controller.SubmitPost(context.Background(), models.PostDraft{
		Text:  "  hello  ",
		Image: "https://img.test/cat.png",
	}, ann)
	require.NoError(t, err)

	require.Len(t, writer.posts, 1)
	assert.Equal(t, models.AddPostRequest{
		Text:       "hello",
		Username:   "Ann Lee",
		ProfileImg: "https://img.test/ann.png",
		Image:      "https://img.test/cat.png",
	}, writer.posts[0])

	assert.Equal(t, "hello", post.Text)
	assert.Empty(t, post.ID, "the store id is never handed back")
}

func TestSubmitPostAnonymousFallsBackToUnknownUser(t *testing.T) {
	writer := &fakeWriter{}
	controller := NewController(writer, &Recorder{})

	_, err := controller.SubmitPost(context.Background(), models.PostDraft{Text: "hi"}, nil)
	require.NoError(t, err)

	require.Len(t, writer.posts, 1)
	assert.Equal(t, "Unknown User", writer.posts[0].Username)
	assert.Equal(t, models.DefaultAvatarURL, writer.posts[0].ProfileImg)
	assert.Empty(t, writer.posts[0].Image)
}

func TestBlankBodiesNeverReachTheNetwork(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		writer := &fakeWriter{}
		recorder := &Recorder{}
		controller := NewController(writer, recorder)

		_, err := controller.SubmitPost(context.Background(), models.PostDraft{Text: text}, ann)
		assert.True(t, utils.IsErrorCode(err, utils.ErrValidationFailure), "post %q", text)

		_, err = controller.SubmitReply(context.Background(), models.ReplyDraft{Text: text}, "p1", ann)
		assert.True(t, utils.IsErrorCode(err, utils.ErrValidationFailure), "reply %q", text)

		assert.Empty(t, writer.posts)
		assert.Empty(t, writer.comments)
		assert.Empty(t, recorder.Toasts(), "validation failures do not start a notification")
	}
}

func TestSubmitReply(t *testing.T) {
	writer := &fakeWriter{}
	controller := NewController(writer, &Recorder{})

	comment, err := controller.SubmitReply(context.Background(), models.ReplyDraft{Text: " nice post "}, "p1", ann)
	require.NoError(t, err)

	require.Len(t, writer.comments, 1)
	assert.Equal(t, models.AddCommentRequest{
		Comment:    "nice post",
		TweetID:    "p1",
		Username:   "Ann Lee",
		ProfileImg: "https://img.test/ann.png",
	}, writer.comments[0])
	assert.Equal(t, "p1", comment.PostID)
	assert.Equal(t, "nice post", comment.Text)
}

func TestSubmitReplyNeedsPostID(t *testing.T) {
	writer := &fakeWriter{}
	controller := NewController(writer, &Recorder{})

	_, err := controller.SubmitReply(context.Background(), models.ReplyDraft{Text: "hi"}, "", ann)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	assert.Empty(t, writer.comments)
}

func TestOneNotificationLifecyclePerSubmission(t *testing.T) {
	writer := &fakeWriter{}
	recorder := &Recorder{}
	controller := NewController(writer, recorder)

	_, err := controller.SubmitReply(context.Background(), models.ReplyDraft{Text: "first"}, "p1", ann)
	require.NoError(t, err)
	_, err = controller.SubmitReply(context.Background(), models.ReplyDraft{Text: "second"}, "p1", ann)
	require.NoError(t, err)

	toasts := recorder.Toasts()
	require.Len(t, toasts, 4)

	assert.Equal(t, ToastLoading, toasts[0].Status)
	assert.Equal(t, "Posting Reply...", toasts[0].Message)
	assert.Equal(t, ToastSuccess, toasts[1].Status)
	assert.Equal(t, toasts[0].ID, toasts[1].ID)

	assert.NotEqual(t, toasts[0].ID, toasts[2].ID)
	assert.Equal(t, toasts[2].ID, toasts[3].ID)
}

func TestWriteFailureSurfacesNotification(t *testing.T) {
	writer := &fakeWriter{err: errors.New("connection refused")}
	recorder := &Recorder{}
	controller := NewController(writer, recorder)

	post, err := controller.SubmitPost(context.Background(), models.PostDraft{Text: "hello"}, ann)
	assert.Nil(t, post)
	assert.True(t, utils.IsErrorCode(err, utils.ErrWriteFailure))
	assert.Len(t, writer.posts, 1, "exactly one write, no retry")

	toasts := recorder.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, ToastLoading, toasts[0].Status)
	assert.Equal(t, ToastFailure, toasts[1].Status)
	assert.Equal(t, toasts[0].ID, toasts[1].ID)
}

func TestCanSubmit(t *testing.T) {
	assert.False(t, CanSubmit(""))
	assert.False(t, CanSubmit("   "))
	assert.True(t, CanSubmit(" x "))
}
