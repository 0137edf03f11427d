// Command feed prints the timeline with its comment threads and can post a
// tweet or a reply first.
//
//	feed                                   print the feed
//	feed -post "hello" [-image URL]        post, then print
//	feed -reply <postID> -text "nice"      reply, then print
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"twitter-clone/internal/compose"
	"twitter-clone/internal/config"
	"twitter-clone/internal/engine"
	"twitter-clone/internal/engine/actors"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	log "github.com/sirupsen/logrus"
)

func main() {
	var postText, image, replyTo, replyText, user, avatar string
	var wait time.Duration
	flag.StringVar(&postText, "post", "", "text of a tweet to post before printing")
	flag.StringVar(&image, "image", "", "optional image URL for -post")
	flag.StringVar(&replyTo, "reply", "", "id of the tweet to reply to")
	flag.StringVar(&replyText, "text", "", "reply text for -reply")
	flag.StringVar(&user, "user", "", "display name to post as; empty posts anonymously and cannot reply")
	flag.StringVar(&avatar, "avatar", "", "profile image URL for -user")
	flag.DurationVar(&wait, "wait", 30*time.Second, "how long to wait for the store")
	flag.Parse()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	var session *models.Identity
	if user != "" {
		session = &models.Identity{Name: user, Image: avatar}
	}

	system := actor.NewActorSystem()
	defer system.Shutdown()

	feedEngine := engine.NewStoreEngine(system, cfg, utils.NewMetricsCollector(), compose.LogNotifier{}, nil)
	defer feedEngine.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := run(ctx, feedEngine, session, postText, image, replyTo, replyText); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, e *engine.Engine, session *models.Identity, postText, image, replyTo, replyText string) error {
	if _, err := e.Refresh(); err != nil {
		return err
	}
	state, err := e.WaitFeed(ctx)
	if err != nil {
		return err
	}
	if state.LastError != nil {
		return fmt.Errorf("could not load tweets: %w", state.LastError)
	}

	if postText != "" {
		if _, err := e.SetDraft(postText, image); err != nil {
			return err
		}
		if _, err := e.SubmitPost(session); err != nil {
			return err
		}
	}

	if replyTo != "" {
		if _, err := e.WaitThread(ctx, replyTo); err != nil {
			return err
		}
		if _, err := e.SetReplyDraft(replyTo, replyText); err != nil {
			return err
		}
		if _, err := e.SubmitReply(replyTo, session); err != nil {
			if utils.IsErrorCode(err, utils.ErrUnauthenticated) {
				return fmt.Errorf("you must sign in first: pass -user to reply")
			}
			return err
		}
	}

	state, err = e.WaitFeed(ctx)
	if err != nil {
		return err
	}

	threads := make(map[string]actors.ThreadState, len(state.Posts))
	for _, post := range state.Posts {
		thread, err := e.WaitThread(ctx, post.ID)
		if err != nil {
			return err
		}
		threads[post.ID] = thread
	}

	printFeed(os.Stdout, state, threads)
	return nil
}

func printFeed(w io.Writer, state actors.FeedState, threads map[string]actors.ThreadState) {
	if len(state.Posts) == 0 {
		fmt.Fprintln(w, "No tweets yet.")
		return
	}

	for _, post := range state.Posts {
		fmt.Fprintf(w, "%s %s  %s  [%s]\n", post.Username, post.Handle(), post.CreatedAt.Local().Format(time.DateTime), post.ID)
		fmt.Fprintf(w, "  %s\n", post.Text)
		if post.Image != "" {
			fmt.Fprintf(w, "  image: %s\n", post.Image)
		}

		thread := threads[post.ID]
		fmt.Fprintf(w, "  %d replies\n", len(thread.Comments))
		for _, c := range thread.Comments {
			fmt.Fprintf(w, "    %s %s: %s\n", c.Username, c.Handle(), c.Text)
		}
		if thread.LastError != nil {
			fmt.Fprintf(w, "    (replies unavailable: %v)\n", thread.LastError)
		}
		fmt.Fprintln(w)
	}
}
