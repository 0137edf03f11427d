package main

import (
	"context"
	"time"

	"twitter-clone/internal/config"
	"twitter-clone/simulator"

	"github.com/asynkron/protoactor-go/actor"
	log "github.com/sirupsen/logrus"
)

func main() {
	client, err := config.LoadClientConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.SetLevel(client.LogLevel)

	// Define simulation configuration
	cfg := simulator.SimConfig{
		NumUsers:         10,
		AnonymousRate:    0.2,
		SimulationTime:   10 * time.Minute,
		PostFrequency:    100.0,
		CommentFrequency: 60.0,
		DisconnectRate:   0.01,
		ReconnectRate:    0.05,
		ZipfS:            1.07,
		Client:           client,
	}

	system := actor.NewActorSystem()
	defer system.Shutdown()

	sim := simulator.NewEnhancedSimulator(cfg, system)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SimulationTime)
	defer cancel()

	log.WithFields(log.Fields{
		"store":             client.Store.URL,
		"dataset":           client.Store.Dataset,
		"users":             cfg.NumUsers,
		"anonymous_rate":    cfg.AnonymousRate,
		"duration":          cfg.SimulationTime,
		"post_frequency":    cfg.PostFrequency,
		"comment_frequency": cfg.CommentFrequency,
		"disconnect_rate":   cfg.DisconnectRate,
		"reconnect_rate":    cfg.ReconnectRate,
		"zipf_s":            cfg.ZipfS,
	}).Info("Starting simulation")

	if err := sim.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	metrics := sim.GetMetrics()
	log.WithFields(log.Fields{
		"users":            metrics.TotalUsers,
		"active_users":     metrics.ActiveUsers,
		"posts":            metrics.TotalPosts,
		"comments":         metrics.TotalComments,
		"rejected_replies": metrics.RejectedReplies,
		"avg_latency":      metrics.AverageLatency,
		"errors":           metrics.ErrorCount,
	}).Info("Simulation completed")
}
