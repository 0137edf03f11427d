package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"twitter-clone/internal/compose"
	"twitter-clone/internal/config"
	"twitter-clone/internal/engine"
	"twitter-clone/internal/models"
	"twitter-clone/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type SimConfig struct {
	NumUsers         int
	AnonymousRate    float64 // share of users that never sign in
	SimulationTime   time.Duration
	PostFrequency    float64 // posts per user per hour
	CommentFrequency float64 // replies per user per hour
	DisconnectRate   float64
	ReconnectRate    float64
	ZipfS            float64
	TickInterval     time.Duration
	MetricsInterval  time.Duration
	Client           *config.ClientConfig
}

type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	AverageLatency   time.Duration
	ActiveUsers      int
	TotalPosts       int
	TotalComments    int
	RejectedReplies  int
	RequestLatencies []time.Duration
}

// SimulatedUser is one client: its own feed engine and, unless anonymous,
// a signed-in identity that may come and go.
type SimulatedUser struct {
	ID       uuid.UUID
	Identity *models.Identity
	Engine   *engine.Engine

	mu          sync.Mutex
	isConnected bool
}

// Session returns the identity the user is currently signed in as.
func (u *SimulatedUser) Session() *models.Identity {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.isConnected {
		return nil
	}
	return u.Identity
}

// toggleConnection flips the session with probability rate and reports
// whether it did.
func (u *SimulatedUser) toggleConnection(disconnectRate, reconnectRate float64) (changed, connected bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	rate := reconnectRate
	if u.isConnected {
		rate = disconnectRate
	}
	if rand.Float64() >= rate {
		return false, u.isConnected
	}
	u.isConnected = !u.isConnected
	return true, u.isConnected
}

// EngineFactory builds the feed engine a simulated user drives.
type EngineFactory func(system *actor.ActorSystem) *engine.Engine

type EnhancedSimulator struct {
	config    SimConfig
	stats     *SimulationStats
	users     []*SimulatedUser
	system    *actor.ActorSystem
	newEngine EngineFactory
	mu        sync.RWMutex
}

func NewEnhancedSimulator(config SimConfig, system *actor.ActorSystem) *EnhancedSimulator {
	metrics := utils.NewMetricsCollector()
	return NewEnhancedSimulatorWithFactory(config, system, func(system *actor.ActorSystem) *engine.Engine {
		return engine.NewStoreEngine(system, config.Client, metrics, compose.LogNotifier{}, nil)
	})
}

func NewEnhancedSimulatorWithFactory(config SimConfig, system *actor.ActorSystem, factory EngineFactory) *EnhancedSimulator {
	if config.TickInterval <= 0 {
		config.TickInterval = 500 * time.Millisecond
	}
	if config.MetricsInterval <= 0 {
		config.MetricsInterval = 10 * time.Second
	}
	if config.ZipfS <= 1 {
		config.ZipfS = 1.07
	}
	return &EnhancedSimulator{
		config: config,
		stats: &SimulationStats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		system:    system,
		newEngine: factory,
	}
}

func (s *EnhancedSimulator) Run(ctx context.Context) error {
	log.Info("Starting enhanced simulation...")

	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %v", err)
	}
	defer s.shutdown()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.SimulateActivities(ctx)
	})
	g.Go(func() error {
		s.simulateConnectivity(ctx)
		return nil
	})
	g.Go(func() error {
		s.collectMetrics(ctx)
		return nil
	})
	return g.Wait()
}

func (s *EnhancedSimulator) initialize(ctx context.Context) error {
	log.Infof("Creating %d simulated users...", s.config.NumUsers)

	s.mu.Lock()
	s.users = make([]*SimulatedUser, 0, s.config.NumUsers)
	for i := 0; i < s.config.NumUsers; i++ {
		user := &SimulatedUser{
			ID:          uuid.New(),
			Engine:      s.newEngine(s.system),
			isConnected: true,
		}
		if rand.Float64() >= s.config.AnonymousRate {
			user.Identity = &models.Identity{
				Name:  fmt.Sprintf("user_%d", i),
				Image: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", user.ID),
			}
		}
		s.users = append(s.users, user)
	}
	users := s.users
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, user := range users {
		user := user
		g.Go(func() error {
			start := time.Now()
			if _, err := user.Engine.Refresh(); err != nil {
				s.recordRequestMetrics(start, err)
				return err
			}
			state, err := user.Engine.WaitFeed(ctx)
			if err == nil {
				err = state.LastError
			}
			s.recordRequestMetrics(start, err)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load initial feed: %v", err)
	}

	s.stats.mu.Lock()
	s.stats.ActiveUsers = len(users)
	s.stats.mu.Unlock()

	log.Infof("Initialization completed with %d users", len(users))
	return nil
}

func (s *EnhancedSimulator) shutdown() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if err := user.Engine.Shutdown(); err != nil {
			log.Debugf("Failed to stop engine for %s: %v", user.ID, err)
		}
	}
}

// getZipfNumber picks a rank in [0, max), favouring low ranks.
func (s *EnhancedSimulator) getZipfNumber(max int) int {
	if max <= 1 {
		return 0
	}
	zipf := rand.NewZipf(rand.New(rand.NewSource(time.Now().UnixNano())),
		s.config.ZipfS, 1, uint64(max-1))
	return int(zipf.Uint64())
}

// chance converts an hourly frequency into a per-tick probability.
func (s *EnhancedSimulator) chance(perHour float64) bool {
	return rand.Float64() < perHour/3600.0*s.config.TickInterval.Seconds()
}

func (s *EnhancedSimulator) simulateConnectivity(ctx context.Context) {
	log.Info("Starting connectivity simulation...")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			for _, user := range s.users {
				if user.Identity == nil {
					continue
				}
				changed, connected := user.toggleConnection(s.config.DisconnectRate, s.config.ReconnectRate)
				if !changed {
					continue
				}
				if connected {
					user.Engine.SessionChanged(user.Identity)
					s.adjustActive(1)
				} else {
					user.Engine.SessionChanged(nil)
					s.adjustActive(-1)
				}
			}
			s.mu.RUnlock()
		}
	}
}

func (s *EnhancedSimulator) adjustActive(delta int) {
	s.stats.mu.Lock()
	s.stats.ActiveUsers += delta
	s.stats.mu.Unlock()
}

func (s *EnhancedSimulator) recordRequestMetrics(start time.Time, err error) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	latency := time.Since(start)
	s.stats.TotalRequests++
	s.stats.RequestLatencies = append(s.stats.RequestLatencies, latency)

	if err != nil {
		s.stats.FailedRequests++
	} else {
		s.stats.SuccessRequests++
	}

	totalLatency := s.stats.AverageLatency * time.Duration(s.stats.TotalRequests-1)
	s.stats.AverageLatency = (totalLatency + latency) / time.Duration(s.stats.TotalRequests)
}

func (s *EnhancedSimulator) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(s.config.MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := s.GetMetrics()
			log.WithFields(log.Fields{
				"requests_per_sec": fmt.Sprintf("%.2f", m.RequestsPerSecond),
				"avg_latency":      m.AverageLatency,
				"active_users":     fmt.Sprintf("%d/%d", m.ActiveUsers, m.TotalUsers),
				"posts":            m.TotalPosts,
				"comments":         m.TotalComments,
				"rejected_replies": m.RejectedReplies,
				"errors":           m.ErrorCount,
			}).Info("Simulation metrics")
		}
	}
}

// SimulationMetrics holds the metrics of the simulation
type SimulationMetrics struct {
	TotalUsers        int
	ActiveUsers       int
	TotalPosts        int
	TotalComments     int
	RejectedReplies   int
	AverageLatency    time.Duration
	ErrorCount        int
	RequestsPerSecond float64
}

// GetMetrics returns the current simulation metrics
func (s *EnhancedSimulator) GetMetrics() SimulationMetrics {
	s.mu.RLock()
	totalUsers := len(s.users)
	s.mu.RUnlock()

	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)
	requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()

	return SimulationMetrics{
		TotalUsers:        totalUsers,
		ActiveUsers:       s.stats.ActiveUsers,
		TotalPosts:        s.stats.TotalPosts,
		TotalComments:     s.stats.TotalComments,
		RejectedReplies:   s.stats.RejectedReplies,
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		RequestsPerSecond: requestRate,
	}
}
