package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TutorHub-2025/messaging-service/internal/cache"
	"github.com/TutorHub-2025/messaging-service/internal/events"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
	"github.com/TutorHub-2025/messaging-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Admin AdminBootstrap

	// How often expired sessions are swept; zero disables the sweeper
	SessionCleanupInterval time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	sessionCache *cache.SessionCache
	publisher    events.EventPublisher
	config       ServiceManagerConfig

	// Service instances
	authService      AuthService
	messagingService MessagingService
	userService      UserService
	reviewService    ReviewService
	eventService     EventService
	exportService    ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	stopCleanup chan struct{}
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, sessionCache *cache.SessionCache, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:         repo,
		logger:       logger,
		validator:    v,
		sessionCache: sessionCache,
		publisher:    publisher,
		config:       config,
	}
}

// Initialize sets up all services, bootstraps the admin account, and starts
// the expired-session sweeper.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.eventService = NewEventService(sm.publisher, sm.logger)
	sm.authService = NewAuthService(sm.repo, sm.logger, sm.validator, sm.sessionCache, sm.eventService, sm.config.Admin)
	sm.messagingService = NewMessagingService(sm.repo, sm.logger, sm.validator, sm.eventService, sm.config.Admin.Email)
	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator)
	sm.reviewService = NewReviewService(sm.repo, sm.logger, sm.validator)
	sm.exportService = NewExportService(sm.repo, sm.logger)

	// Admin bootstrap is best-effort at startup: without configured
	// credentials the setup-admin endpoint can still do it later.
	if _, err := sm.authService.EnsureAdmin(ctx); err != nil {
		sm.logger.Warn("Admin bootstrap skipped", "error", err)
	}

	if sm.config.SessionCleanupInterval > 0 {
		sm.stopCleanup = make(chan struct{})
		go sm.runSessionCleanup(sm.config.SessionCleanupInterval)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) runSessionCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := sm.authService.CleanupExpiredSessions(ctx); err != nil {
				sm.logger.Error("Session cleanup failed", "error", err)
			}
			cancel()
		case <-sm.stopCleanup:
			return
		}
	}
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Messaging() MessagingService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.messagingService
}

func (sm *serviceManager) Users() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Reviews() ReviewService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reviewService
}

func (sm *serviceManager) Events() EventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.eventService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.stopCleanup != nil {
		close(sm.stopCleanup)
	}

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
