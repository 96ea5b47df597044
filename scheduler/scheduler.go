// Package scheduler implements background job scheduling
package scheduler

import (
	"context"
	"log"
	"time"

	"tourmate.app/config"
	"tourmate.app/service"
)

// deliveredRetention is how long delivered notifications are kept for the
// pending-list history before pruning
const deliveredRetention = 7 * 24 * time.Hour

// Scheduler manages periodic tasks for the application
type Scheduler struct {
	config        *config.Config
	notifications service.NotificationServiceInterface
	tokenRepo     service.RefreshTokenRepositoryInterface
	stop          chan struct{}
}

// NewScheduler creates and configures a new task scheduler
func NewScheduler(
	config *config.Config,
	notifications service.NotificationServiceInterface,
	tokenRepo service.RefreshTokenRepositoryInterface,
) *Scheduler {
	return &Scheduler{
		config:        config,
		notifications: notifications,
		tokenRepo:     tokenRepo,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler's operations
func (s *Scheduler) Start() {
	go s.scheduleInterval(time.Duration(s.config.Scheduler.DeliveryInterval)*time.Minute, s.deliverDueNotifications)
	go s.scheduleInterval(time.Duration(s.config.Scheduler.CleanupInterval)*time.Minute, s.cleanup)
}

// Stop terminates the scheduler loops
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) scheduleInterval(interval time.Duration, job func()) {
	job()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			job()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) deliverDueNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	delivered, err := s.notifications.DeliverDue(ctx, time.Now())
	if err != nil {
		log.Printf("Error delivering due notifications: %v\n", err)
		return
	}
	if delivered > 0 {
		log.Printf("[DEBUG] Delivered %d notifications\n", delivered)
	}
}

func (s *Scheduler) cleanup() {
	if err := s.tokenRepo.DeleteExpiredTokens(); err != nil {
		log.Printf("Error cleaning up expired tokens: %v\n", err)
	}
	if err := s.notifications.PruneDelivered(time.Now().Add(-deliveredRetention)); err != nil {
		log.Printf("Error pruning delivered notifications: %v\n", err)
	}
}
