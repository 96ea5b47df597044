package service

import (
	"log"
	"time"

	"tourmate.app/errors"
	"tourmate.app/models"
	"tourmate.app/storage"
)

// TripService handles the travel session lifecycle
type TripService struct {
	tripRepo      TripRepositoryInterface
	authState     storage.AuthStateStore
	notifications NotificationServiceInterface
}

// NewTripService creates a new trip service
func NewTripService(
	tripRepo TripRepositoryInterface,
	authState storage.AuthStateStore,
	notifications NotificationServiceInterface,
) *TripService {
	return &TripService{
		tripRepo:      tripRepo,
		authState:     authState,
		notifications: notifications,
	}
}

// StartTrip opens a travel session and flips the traveling flag. A user
// has at most one active trip.
func (s *TripService) StartTrip(userID uint, req *models.StartTripRequest) (*models.Trip, error) {
	log.Printf("[DEBUG] TripService.StartTrip called: user=%d, region=%s\n", userID, req.Region)

	active, err := s.tripRepo.FindActiveByUserID(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to check active trip", err)
	}
	if active != nil {
		return nil, errors.NewAlreadyExistsError("a trip is already in progress")
	}

	trip := &models.Trip{
		UserID:    userID,
		Region:    req.Region,
		StartedAt: time.Now(),
	}
	if err := s.tripRepo.Create(trip); err != nil {
		return nil, errors.NewDatabaseError("failed to create trip", err)
	}

	s.setTravelingFlag(userID, "true")

	return trip, nil
}

// EndTrip closes the active travel session, flips the traveling flag back
// and schedules the post-travel follow-up notification
func (s *TripService) EndTrip(userID uint) (*models.Trip, error) {
	log.Printf("[DEBUG] TripService.EndTrip called: user=%d\n", userID)

	trip, err := s.tripRepo.FindActiveByUserID(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to find active trip", err)
	}
	if trip == nil {
		return nil, errors.NewNotFoundError("no trip in progress")
	}

	now := time.Now()
	trip.EndedAt = &now
	if err := s.tripRepo.Update(trip); err != nil {
		return nil, errors.NewDatabaseError("failed to end trip", err)
	}

	s.setTravelingFlag(userID, "false")

	if _, err := s.notifications.SchedulePostTravel(userID, trip.Region, now); err != nil {
		log.Printf("[WARN] Failed to schedule post-travel notification: %v\n", err)
	}

	return trip, nil
}

// ListTrips returns the user's trip history, newest first
func (s *TripService) ListTrips(userID uint) ([]models.Trip, error) {
	trips, err := s.tripRepo.FindByUserID(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list trips", err)
	}
	return trips, nil
}

// VisitedContents returns the places viewed during one of the user's trips
func (s *TripService) VisitedContents(userID, tripID uint) ([]models.VisitedContent, error) {
	trips, err := s.tripRepo.FindByUserID(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list trips", err)
	}

	owned := false
	for _, trip := range trips {
		if trip.ID == tripID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, errors.NewNotFoundError("trip not found")
	}

	contents, err := s.tripRepo.GetVisitedContents(tripID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list visited contents", err)
	}
	return contents, nil
}

// setTravelingFlag writes the flag and verifies the write landed, with a
// single corrective rewrite on mismatch
func (s *TripService) setTravelingFlag(userID uint, value string) {
	if err := s.authState.Set(userID, storage.KeyIsTraveling, value); err != nil {
		log.Printf("[WARN] Failed to write traveling flag: %v\n", err)
		return
	}

	got, err := s.authState.Get(userID, storage.KeyIsTraveling)
	if err != nil {
		log.Printf("[WARN] Failed to verify traveling flag: %v\n", err)
		return
	}
	if got != value {
		log.Println("[WARN] Traveling flag readback mismatch, rewriting once")
		if err := s.authState.Set(userID, storage.KeyIsTraveling, value); err != nil {
			log.Printf("[WARN] Traveling flag rewrite failed: %v\n", err)
		}
	}
}
