package service

import (
	"log"

	"tourmate.app/errors"
	"tourmate.app/models"
	"tourmate.app/providers"
)

// TourService handles recommendation lookups driven by the survey session
type TourService struct {
	provider TourProviderInterface
	region   RegionProviderInterface
	survey   SurveyServiceInterface
	tripRepo TripRepositoryInterface
}

// NewTourService creates a new tour service
func NewTourService(
	provider TourProviderInterface,
	region RegionProviderInterface,
	survey SurveyServiceInterface,
	tripRepo TripRepositoryInterface,
) *TourService {
	return &TourService{
		provider: provider,
		region:   region,
		survey:   survey,
		tripRepo: tripRepo,
	}
}

// GetRecommendations returns places near the surveyed location for a
// category. Callers may override individual query fields; anything left
// unset falls back to the stored survey session. A session without a
// location is "not ready" and rejected rather than queried with garbage
// coordinates.
func (s *TourService) GetRecommendations(userID uint, category string, override *models.TourQuery) ([]models.TourItem, error) {
	log.Printf("[DEBUG] TourService.GetRecommendations called: user=%d, category=%s\n", userID, category)

	if !providers.ValidCategory(category) {
		return nil, errors.NewValidationError("unknown tour category: " + category)
	}

	session, err := s.survey.GetSurvey(userID)
	if err != nil {
		return nil, err
	}

	query := &models.TourQuery{
		MapX:         session.LocationX,
		MapY:         session.LocationY,
		RadiusMeters: session.SearchRadiusMeters,
		Adjectives:   session.MoodAdjectives,
	}
	if override != nil {
		if override.MapX != 0 && override.MapY != 0 {
			query.MapX = override.MapX
			query.MapY = override.MapY
		}
		if override.RadiusMeters > 0 {
			query.RadiusMeters = override.RadiusMeters
		}
		if len(override.Adjectives) > 0 {
			query.Adjectives = override.Adjectives
		}
	}
	if query.MapX == 0 || query.MapY == 0 {
		return nil, errors.NewValidationError("survey session has no location yet")
	}
	if query.RadiusMeters == 0 {
		query.RadiusMeters = models.SearchRadiusForMode("")
	}

	items, err := s.provider.GetTours(category, query)
	if err != nil {
		log.Printf("[ERROR] Tour provider error: %v\n", err)
		return nil, err
	}

	return items, nil
}

// GetDetail returns the full description of a place. When the user has an
// active trip the view is recorded against it.
func (s *TourService) GetDetail(userID uint, contentID string) (*models.TourDetail, error) {
	log.Printf("[DEBUG] TourService.GetDetail called: user=%d, contentID=%s\n", userID, contentID)

	if contentID == "" {
		return nil, errors.NewValidationError("content ID is required")
	}

	detail, err := s.provider.GetTourDetail(contentID)
	if err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.FindActiveByUserID(userID)
	if err != nil {
		log.Printf("[WARN] Failed to check active trip: %v\n", err)
		return detail, nil
	}
	if trip != nil {
		visit := &models.VisitedContent{
			TripID:    trip.ID,
			ContentID: detail.ContentID,
			Title:     detail.Title,
			Category:  detail.Category,
		}
		if err := s.tripRepo.AddVisitedContent(visit); err != nil {
			log.Printf("[WARN] Failed to record visited content: %v\n", err)
		}
	}

	return detail, nil
}

// FindRegion resolves coordinates to an administrative region name
func (s *TourService) FindRegion(lat, lon float64) (string, error) {
	if lat == 0 || lon == 0 {
		return "", errors.NewValidationError("latitude and longitude are required")
	}
	return s.region.FindRegion(lat, lon)
}

// BookmarkService handles saved places
type BookmarkService struct {
	bookmarkRepo BookmarkRepositoryInterface
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(bookmarkRepo BookmarkRepositoryInterface) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo}
}

// List returns the user's saved places, newest first
func (s *BookmarkService) List(userID uint) ([]models.Bookmark, error) {
	bookmarks, err := s.bookmarkRepo.FindByUserID(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list bookmarks", err)
	}
	return bookmarks, nil
}

// Add saves a place. Saving the same place twice is rejected.
func (s *BookmarkService) Add(userID uint, req *models.BookmarkRequest) (*models.Bookmark, error) {
	log.Printf("[DEBUG] BookmarkService.Add called: user=%d, contentID=%s\n", userID, req.ContentID)

	existing, err := s.bookmarkRepo.FindByUserAndContent(userID, req.ContentID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to check existing bookmark", err)
	}
	if existing != nil {
		return nil, errors.NewAlreadyExistsError("place already bookmarked")
	}

	bookmark := &models.Bookmark{
		UserID:    userID,
		ContentID: req.ContentID,
		Title:     req.Title,
		Category:  req.Category,
		Address:   req.Address,
		ImageURL:  req.ImageURL,
	}
	if err := s.bookmarkRepo.Create(bookmark); err != nil {
		return nil, errors.NewDatabaseError("failed to create bookmark", err)
	}

	return bookmark, nil
}

// Remove deletes a saved place owned by the user
func (s *BookmarkService) Remove(userID, bookmarkID uint) error {
	log.Printf("[DEBUG] BookmarkService.Remove called: user=%d, bookmarkID=%d\n", userID, bookmarkID)

	affected, err := s.bookmarkRepo.Delete(userID, bookmarkID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete bookmark", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("bookmark not found")
	}
	return nil
}
