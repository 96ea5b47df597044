package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tourmate.app/config"
	"tourmate.app/errors"
	"tourmate.app/models"
)

// Content type identifiers of the upstream tour API per recommendation
// category
var categoryContentTypes = map[string]string{
	"attraction": "12",
	"culture":    "14",
	"lodging":    "32",
	"restaurant": "39",
	"cafe":       "39",
}

// ValidCategory reports whether the category maps to an upstream content type
func ValidCategory(category string) bool {
	_, ok := categoryContentTypes[category]
	return ok
}

// TourAPIProvider implements TourProvider for the public tour API
type TourAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTourAPIProvider creates a new tour API provider
func NewTourAPIProvider(config *config.TourAPIConfig) *TourAPIProvider {
	return &TourAPIProvider{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type tourListResponse struct {
	Items []struct {
		ContentID string  `json:"contentid"`
		Title     string  `json:"title"`
		Address   string  `json:"addr1"`
		ImageURL  string  `json:"firstimage"`
		MapX      float64 `json:"mapx"`
		MapY      float64 `json:"mapy"`
		Distance  float64 `json:"dist"`
	} `json:"items"`
}

type tourDetailResponse struct {
	ContentID string  `json:"contentid"`
	Title     string  `json:"title"`
	Address   string  `json:"addr1"`
	ImageURL  string  `json:"firstimage"`
	MapX      float64 `json:"mapx"`
	MapY      float64 `json:"mapy"`
	Overview  string  `json:"overview"`
	Tel       string  `json:"tel"`
	Homepage  string  `json:"homepage"`
}

// GetTours retrieves places of a category around the query location
func (p *TourAPIProvider) GetTours(category string, query *models.TourQuery) ([]models.TourItem, error) {
	contentType, ok := categoryContentTypes[category]
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown category: %s", category))
	}
	if query == nil || query.MapX == 0 || query.MapY == 0 || query.RadiusMeters <= 0 {
		return nil, errors.NewValidationError("mapX, mapY and radius are required")
	}

	params := url.Values{}
	params.Set("serviceKey", p.apiKey)
	params.Set("contentTypeId", contentType)
	params.Set("mapX", fmt.Sprintf("%f", query.MapX))
	params.Set("mapY", fmt.Sprintf("%f", query.MapY))
	params.Set("radius", fmt.Sprintf("%d", query.RadiusMeters))
	if len(query.Adjectives) > 0 {
		params.Set("keyword", strings.Join(query.Adjectives, ","))
	}

	requestURL := fmt.Sprintf("%s/locationBasedList?%s", p.baseURL, params.Encode())

	resp, err := p.client.Get(requestURL)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get tour data", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("tour API returned status code %d", resp.StatusCode), nil)
	}

	var result tourListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode tour data", err)
	}

	items := make([]models.TourItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, models.TourItem{
			ContentID: item.ContentID,
			Title:     item.Title,
			Category:  category,
			Address:   item.Address,
			ImageURL:  item.ImageURL,
			MapX:      item.MapX,
			MapY:      item.MapY,
			Distance:  item.Distance,
		})
	}

	return items, nil
}

// GetTourDetail retrieves the full description of a single place
func (p *TourAPIProvider) GetTourDetail(contentID string) (*models.TourDetail, error) {
	if contentID == "" {
		return nil, errors.NewValidationError("content ID cannot be empty")
	}

	params := url.Values{}
	params.Set("serviceKey", p.apiKey)
	params.Set("contentId", contentID)
	params.Set("overviewYN", "Y")

	requestURL := fmt.Sprintf("%s/detailCommon?%s", p.baseURL, params.Encode())

	resp, err := p.client.Get(requestURL)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get tour detail", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError("content not found")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("tour API returned status code %d", resp.StatusCode), nil)
	}

	var result tourDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode tour detail", err)
	}

	if result.ContentID == "" {
		return nil, errors.NewNotFoundError("content not found")
	}

	return &models.TourDetail{
		TourItem: models.TourItem{
			ContentID: result.ContentID,
			Title:     result.Title,
			Address:   result.Address,
			ImageURL:  result.ImageURL,
			MapX:      result.MapX,
			MapY:      result.MapY,
		},
		Overview: result.Overview,
		Tel:      result.Tel,
		Homepage: result.Homepage,
	}, nil
}

// Ensure implementation satisfies the interface
var _ TourProvider = (*TourAPIProvider)(nil)
