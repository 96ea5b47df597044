package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"tourmate.app/config"
	"tourmate.app/errors"
)

// KakaoProvider implements OAuthProvider and RegionProvider against the
// Kakao auth, user and local APIs
type KakaoProvider struct {
	oauth        *oauth2.Config
	apiBaseURL   string
	localBaseURL string
	restAPIKey   string
	client       *http.Client
}

// NewKakaoProvider creates a new Kakao API provider
func NewKakaoProvider(config *config.KakaoConfig) *KakaoProvider {
	return &KakaoProvider{
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  config.AuthBaseURL + "/oauth/authorize",
				TokenURL: config.AuthBaseURL + "/oauth/token",
			},
		},
		apiBaseURL:   config.APIBaseURL,
		localBaseURL: config.LocalBaseURL,
		restAPIKey:   config.RESTAPIKey,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

type kakaoUserResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// ExchangeCode exchanges an authorization code for tokens and fetches the
// Kakao account profile
func (p *KakaoProvider) ExchangeCode(ctx context.Context, code string) (*KakaoProfile, error) {
	if code == "" {
		return nil, errors.NewValidationError("authorization code cannot be empty")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to exchange authorization code", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/v2/user/me", nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build profile request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to fetch kakao profile", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("kakao user API returned status code %d", resp.StatusCode), nil)
	}

	var user kakaoUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode kakao profile", err)
	}

	if user.ID == 0 {
		return nil, errors.NewExternalAPIError("kakao profile missing account id", nil)
	}

	return &KakaoProfile{
		ID:       fmt.Sprintf("%d", user.ID),
		Email:    user.KakaoAccount.Email,
		Nickname: user.KakaoAccount.Profile.Nickname,
	}, nil
}

type regionCodeResponse struct {
	Documents []struct {
		Region1 string `json:"region_1depth_name"`
		Region2 string `json:"region_2depth_name"`
	} `json:"documents"`
}

// FindRegion reverse-geocodes coordinates into an administrative region name
func (p *KakaoProvider) FindRegion(lat, lon float64) (string, error) {
	if lat == 0 || lon == 0 {
		return "", errors.NewValidationError("lat and lon are required")
	}

	requestURL := fmt.Sprintf("%s/v2/local/geo/coord2regioncode.json?x=%f&y=%f", p.localBaseURL, lon, lat)

	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return "", errors.NewExternalAPIError("failed to build region request", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+p.restAPIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errors.NewExternalAPIError("failed to find region", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewExternalAPIError(fmt.Sprintf("kakao local API returned status code %d", resp.StatusCode), nil)
	}

	var result regionCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.NewExternalAPIError("failed to decode region data", err)
	}

	if len(result.Documents) == 0 {
		return "", errors.NewNotFoundError("no region found for coordinates")
	}

	doc := result.Documents[0]
	if doc.Region2 == "" {
		return doc.Region1, nil
	}
	return doc.Region1 + " " + doc.Region2, nil
}

// Ensure implementations satisfy interfaces
var _ OAuthProvider = (*KakaoProvider)(nil)
var _ RegionProvider = (*KakaoProvider)(nil)
