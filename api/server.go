// Package api implements the HTTP interface of the application
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
	"tourmate.app/config"
	apperr "tourmate.app/errors"
	"tourmate.app/models"
	"tourmate.app/providers"
	"tourmate.app/service"
)

// Server represents the HTTP server and API handler
type Server struct {
	router        *gin.Engine
	db            *gorm.DB
	config        *config.Config
	auth          service.AuthServiceInterface
	survey        service.SurveyServiceInterface
	tours         service.TourServiceInterface
	bookmarks     service.BookmarkServiceInterface
	trips         service.TripServiceInterface
	notifications service.NotificationServiceInterface
}

// NewServer creates and configures a new HTTP server
func NewServer(
	db *gorm.DB,
	config *config.Config,
	auth service.AuthServiceInterface,
	survey service.SurveyServiceInterface,
	tours service.TourServiceInterface,
	bookmarks service.BookmarkServiceInterface,
	trips service.TripServiceInterface,
	notifications service.NotificationServiceInterface,
) *Server {
	router := gin.Default()

	server := &Server{
		router:        router,
		db:            db,
		config:        config,
		auth:          auth,
		survey:        survey,
		tours:         tours,
		bookmarks:     bookmarks,
		trips:         trips,
		notifications: notifications,
	}

	server.registerValidators()
	server.setupRoutes()
	return server
}

// registerValidators wires custom binding validations into gin's validator
func (s *Server) registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("tourcategory", func(fl validator.FieldLevel) bool {
			return providers.ValidCategory(fl.Field().String())
		}); err != nil {
			slog.Warn("Failed to register tour category validator", "error", err)
		}
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", s.register)
			users.POST("/login", s.login)
			users.POST("/kakao", s.kakaoSignIn)
			users.POST("/refresh", s.refresh)
		}

		authed := api.Group("")
		authed.Use(s.authMiddleware())
		{
			authed.POST("/users/logout", s.logout)
			authed.GET("/users/me", s.me)
			authed.POST("/users/me/info", s.completeProfile)
			authed.GET("/users/bootstrap", s.bootstrap)
			authed.GET("/users/find-region", s.findRegion)

			authed.POST("/users/trips", s.startTrip)
			authed.PUT("/users/trips/end", s.endTrip)
			authed.GET("/users/trips", s.listTrips)
			authed.GET("/users/visited-contents", s.visitedContents)
			authed.POST("/users/devices", s.registerDevice)

			authed.GET("/survey", s.getSurvey)
			authed.PUT("/survey", s.setSurvey)
			authed.DELETE("/survey", s.clearSurvey)
			authed.POST("/survey/adjectives", s.addAdjective)
			authed.GET("/survey/auto-recommend", s.autoRecommend)

			authed.GET("/tours/detail/:id", s.tourDetail)
			authed.GET("/tours/:category", s.tourRecommendations)

			authed.GET("/bookmarks", s.listBookmarks)
			authed.POST("/bookmarks", s.addBookmark)
			authed.DELETE("/bookmarks/:id", s.removeBookmark)

			authed.GET("/notifications", s.listPendingNotifications)
			authed.GET("/notifications/channels", s.listChannels)
			authed.POST("/notifications/lunch", s.scheduleLunch)
			authed.POST("/notifications/weekend", s.scheduleWeekend)
			authed.DELETE("/notifications/:notifId", s.cancelNotification)
			authed.POST("/notifications/actions/resolve", s.resolveAction)
			authed.POST("/notifications/test", s.sendTestNotification)
		}

		api.GET("/debug", s.debugEndpoint)
	}
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// authMiddleware validates the bearer token and stores the user ID in the
// request context
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing bearer token"})
			return
		}

		userID, err := s.auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid or expired token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint("userID")
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	resp, err := s.auth.Register(&req)
	if err != nil {
		slog.Error("Registration failed", "error", err, "email", req.Email)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	resp, err := s.auth.Login(&req)
	if err != nil {
		slog.Error("Login failed", "error", err, "email", req.Email)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) kakaoSignIn(c *gin.Context) {
	var req models.KakaoSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	resp, err := s.auth.KakaoSignIn(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Kakao sign-in failed", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	resp, err := s.auth.Refresh(&req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// body is optional; logout succeeds no matter what
	_ = c.ShouldBindJSON(&req)

	s.auth.Logout(currentUserID(c), req.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) me(c *gin.Context) {
	user, err := s.auth.GetUser(currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) completeProfile(c *gin.Context) {
	var req models.ProfileInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	user, err := s.auth.CompleteProfile(currentUserID(c), &req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) bootstrap(c *gin.Context) {
	result, err := s.auth.Bootstrap(currentUserID(c))
	if err != nil {
		slog.Error("Bootstrap failed", "error", err, "userID", currentUserID(c))
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) findRegion(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		s.handleError(c, apperr.NewValidationError("lat parameter is required"))
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		s.handleError(c, apperr.NewValidationError("lon parameter is required"))
		return
	}

	region, err := s.tours.FindRegion(lat, lon)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"region": region})
}

func (s *Server) getSurvey(c *gin.Context) {
	session, err := s.survey.GetSurvey(currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) setSurvey(c *gin.Context) {
	var session models.SurveySession
	if err := c.ShouldBindJSON(&session); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	stored, err := s.survey.SetSurvey(currentUserID(c), &session)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

func (s *Server) clearSurvey(c *gin.Context) {
	if err := s.survey.ClearSurvey(currentUserID(c)); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Survey cleared"})
}

func (s *Server) addAdjective(c *gin.Context) {
	var req struct {
		Adjective string `json:"adjective" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("adjective is required"))
		return
	}

	session, err := s.survey.AddMoodAdjective(currentUserID(c), req.Adjective)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (s *Server) autoRecommend(c *gin.Context) {
	category, err := s.survey.ConsumeAutoRecommendCategory(currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (s *Server) tourRecommendations(c *gin.Context) {
	category := c.Param("category")

	items, err := s.tours.GetRecommendations(currentUserID(c), category, tourQueryOverride(c))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category, "items": items})
}

// tourQueryOverride reads the optional mapX/mapY/radius/adjectives query
// parameters. Missing or unparseable values are left zero so the survey
// session fills them in.
func tourQueryOverride(c *gin.Context) *models.TourQuery {
	if len(c.Request.URL.Query()) == 0 {
		return nil
	}

	override := &models.TourQuery{}
	override.MapX, _ = strconv.ParseFloat(c.Query("mapX"), 64)
	override.MapY, _ = strconv.ParseFloat(c.Query("mapY"), 64)
	override.RadiusMeters, _ = strconv.Atoi(c.Query("radius"))
	if adjectives := c.Query("adjectives"); adjectives != "" {
		override.Adjectives = strings.Split(adjectives, ",")
	}
	return override
}

func (s *Server) tourDetail(c *gin.Context) {
	detail, err := s.tours.GetDetail(currentUserID(c), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) listBookmarks(c *gin.Context) {
	bookmarks, err := s.bookmarks.List(currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}

func (s *Server) addBookmark(c *gin.Context) {
	var req models.BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	bookmark, err := s.bookmarks.Add(currentUserID(c), &req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookmark)
}

func (s *Server) removeBookmark(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		s.handleError(c, apperr.NewValidationError("invalid bookmark ID"))
		return
	}

	if err := s.bookmarks.Remove(currentUserID(c), uint(id)); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bookmark removed"})
}

func (s *Server) startTrip(c *gin.Context) {
	var req models.StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("region is required"))
		return
	}

	trip, err := s.trips.StartTrip(currentUserID(c), &req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, trip)
}

func (s *Server) endTrip(c *gin.Context) {
	trip, err := s.trips.EndTrip(currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (s *Server) listTrips(c *gin.Context) {
	trips, err := s.trips.ListTrips(currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (s *Server) visitedContents(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("trip"), 10, 32)
	if err != nil {
		s.handleError(c, apperr.NewValidationError("trip parameter is required"))
		return
	}

	contents, err := s.trips.VisitedContents(currentUserID(c), uint(id))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, contents)
}

func (s *Server) registerDevice(c *gin.Context) {
	var req models.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("invalid request format"))
		return
	}

	if err := s.notifications.RegisterDevice(currentUserID(c), &req); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
}

func (s *Server) listPendingNotifications(c *gin.Context) {
	pending, err := s.notifications.ListPending(currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (s *Server) listChannels(c *gin.Context) {
	channels, err := s.notifications.ListChannels()
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, channels)
}

func (s *Server) scheduleLunch(c *gin.Context) {
	notification, err := s.notifications.ScheduleWeekdayLunch(currentUserID(c), time.Now())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

func (s *Server) scheduleWeekend(c *gin.Context) {
	notification, err := s.notifications.ScheduleWeekendTravel(currentUserID(c), time.Now())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

func (s *Server) cancelNotification(c *gin.Context) {
	if err := s.notifications.Cancel(currentUserID(c), c.Param("notifId")); err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification cancelled"})
}

func (s *Server) resolveAction(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
		Params string `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("action is required"))
		return
	}

	target := s.notifications.ResolveAction(req.Action, req.Params)
	if target == nil {
		c.JSON(http.StatusOK, gin.H{"target": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"target": target})
}

func (s *Server) sendTestNotification(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, apperr.NewValidationError("title and body are required"))
		return
	}

	if err := s.notifications.SendTestNotification(c.Request.Context(), currentUserID(c), req.Title, req.Body); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent"})
}

func (s *Server) debugEndpoint(c *gin.Context) {
	slog.Debug("Debug endpoint called")

	var userCount int64
	dbErr := s.db.Model(&models.User{}).Count(&userCount).Error

	response := gin.H{
		"database": map[string]interface{}{
			"connected": dbErr == nil,
			"userCount": userCount,
		},
		"kakao": map[string]interface{}{
			"clientConfigured": s.config.Kakao.ClientID != "",
			"redirectURI":      s.config.Kakao.RedirectURI,
		},
		"tourAPI": map[string]interface{}{
			"keyConfigured": s.config.TourAPI.APIKey != "",
			"baseURL":       s.config.TourAPI.BaseURL,
		},
		"config": map[string]string{
			"appBaseURL": s.config.AppBaseURL,
		},
	}

	c.JSON(http.StatusOK, response)
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *apperr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case apperr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case apperr.AlreadyExistsError:
			statusCode = http.StatusConflict
			message = appErr.Message
		case apperr.TokenError, apperr.UnauthorizedError:
			statusCode = http.StatusUnauthorized
			message = appErr.Message
		case apperr.ExternalAPIError:
			statusCode = http.StatusServiceUnavailable
			message = "External service unavailable"
		case apperr.PushError:
			statusCode = http.StatusServiceUnavailable
			message = "Unable to send push notification"
		case apperr.DatabaseError, apperr.StorageError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
