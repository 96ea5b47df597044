package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"tourmate.app/errors"
	"tourmate.app/models"
	"tourmate.app/providers"
)

// Fixed notification IDs for recurring categories. Scheduling the same ID
// again replaces the pending entry instead of stacking a duplicate.
const (
	NotifWeekdayLunch  = "weekday-lunch"
	NotifWeekendTravel = "weekend-travel"
)

// Notification channels. All four are registered idempotently at startup.
const (
	ChannelDefault = "default"
	ChannelTravel  = "travel"
	ChannelLunch   = "lunch"
	ChannelWeekend = "weekend"
)

// Recurring trigger times
const (
	lunchHour     = 11
	lunchMinute   = 30
	weekendHour   = 18
	weekendMinute = 0
)

// postTravelDelay is how long after a trip ends the follow-up fires
const postTravelDelay = 48 * time.Hour

// NotificationService schedules trigger notifications and delivers the due
// ones through the push provider
type NotificationService struct {
	notifRepo  NotificationRepositoryInterface
	deviceRepo DeviceTokenRepositoryInterface
	push       PushProviderInterface
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notifRepo NotificationRepositoryInterface,
	deviceRepo DeviceTokenRepositoryInterface,
	push PushProviderInterface,
) *NotificationService {
	return &NotificationService{
		notifRepo:  notifRepo,
		deviceRepo: deviceRepo,
		push:       push,
	}
}

// EnsureChannels registers the four fixed channels. Safe to call on every
// startup.
func (s *NotificationService) EnsureChannels() error {
	channels := map[string]string{
		ChannelDefault: "General notifications",
		ChannelTravel:  "Travel session updates",
		ChannelLunch:   "Weekday lunch recommendations",
		ChannelWeekend: "Weekend travel suggestions",
	}
	for name, description := range channels {
		if err := s.notifRepo.EnsureChannel(name, description); err != nil {
			return errors.NewDatabaseError("failed to register channel "+name, err)
		}
	}
	return nil
}

// ListChannels returns all registered channels
func (s *NotificationService) ListChannels() ([]models.NotificationChannel, error) {
	channels, err := s.notifRepo.ListChannels()
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list channels", err)
	}
	return channels, nil
}

// NextWeekdayLunch returns the next weekday 11:30 strictly after now.
// Today's slot counts when it has not passed yet; weekends roll forward to
// Monday.
func NextWeekdayLunch(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), lunchHour, lunchMinute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	for candidate.Weekday() == time.Saturday || candidate.Weekday() == time.Sunday {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// NextWeekendTravel returns the next Friday 18:00 strictly after now
func NextWeekendTravel(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), weekendHour, weekendMinute, 0, 0, now.Location())
	if candidate.Weekday() != time.Friday || !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
		for candidate.Weekday() != time.Friday {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}
	return candidate
}

// ScheduleWeekdayLunch schedules (or reschedules) the recurring lunch
// recommendation for a user
func (s *NotificationService) ScheduleWeekdayLunch(userID uint, now time.Time) (*models.PendingNotification, error) {
	log.Printf("[DEBUG] NotificationService.ScheduleWeekdayLunch called for user: %d\n", userID)

	notification := &models.PendingNotification{
		UserID:      userID,
		NotifID:     NotifWeekdayLunch,
		Channel:     ChannelLunch,
		Title:       "점심시간이에요!",
		Body:        "근처의 맛집을 추천해 드릴까요?",
		Screen:      models.ScreenSurvey,
		ActionsJSON: mustActionsJSON("open-survey", "dismiss"),
		TriggerAt:   NextWeekdayLunch(now),
	}
	if err := s.notifRepo.Upsert(notification); err != nil {
		return nil, errors.NewDatabaseError("failed to schedule lunch notification", err)
	}
	return notification, nil
}

// ScheduleWeekendTravel schedules (or reschedules) the Friday-evening
// weekend travel suggestion for a user
func (s *NotificationService) ScheduleWeekendTravel(userID uint, now time.Time) (*models.PendingNotification, error) {
	log.Printf("[DEBUG] NotificationService.ScheduleWeekendTravel called for user: %d\n", userID)

	notification := &models.PendingNotification{
		UserID:      userID,
		NotifID:     NotifWeekendTravel,
		Channel:     ChannelWeekend,
		Title:       "주말 여행 어떠세요?",
		Body:        "이번 주말에 가볼 만한 곳을 찾아봤어요.",
		Screen:      models.ScreenSurvey,
		ActionsJSON: mustActionsJSON("open-survey", "dismiss"),
		TriggerAt:   NextWeekendTravel(now),
	}
	if err := s.notifRepo.Upsert(notification); err != nil {
		return nil, errors.NewDatabaseError("failed to schedule weekend notification", err)
	}
	return notification, nil
}

// SchedulePostTravel schedules a one-shot follow-up 48 hours after a trip
// ends. Each trip gets its own notification ID so earlier follow-ups are
// never overwritten.
func (s *NotificationService) SchedulePostTravel(userID uint, region string, now time.Time) (*models.PendingNotification, error) {
	log.Printf("[DEBUG] NotificationService.SchedulePostTravel called for user: %d\n", userID)

	params, _ := json.Marshal(map[string]string{"region": region})
	notification := &models.PendingNotification{
		UserID:      userID,
		NotifID:     "post-travel-" + uuid.NewString(),
		Channel:     ChannelTravel,
		Title:       "여행은 즐거우셨나요?",
		Body:        region + " 여행을 돌아보고 다음 여행을 계획해 보세요.",
		Screen:      models.ScreenTourList,
		ParamsJSON:  string(params),
		ActionsJSON: mustActionsJSON("trip-history", "dismiss"),
		TriggerAt:   now.Add(postTravelDelay),
	}
	if err := s.notifRepo.Create(notification); err != nil {
		return nil, errors.NewDatabaseError("failed to schedule post-travel notification", err)
	}
	return notification, nil
}

// Cancel removes a pending notification by its fixed ID
func (s *NotificationService) Cancel(userID uint, notifID string) error {
	affected, err := s.notifRepo.Cancel(userID, notifID)
	if err != nil {
		return errors.NewDatabaseError("failed to cancel notification", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("no pending notification with that ID")
	}
	return nil
}

// ListPending returns the user's undelivered notifications
func (s *NotificationService) ListPending(userID uint) ([]models.PendingNotification, error) {
	pending, err := s.notifRepo.FindPendingByUser(userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list pending notifications", err)
	}
	return pending, nil
}

// ResolveAction maps a notification action press to a navigation target.
// Dismiss navigates nowhere; anything unrecognized falls back to the
// survey entry so a stale payload still lands somewhere sensible.
func (s *NotificationService) ResolveAction(action, paramsJSON string) *models.NavigationTarget {
	params := map[string]string{}
	if paramsJSON != "" {
		if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
			log.Printf("[WARN] Unparseable notification params: %v\n", err)
			params = map[string]string{}
		}
	}

	switch action {
	case "dismiss":
		return nil
	case "open-survey", "start_travel":
		return &models.NavigationTarget{Screen: models.ScreenSurvey}
	case "view-tours":
		return &models.NavigationTarget{Screen: models.ScreenTourList, Params: params}
	case "view-detail":
		return &models.NavigationTarget{Screen: models.ScreenTourDetail, Params: params}
	case "trip-history":
		return &models.NavigationTarget{Screen: models.ScreenTravel, Params: params}
	default:
		return &models.NavigationTarget{Screen: models.ScreenSurvey}
	}
}

// RegisterDevice stores a push device token for the user
func (s *NotificationService) RegisterDevice(userID uint, req *models.DeviceTokenRequest) error {
	log.Printf("[DEBUG] NotificationService.RegisterDevice called for user: %d\n", userID)

	token := &models.DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.deviceRepo.Save(token); err != nil {
		return errors.NewDatabaseError("failed to register device", err)
	}
	return nil
}

// SendTestNotification pushes directly to all of the user's devices,
// bypassing the schedule
func (s *NotificationService) SendTestNotification(ctx context.Context, userID uint, title, body string) error {
	tokens, err := s.deviceRepo.GetTokensByUserID(userID)
	if err != nil {
		return errors.NewDatabaseError("failed to load device tokens", err)
	}
	if len(tokens) == 0 {
		return errors.NewNotFoundError("no registered devices")
	}

	_, err = s.push.SendToDevices(ctx, tokenStrings(tokens), providersNotification(title, body, map[string]string{
		"channel": ChannelDefault,
	}))
	return err
}

// DeliverDue pushes every due notification, prunes device tokens that
// failed and marks the rest delivered. Returns the number delivered.
func (s *NotificationService) DeliverDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.notifRepo.FindDue(now)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to find due notifications", err)
	}

	delivered := 0
	for _, notification := range due {
		tokens, err := s.deviceRepo.GetTokensByUserID(notification.UserID)
		if err != nil {
			log.Printf("[ERROR] Failed to load devices for user %d: %v\n", notification.UserID, err)
			continue
		}

		if len(tokens) > 0 {
			data := map[string]string{
				"notif_id": notification.NotifID,
				"channel":  notification.Channel,
				"screen":   notification.Screen,
			}
			if notification.ParamsJSON != "" {
				data["params"] = notification.ParamsJSON
			}
			if notification.ActionsJSON != "" {
				data["actions"] = notification.ActionsJSON
			}

			failed, err := s.push.SendToDevices(ctx, tokenStrings(tokens), providersNotification(notification.Title, notification.Body, data))
			if err != nil {
				log.Printf("[ERROR] Push delivery failed for notification %s: %v\n", notification.NotifID, err)
				continue
			}
			for _, token := range failed {
				if err := s.deviceRepo.DeleteToken(token); err != nil {
					log.Printf("[WARN] Failed to prune dead device token: %v\n", err)
				}
			}
		}

		if err := s.notifRepo.MarkDelivered(notification.ID); err != nil {
			log.Printf("[ERROR] Failed to mark notification %s delivered: %v\n", notification.NotifID, err)
			continue
		}
		delivered++
	}

	return delivered, nil
}

// PruneDelivered removes delivered notifications older than the cutoff
func (s *NotificationService) PruneDelivered(cutoff time.Time) error {
	if err := s.notifRepo.DeleteDeliveredBefore(cutoff); err != nil {
		return errors.NewDatabaseError("failed to prune delivered notifications", err)
	}
	return nil
}

func providersNotification(title, body string, data map[string]string) providers.PushNotification {
	return providers.PushNotification{Title: title, Body: body, Data: data}
}

func mustActionsJSON(actions ...string) string {
	data, _ := json.Marshal(actions)
	return string(data)
}

func tokenStrings(tokens []models.DeviceToken) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, token.Token)
	}
	return out
}
