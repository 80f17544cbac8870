package inbound

import (
	"strconv"

	"github.com/oks-citadel/apply-notify/internal/notification/entity"
	"github.com/oks-citadel/apply-notify/internal/notification/usecase"
	"github.com/oks-citadel/apply-notify/internal/pkg/goerror"
	"github.com/oks-citadel/apply-notify/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// DeviceRegister registers a device for push notifications.
// @Summary Register device
// @Description Registers or refreshes a device token for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body RegisterDeviceRequest true "Device registration payload"
// @Success 200 {object} router.successResponse{data=DeviceResponse} "Registered device"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/device [post]
func (h *HTTPEndpoint) DeviceRegister(r *router.Request) (any, error) {
	var req RegisterDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	device, err := h.uc.DeviceRegister(r.Context(), usecase.DeviceRegisterInput{
		DeviceToken: req.DeviceToken,
		Platform:    req.Platform,
		Name:        req.Name,
		Model:       req.Model,
		OSVersion:   req.OSVersion,
		AppVersion:  req.AppVersion,
		Language:    req.Language,
		Timezone:    req.Timezone,
	})
	if err != nil {
		return nil, err
	}

	return deviceToResponse(*device), nil
}

// DeviceRemove removes a device from push notifications.
// @Summary Remove device
// @Description Deactivates a device token for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body RemoveDeviceRequest true "Device removal payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/device [delete]
func (h *HTTPEndpoint) DeviceRemove(r *router.Request) (any, error) {
	var req RemoveDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.DeviceRemove(r.Context(), usecase.DeviceRemoveInput{DeviceToken: req.DeviceToken})
}

// ListDevices returns the caller's registered devices.
// @Summary List devices
// @Description Returns all device tokens registered by the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=DevicesResponse} "Device list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/devices [get]
func (h *HTTPEndpoint) ListDevices(r *router.Request) (any, error) {
	items, err := h.uc.ListDevices(r.Context())
	if err != nil {
		return nil, err
	}

	resp := make([]DeviceResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, deviceToResponse(item))
	}

	return DevicesResponse{Devices: resp}, nil
}

// GetPreferences returns the caller's notification preferences.
// @Summary Get notification preferences
// @Description Returns the notification opt-in matrix for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=PreferencesPayload} "Preference matrix"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/preferences [get]
func (h *HTTPEndpoint) GetPreferences(r *router.Request) (any, error) {
	prefs, err := h.uc.GetPreferences(r.Context())
	if err != nil {
		return nil, err
	}

	return preferencesToPayload(*prefs), nil
}

// UpdatePreferences replaces the caller's notification preferences.
// @Summary Update notification preferences
// @Description Replaces the full notification opt-in matrix for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body PreferencesPayload true "Preference matrix"
// @Success 200 {object} router.successResponse{data=PreferencesPayload} "Updated matrix"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/preferences [put]
func (h *HTTPEndpoint) UpdatePreferences(r *router.Request) (any, error) {
	var req PreferencesPayload
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	prefs, err := h.uc.UpdatePreferences(r.Context(), usecase.UpdatePreferencesInput{
		EmailEnabled:           req.EmailEnabled,
		PushEnabled:            req.PushEnabled,
		EmailJobAlerts:         req.EmailJobAlerts,
		EmailApplicationStatus: req.EmailApplicationStatus,
		EmailMessages:          req.EmailMessages,
		EmailPromotions:        req.EmailPromotions,
		PushJobAlerts:          req.PushJobAlerts,
		PushApplicationStatus:  req.PushApplicationStatus,
		PushMessages:           req.PushMessages,
		PushPromotions:         req.PushPromotions,
	})
	if err != nil {
		return nil, err
	}

	return preferencesToPayload(*prefs), nil
}

// SendPush queues a push notification for delivery.
// @Summary Send push notification
// @Description Gates recipients against their preferences and queues one push dispatch job.
// @Tags Dispatch
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SendPushRequest true "Push payload"
// @Success 200 {object} router.successResponse{data=SendPushResponse} "Queued job"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "All recipients opted out"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/push [post]
func (h *HTTPEndpoint) SendPush(r *router.Request) (any, error) {
	var req SendPushRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.SendPush(r.Context(), usecase.SendPushInput{
		TargetUserIDs: req.TargetUserIDs,
		Title:         req.Title,
		Body:          req.Body,
		Icon:          req.Icon,
		Image:         req.Image,
		Badge:         req.Badge,
		Sound:         req.Sound,
		ClickAction:   req.ClickAction,
		Data:          req.Data,
		Category:      req.Category,
		Priority:      req.Priority,
		TTLSeconds:    req.TTLSeconds,
	})
	if err != nil {
		return nil, err
	}

	return SendPushResponse{JobID: out.JobID, Queued: out.Queued, Declined: out.Declined}, nil
}

// SendEmail queues an email notification for delivery.
// @Summary Send email notification
// @Description Gates the recipient against their preferences and queues one email dispatch job.
// @Tags Dispatch
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SendEmailRequest true "Email payload"
// @Success 200 {object} router.successResponse{data=SendEmailResponse} "Queued job"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Recipient opted out"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/email [post]
func (h *HTTPEndpoint) SendEmail(r *router.Request) (any, error) {
	var req SendEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.SendEmail(r.Context(), usecase.SendEmailInput{
		TargetUserID: req.TargetUserID,
		Email:        req.Email,
		Subject:      req.Subject,
		HTMLBody:     req.HTMLBody,
		Category:     req.Category,
	})
	if err != nil {
		return nil, err
	}

	return SendEmailResponse{JobID: out.JobID, NotificationID: out.NotificationID}, nil
}

// ListInbox returns user notifications.
// @Summary List inbox
// @Description Returns inbox notifications for the authenticated user.
// @Tags Inbox
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status (all|read|unread)"
// @Param limit query int false "Pagination limit"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} router.successResponse{data=NotificationsResponse} "Notification list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox [get]
func (h *HTTPEndpoint) ListInbox(r *router.Request) (any, error) {
	query := r.URL.Query()
	limit, err := parseInt32(query.Get("limit"))
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}
	offset, err := parseInt32(query.Get("offset"))
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	items, err := h.uc.ListInbox(r.Context(), usecase.ListInboxInput{
		Status: query.Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, NotificationResponse{
			ID:        item.ID,
			Channel:   item.Channel.String(),
			Status:    item.Status.String(),
			Priority:  item.Priority.String(),
			Category:  item.Category.String(),
			Title:     item.Title,
			Body:      item.Body,
			Data:      item.Data,
			ActionURL: item.ActionURL,
			ReadAt:    item.ReadAt,
			SentAt:    item.SentAt,
			CreatedAt: item.CreatedAt,
		})
	}

	return NotificationsResponse{Notifications: resp}, nil
}

// UnreadCount returns the number of unread notifications.
// @Summary Count unread inbox
// @Description Returns how many delivered notifications the authenticated user has not read.
// @Tags Inbox
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UnreadCountResponse} "Unread count"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/unread-count [get]
func (h *HTTPEndpoint) UnreadCount(r *router.Request) (any, error) {
	count, err := h.uc.UnreadCount(r.Context())
	if err != nil {
		return nil, err
	}

	return UnreadCountResponse{Count: count}, nil
}

// MarkInboxRead marks a notification as read.
// @Summary Mark inbox read
// @Description Marks an inbox notification as read.
// @Tags Inbox
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid notification id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/{id}/read [patch]
func (h *HTTPEndpoint) MarkInboxRead(r *router.Request) (any, error) {
	id, err := strconv.ParseInt(r.GetParam("id"), 10, 64)
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	return nil, h.uc.MarkInboxRead(r.Context(), usecase.MarkInboxReadInput{ID: id})
}

// MarkAllInboxRead marks all notifications as read.
// @Summary Mark all inbox read
// @Description Marks all inbox notifications as read for the authenticated user.
// @Tags Inbox
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/read-all [put]
func (h *HTTPEndpoint) MarkAllInboxRead(r *router.Request) (any, error) {
	return nil, h.uc.MarkAllInboxRead(r.Context())
}

// DeleteInbox removes a notification.
// @Summary Delete inbox
// @Description Soft deletes an inbox notification for the authenticated user.
// @Tags Inbox
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid notification id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/{id} [delete]
func (h *HTTPEndpoint) DeleteInbox(r *router.Request) (any, error) {
	id, err := strconv.ParseInt(r.GetParam("id"), 10, 64)
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	return nil, h.uc.DeleteInbox(r.Context(), usecase.DeleteInboxInput{ID: id})
}

func parseInt32(raw string) (int32, error) {
	if raw == "" {
		return 0, nil
	}

	val, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}

	return int32(val), nil
}

func deviceToResponse(d entity.DeviceToken) DeviceResponse {
	return DeviceResponse{
		ID:         d.ID,
		Token:      d.Token,
		Platform:   d.Platform.String(),
		Status:     d.Status.String(),
		Name:       d.Name,
		Model:      d.Model,
		OSVersion:  d.OSVersion,
		AppVersion: d.AppVersion,
		Language:   d.Language,
		Timezone:   d.Timezone,
		LastUsedAt: d.LastUsedAt,
		CreatedAt:  d.CreatedAt,
	}
}

func preferencesToPayload(p entity.Preferences) PreferencesPayload {
	return PreferencesPayload{
		EmailEnabled:           p.EmailEnabled,
		PushEnabled:            p.PushEnabled,
		EmailJobAlerts:         p.EmailJobAlerts,
		EmailApplicationStatus: p.EmailApplicationStatus,
		EmailMessages:          p.EmailMessages,
		EmailPromotions:        p.EmailPromotions,
		PushJobAlerts:          p.PushJobAlerts,
		PushApplicationStatus:  p.PushApplicationStatus,
		PushMessages:           p.PushMessages,
		PushPromotions:         p.PushPromotions,
	}
}
