package inbound

import (
	"net/http"

	"github.com/oks-citadel/apply-notify/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/notification/device", end.DeviceRegister)
	r.DELETE("/api/v1/notification/device", end.DeviceRemove)
	r.GET("/api/v1/notification/devices", end.ListDevices)

	r.GET("/api/v1/notification/preferences", end.GetPreferences)
	r.PUT("/api/v1/notification/preferences", end.UpdatePreferences)

	r.POST("/api/v1/notification/push", end.SendPush)
	r.POST("/api/v1/notification/email", end.SendEmail)

	r.GET("/api/v1/notification/inbox", end.ListInbox)
	r.GET("/api/v1/notification/inbox/unread-count", end.UnreadCount)
	r.PATCH("/api/v1/notification/inbox/:id/read", end.MarkInboxRead)
	r.PUT("/api/v1/notification/inbox/read-all", end.MarkAllInboxRead)
	r.DELETE("/api/v1/notification/inbox/:id", end.DeleteInbox)

	r.GETRaw("/api/v1/notification/stream", http.HandlerFunc(end.StreamNotifications))
}
