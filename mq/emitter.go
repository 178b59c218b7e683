package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"nivaas/db"
	"nivaas/models"
	"nivaas/notify"
	"nivaas/rdx"
	"nivaas/utils"
)

const notificationChannel = "notification-events"

// Event is a notification to be delivered to one user.
type Event struct {
	Kind     string `json:"kind"`
	UserID   string `json:"userId"`
	Message  string `json:"message"`
	EntityID string `json:"entityId,omitempty"`
}

// Emit publishes a notification event to Redis. Delivery is asynchronous and
// best-effort; a failed publish is logged, never surfaced to the caller.
func Emit(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(context.Background(), notificationChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish event to Redis: %v", err)
	}
}

// StartNotificationWorker consumes notification events, persists them, and
// pushes them to the recipient's live websocket connections.
func StartNotificationWorker(hub *notify.Hub) {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, notificationChannel)
	ch := sub.Channel()

	log.Println("[NotificationWorker] Listening for notification events...")

	for msg := range ch {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[NotificationWorker] Failed to parse event: %v", err)
			continue
		}

		n := models.Notification{
			NotificationID: utils.GenerateID(14),
			UserID:         ev.UserID,
			Kind:           ev.Kind,
			Message:        ev.Message,
			EntityID:       ev.EntityID,
			CreatedAt:      time.Now(),
		}
		insCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if _, err := db.NotificationsCollection.InsertOne(insCtx, n); err != nil {
			log.Printf("[NotificationWorker] Failed to persist notification: %v", err)
		}
		cancel()

		data, err := json.Marshal(n)
		if err != nil {
			log.Printf("[NotificationWorker] Failed to marshal notification: %v", err)
			continue
		}
		hub.Push(ev.UserID, data)
	}
}
