package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/microblog-app/microblog-back/internal/logs"
)

const (
	SubjectPostCreated    = "post.created"
	SubjectPostDeleted    = "post.deleted"
	SubjectPostLiked      = "post.liked"
	SubjectPostReacted    = "post.reacted"
	SubjectAccountDeleted = "account.deleted"
)

var NatsClient *nats.Conn

func InitNATS(url string) error {
	conn, err := nats.Connect(url,
		nats.Name("microblog-back"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("connexion NATS: %w", err)
	}
	NatsClient = conn
	return nil
}

func Close() {
	if NatsClient != nil {
		NatsClient.Close()
		NatsClient = nil
	}
}

// Publish is fire-and-forget: events go out after the transaction committed,
// so a broker failure is logged and never fails the request.
func Publish(subject string, event interface{}) {
	if NatsClient == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logs.LogJSON("ERROR", "Event encoding failed", map[string]interface{}{
			"error":   err.Error(),
			"subject": subject,
		})
		return
	}
	if err := NatsClient.Publish(subject, payload); err != nil {
		logs.LogJSON("WARN", "Event publish failed", map[string]interface{}{
			"error":   err.Error(),
			"subject": subject,
		})
	}
}

// Subscribe listens on a subject pattern such as "post.*".
func Subscribe(subject string, handler func(subject string, data []byte)) (*nats.Subscription, error) {
	if NatsClient == nil {
		return nil, fmt.Errorf("NATS non initialisé")
	}
	return NatsClient.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
}

type PostCreatedEvent struct {
	PostID    uint      `json:"post_id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type PostDeletedEvent struct {
	PostID   uint   `json:"post_id"`
	Username string `json:"username"`
}

type PostLikedEvent struct {
	PostID uint   `json:"post_id"`
	UserID uint   `json:"user_id"`
	Action string `json:"action"`
	Likes  int64  `json:"likes"`
}

type PostReactedEvent struct {
	PostID    uint             `json:"post_id"`
	UserID    uint             `json:"user_id"`
	Emoji     string           `json:"emoji"`
	Action    string           `json:"action"`
	Reactions map[string]int64 `json:"reactions"`
}

type AccountDeletedEvent struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Posts    int    `json:"posts_removed"`
}
