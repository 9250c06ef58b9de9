package messaging

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutConnectionIsNoop(t *testing.T) {
	Close()
	Publish(SubjectPostCreated, PostCreatedEvent{PostID: 1})

	_, err := Subscribe("post.*", func(string, []byte) {})
	assert.Error(t, err)
}

func TestPublishLikedEvent(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping test - no NATS configured")
	}
	require.NoError(t, InitNATS(url))
	defer Close()

	received := make(chan PostLikedEvent, 1)
	sub, err := Subscribe("post.*", func(subject string, data []byte) {
		if subject != SubjectPostLiked {
			return
		}
		var event PostLikedEvent
		if json.Unmarshal(data, &event) == nil {
			received <- event
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	Publish(SubjectPostLiked, PostLikedEvent{PostID: 5, UserID: 1, Action: "liked", Likes: 4})
	require.NoError(t, NatsClient.Flush())

	select {
	case event := <-received:
		assert.Equal(t, uint(5), event.PostID)
		assert.Equal(t, "liked", event.Action)
		assert.Equal(t, int64(4), event.Likes)
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}
}
