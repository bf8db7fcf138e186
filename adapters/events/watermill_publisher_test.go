package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galenus-health/galenus-go/core"
)

func TestWatermillPublisherDeliversToSubscriber(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, SessionTopic)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubsub)
	sent := core.SessionEvent{
		State: core.StateAuthenticated.String(),
		Email: "a@b.com",
		At:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, publisher.PublishStateChange(ctx, sent))

	select {
	case msg := <-messages:
		msg.Ack()
		var got core.SessionEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, sent, got)
		assert.NotEmpty(t, msg.UUID)
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}
