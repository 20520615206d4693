package eventsvc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core"
	logsvc "github.com/trezcool/tutorhub/services/logger"
)

type fakeChannel struct {
	mu        sync.Mutex
	published map[string]amqp.Publishing
	err       error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.published == nil {
		c.published = make(map[string]amqp.Publishing)
	}
	c.published[exchange+"|"+key] = msg
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := new(fakeChannel)
	pub := newAMQPPublisherWithChannel(ch, "tutorhub.events", &core.NopLogger{})

	ctx := core.WithActor(context.Background(), "admin")
	pub.Publish(ctx,
		core.NewEvent(ctx, "tutor", core.ActionArchived, 7, nil),
		core.NewEvent(ctx, "curriculum", core.ActionCreated, 3, map[string]string{"name": "IGCSE"}),
	)
	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)

	require.Len(t, ch.published, 2)
	msg, ok := ch.published["tutorhub.events|tutorhub.tutor.archived"]
	require.True(t, ok)
	assert.Equal(t, "application/json", msg.ContentType)

	var evt core.Event
	require.NoError(t, json.Unmarshal(msg.Body, &evt))
	assert.Equal(t, 7, evt.EntityID)
	assert.Equal(t, "admin", evt.Actor)
	assert.Equal(t, msg.MessageId, evt.ID)

	_, ok = ch.published["tutorhub.events|tutorhub.curriculum.created"]
	assert.True(t, ok)
}

func TestAMQPPublisher_PublishFailureIsLogged(t *testing.T) {
	std, hook := test.NewNullLogger()
	logger := logsvc.NewRollbarLogger(std, core.NewTestConfig())
	logger.Enable(false)

	ch := &fakeChannel{err: errors.New("channel closed")}
	pub := newAMQPPublisherWithChannel(ch, "tutorhub.events", logger)

	ctx := context.Background()
	pub.Publish(ctx, core.NewEvent(ctx, "subject", core.ActionDeleted, 1, nil))
	require.NoError(t, pub.Close())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "publishing event subject.deleted", entry.Message)
}

func TestRecorder(t *testing.T) {
	rec := new(Recorder)
	ctx := context.Background()
	rec.Publish(ctx, core.NewEvent(ctx, "tutor", core.ActionCreated, 1, nil))
	rec.Publish(ctx, core.NewEvent(ctx, "tutor", core.ActionDeleted, 1, nil))

	assert.Equal(t, []string{"tutor.created", "tutor.deleted"}, rec.RoutingKeys())
	assert.Len(t, rec.Events(), 2)
	rec.Reset()
	assert.Empty(t, rec.Events())
}
