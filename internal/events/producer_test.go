package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.Error(t, err)

	p, err := NewProducer([]string{"kafka:9092"})
	require.NoError(t, err)
	assert.Contains(t, p.String(), "kafka:9092")
	require.NoError(t, p.Close())
}

func TestRecorder_FiltersByTopic(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, TopicCart, "p1", map[string]any{"type": "add_cart_items", "quantity": 2}))
	require.NoError(t, r.Publish(ctx, TopicOrder, "p1", struct {
		Type string `json:"type"`
	}{Type: "order_submitted"}))

	cart := r.Events(TopicCart)
	require.Len(t, cart, 1)
	assert.Equal(t, "add_cart_items", cart[0].Data["type"])
	assert.EqualValues(t, 2, cart[0].Data["quantity"])
	assert.Equal(t, "p1", cart[0].Key)

	assert.Len(t, r.Events(""), 2)
	assert.Equal(t, "order_submitted", r.Events(TopicOrder)[0].Data["type"])
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), TopicUser, "k", nil))
}
