package eventbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardedit/domain/core/valueobjects"
	"boardedit/domain/events"
)

type fakeClient struct {
	calls   [][]types.PutEventsRequestEntry
	errs    []error
	failAll bool
}

func (c *fakeClient) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	c.calls = append(c.calls, in.Entries)
	if c.failAll {
		return nil, errors.New("unreachable")
	}
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func someEvents(n int) []events.DomainEvent {
	board := valueobjects.NewBoardID()
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewSegmentRemoved(board, i+1, valueobjects.NewSegmentID(), time.Now())
	}
	return out
}

func TestPublisher_ChunksBatches(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, Config{EventBusName: "boards"}, nil)

	require.NoError(t, p.PublishBatch(context.Background(), someEvents(23)))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0], 10)
	assert.Len(t, client.calls[2], 3)
	entry := client.calls[0][0]
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, "boards", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.TypeSegmentRemoved, aws.ToString(entry.DetailType))
}

func TestPublisher_RetriesTransientFailures(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("throttled"), nil}}
	p := NewPublisher(client, Config{Backoff: time.Millisecond}, nil)

	require.NoError(t, p.Publish(context.Background(), someEvents(1)[0]))
	assert.Len(t, client.calls, 2)
}

func TestPublisher_BreakerOpens(t *testing.T) {
	client := &fakeClient{failAll: true}
	p := NewPublisher(client, Config{MaxRetries: 1, Backoff: time.Millisecond, TripAfter: 2, BreakerReset: time.Hour}, nil)

	for i := 0; i < 2; i++ {
		assert.Error(t, p.Publish(context.Background(), someEvents(1)[0]))
	}
	calls := len(client.calls)

	err := p.Publish(context.Background(), someEvents(1)[0])
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, calls, len(client.calls))
}
