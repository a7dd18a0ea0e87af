package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naufalhakm/timetable-api/internal/dto"
)

func TestProgressBrokerDeliversInOrder(t *testing.T) {
	broker := NewProgressBroker(8)
	ch, cancel := broker.Subscribe("run-1")
	defer cancel()

	broker.Publish("run-1", dto.ProgressEvent{RunID: "run-1", Message: "generation 1/4"})
	broker.Publish("run-1", dto.ProgressEvent{RunID: "run-1", Message: "generation 2/4"})

	first := <-ch
	second := <-ch
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, "generation 1/4", first.Message)
	assert.Equal(t, 2, second.Seq)
}

func TestProgressBrokerReplaysHistoryToLateSubscribers(t *testing.T) {
	broker := NewProgressBroker(8)
	broker.Publish("run-1", dto.ProgressEvent{RunID: "run-1", Message: "generation 1/4"})
	broker.Publish("run-1", dto.ProgressEvent{RunID: "run-1", Message: "generation 2/4"})
	broker.CloseRun("run-1")

	ch, cancel := broker.Subscribe("run-1")
	defer cancel()

	var got []dto.ProgressEvent
	for event := range ch {
		got = append(got, event)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "generation 2/4", got[1].Message)
}

func TestProgressBrokerDropsEventsForSlowSubscribers(t *testing.T) {
	broker := NewProgressBroker(2)
	ch, cancel := broker.Subscribe("run-1")
	defer cancel()

	// Nobody drains the channel; publishes beyond the buffer must not
	// block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			broker.Publish("run-1", dto.ProgressEvent{RunID: "run-1", Message: "tick"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
	assert.LessOrEqual(t, len(ch), 2)
}

func TestProgressBrokerCloseRunClosesChannels(t *testing.T) {
	broker := NewProgressBroker(4)
	ch, cancel := broker.Subscribe("run-1")
	defer cancel()

	broker.CloseRun("run-1")

	_, open := <-ch
	assert.False(t, open)

	// Closing twice is harmless.
	broker.CloseRun("run-1")
}
