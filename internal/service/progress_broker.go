package service

import (
	"sync"

	"github.com/naufalhakm/timetable-api/internal/dto"
)

// ProgressBroker fans generation updates out to run subscribers. A
// publish never blocks the optimizer: subscribers with a full channel
// miss that event. Late subscribers receive the run's history first,
// so a progress stream opened mid-run still shows every generation.
type ProgressBroker struct {
	mu     sync.RWMutex
	buffer int
	runs   map[string]*runStream
}

type runStream struct {
	history []dto.ProgressEvent
	subs    map[int]chan dto.ProgressEvent
	nextSub int
	closed  bool
}

// NewProgressBroker builds a broker whose subscriber channels hold up
// to buffer events.
func NewProgressBroker(buffer int) *ProgressBroker {
	if buffer <= 0 {
		buffer = 16
	}
	return &ProgressBroker{buffer: buffer, runs: make(map[string]*runStream)}
}

// Publish appends the event to the run history and offers it to every
// subscriber without blocking.
func (b *ProgressBroker) Publish(runID string, event dto.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stream, ok := b.runs[runID]
	if !ok {
		stream = &runStream{subs: make(map[int]chan dto.ProgressEvent)}
		b.runs[runID] = stream
	}
	if stream.closed {
		return
	}
	event.Seq = len(stream.history) + 1
	stream.history = append(stream.history, event)
	for _, ch := range stream.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns a channel of events for the run plus a cancel
// function. The run history is replayed into the channel first; for a
// closed run the channel holds the history and is already closed.
func (b *ProgressBroker) Subscribe(runID string) (<-chan dto.ProgressEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stream, ok := b.runs[runID]
	if !ok {
		stream = &runStream{subs: make(map[int]chan dto.ProgressEvent)}
		b.runs[runID] = stream
	}

	ch := make(chan dto.ProgressEvent, b.buffer+len(stream.history))
	for _, event := range stream.history {
		ch <- event
	}
	if stream.closed {
		close(ch)
		return ch, func() {}
	}

	id := stream.nextSub
	stream.nextSub++
	stream.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := stream.subs[id]; ok {
			delete(stream.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// CloseRun marks the run finished and closes every subscriber channel.
// The history stays available for late subscribers.
func (b *ProgressBroker) CloseRun(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stream, ok := b.runs[runID]
	if !ok {
		stream = &runStream{subs: make(map[int]chan dto.ProgressEvent)}
		b.runs[runID] = stream
	}
	if stream.closed {
		return
	}
	stream.closed = true
	for id, ch := range stream.subs {
		delete(stream.subs, id)
		close(ch)
	}
}
