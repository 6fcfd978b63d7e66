package event

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishSubscribe(t *testing.T) {
	b := NewBroker(4)
	got := make(chan string, 1)

	require.NoError(t, b.Subscribe(StateChanged, func(s string) { got <- s }))
	b.Publish(StateChanged, "loaded")

	select {
	case s := <-got:
		assert.Equal(t, "loaded", s)
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker(4)
	called := make(chan struct{}, 1)
	fn := func() { called <- struct{}{} }

	require.NoError(t, b.Subscribe(SpeechDone, fn))
	require.NoError(t, b.Unsubscribe(SpeechDone, fn))
	b.Publish(SpeechDone)

	select {
	case <-called:
		t.Fatal("unsubscribed handler was called")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_SubscribeRejectsNonFunc(t *testing.T) {
	b := NewBroker(0)
	assert.Error(t, b.Subscribe(Error, "not a func"))
}

func TestErrorEvent_String(t *testing.T) {
	assert.Equal(t, "load failed", (&ErrorEvent{Message: "load failed"}).String())
	assert.Equal(t, "load failed: boom", (&ErrorEvent{Message: "load failed", Err: errors.New("boom")}).String())
}

func TestDiscard(t *testing.T) {
	var p Publisher = Discard{}
	p.Publish(Error, "ignored")
}
