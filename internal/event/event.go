// Package event carries application notifications between the meme
// session, the voice catalog and the terminal UI.
package event

import (
	"fmt"

	"github.com/charmbracelet/log"
	messagebus "github.com/vardius/message-bus"
)

// Topic names a stream of events.
type Topic string

const (
	// StateChanged carries the new meme.State after every transition.
	StateChanged Topic = "meme:state"
	// VoicesChanged carries the refreshed []voice.Voice.
	VoicesChanged Topic = "voice:changed"
	// SpeechDone carries a SpeechResult after every utterance.
	SpeechDone Topic = "speech:done"
	// Error carries an *ErrorEvent.
	Error Topic = "error"
)

// ErrorEvent is published on the Error topic.
type ErrorEvent struct {
	Message string
	Err     error
}

func (e *ErrorEvent) String() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// SpeechResult is published on SpeechDone. Err is nil on success.
type SpeechResult struct {
	Text string
	Err  error
}

// Publisher is the sending half of a Broker.
type Publisher interface {
	Publish(topic Topic, args ...interface{})
}

// Broker is an asynchronous publish/subscribe bus. Handlers for a topic
// receive events in publish order on their own goroutine.
type Broker struct {
	bus messagebus.MessageBus
}

// NewBroker creates a broker whose per-handler queues hold queueSize events.
func NewBroker(queueSize int) *Broker {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Broker{bus: messagebus.New(queueSize)}
}

// Subscribe registers fn for topic. fn must be a func whose parameters
// match the values published on that topic.
func (b *Broker) Subscribe(topic Topic, fn interface{}) error {
	if err := b.bus.Subscribe(string(topic), fn); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	return nil
}

// Unsubscribe removes a handler registered with Subscribe.
func (b *Broker) Unsubscribe(topic Topic, fn interface{}) error {
	if err := b.bus.Unsubscribe(string(topic), fn); err != nil {
		return fmt.Errorf("unsubscribe from %s: %w", topic, err)
	}
	return nil
}

// Publish sends args to every handler of topic.
func (b *Broker) Publish(topic Topic, args ...interface{}) {
	log.Debug("publish", "topic", topic)
	b.bus.Publish(string(topic), args...)
}

// PublishError logs err and sends it on the Error topic.
func (b *Broker) PublishError(message string, err error) {
	log.Error(message, "error", err)
	b.Publish(Error, &ErrorEvent{Message: message, Err: err})
}

// Close releases the handlers of topic.
func (b *Broker) Close(topic Topic) {
	b.bus.Close(string(topic))
}

// Discard is a Publisher that drops every event.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(Topic, ...interface{}) {}
