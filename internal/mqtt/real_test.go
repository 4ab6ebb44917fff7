package mqtt

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// doneToken is a paho.Token that has already completed.
type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// stubClient is a paho.Client that records publishes. open controls
// IsConnectionOpen independently of the publisher's handlers.
type stubClient struct {
	mu        sync.Mutex
	open      bool
	published []string
}

func (c *stubClient) setOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

func (c *stubClient) payloads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.published...)
}

func (c *stubClient) IsConnected() bool { return c.IsConnectionOpen() }
func (c *stubClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
func (c *stubClient) Connect() paho.Token   { return doneToken{} }
func (c *stubClient) Disconnect(uint)       {}
func (c *stubClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, string(payload.([]byte)))
	return doneToken{}
}
func (c *stubClient) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return doneToken{}
}
func (c *stubClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return doneToken{}
}
func (c *stubClient) Unsubscribe(...string) paho.Token          { return doneToken{} }
func (c *stubClient) AddRoute(string, paho.MessageHandler)      {}
func (c *stubClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func newStubPublisher(client *stubClient, onStatus func(bool)) *RealPublisher {
	if onStatus == nil {
		onStatus = func(bool) {}
	}
	return &RealPublisher{
		client:   client,
		topics:   NewTopics("test"),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		buffer:   newRingBuffer(10),
		onStatus: onStatus,
	}
}

func TestRealPublisherQueuesUntilReplayed(t *testing.T) {
	client := &stubClient{}
	p := newStubPublisher(client, nil)

	p.Broadcast(logic.ChangeEvent{Line: 4, Level: logic.Low})

	// The client reports the connection open before the connect handler
	// has replayed the queue.
	client.setOpen(true)
	p.Broadcast(logic.ChangeEvent{Line: 4, Level: logic.High})
	if got := client.payloads(); len(got) != 0 {
		t.Fatalf("published before replay: %v", got)
	}

	p.onConnect(client)
	p.Broadcast(logic.ChangeEvent{Line: 16, Level: logic.High})

	want := []string{
		`{"gpio":4,"state":0}`,
		`{"gpio":4,"state":1}`,
		`{"gpio":16,"state":1}`,
	}
	if got := client.payloads(); !reflect.DeepEqual(got, want) {
		t.Errorf("published: got %v, want %v", got, want)
	}
}

func TestRealPublisherQueuesAfterConnectionLost(t *testing.T) {
	client := &stubClient{open: true}
	p := newStubPublisher(client, nil)
	p.onConnect(client)

	p.onConnectionLost(client, errors.New("broker gone"))
	// paho may still report the socket open while tearing it down.
	p.Broadcast(logic.ChangeEvent{Line: 4, Level: logic.High})
	if got := client.payloads(); len(got) != 0 {
		t.Fatalf("published while disconnected: %v", got)
	}
	if p.buffer.len() != 1 {
		t.Errorf("buffered: got %d, want 1", p.buffer.len())
	}

	p.onConnect(client)
	if got := client.payloads(); !reflect.DeepEqual(got, []string{`{"gpio":4,"state":1}`}) {
		t.Errorf("replayed: got %v", got)
	}
}

func TestRealPublisherReportsStatus(t *testing.T) {
	var states []bool
	client := &stubClient{open: true}
	p := newStubPublisher(client, func(connected bool) {
		states = append(states, connected)
	})

	p.onConnect(client)
	p.onConnectionLost(client, errors.New("broker gone"))

	if !reflect.DeepEqual(states, []bool{true, false}) {
		t.Errorf("status: got %v, want [true false]", states)
	}
}
