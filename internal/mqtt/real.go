package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/mdelathouwer/gpio-monitor/internal/logic"
)

// Options configures a RealPublisher.
type Options struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Buffer      int
	Logger      *slog.Logger

	// OnStatus, when set, is called with the new state each time the
	// broker connection comes up or drops.
	OnStatus func(connected bool)
}

// RealPublisher publishes to an actual MQTT broker. Change events are
// published at QoS 0 without waiting for the network; while the client is
// disconnected they are queued in a ring buffer and replayed on reconnect.
type RealPublisher struct {
	client   paho.Client
	topics   Topics
	logger   *slog.Logger
	onStatus func(bool)

	mu     sync.Mutex
	buffer *ringBuffer
	// replayed is set once onConnect has drained the buffer for the
	// current connection. Until then events keep queueing behind it.
	replayed bool
}

// NewRealPublisher creates a publisher and starts connecting to the broker
// in the background. It does not wait for the first connection.
func NewRealPublisher(opts Options) *RealPublisher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &RealPublisher{
		topics:   NewTopics(opts.TopicPrefix),
		logger:   logger.With("component", "mqtt"),
		buffer:   newRingBuffer(opts.Buffer),
		onStatus: opts.OnStatus,
	}
	if p.onStatus == nil {
		p.onStatus = func(bool) {}
	}

	lwt, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(p.topics.System, string(lwt), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(clientOpts)
	p.client.Connect()
	return p
}

// Register publishes the monitored line set, retained.
func (p *RealPublisher) Register(lines []int) {
	payload, err := FormatLinesPayload(lines)
	if err != nil {
		p.logger.Error("format lines payload", "error", err)
		return
	}
	p.send(message{topic: p.topics.Lines, payload: payload, qos: 1, retained: true})
}

// Broadcast publishes a change event at QoS 0 (at-most-once), not retained.
func (p *RealPublisher) Broadcast(event logic.ChangeEvent) {
	payload, err := logic.FormatPayload(event)
	if err != nil {
		p.logger.Error("format event payload", "error", err)
		return
	}
	p.send(message{topic: p.topics.Events, payload: payload})
}

func (p *RealPublisher) send(msg message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.replayed || !p.client.IsConnectionOpen() {
		if p.buffer.push(msg) && p.buffer.dropped == 1 {
			p.logger.Warn("buffer full, dropping oldest", "capacity", len(p.buffer.buf))
		}
		return
	}
	p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
}

// PublishSystem sends a system lifecycle event and waits for delivery.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	token := p.client.Publish(p.topics.System, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

// onConnect replays queued messages under the lock. The client reports
// the connection open before this runs, so send keeps queueing until
// replayed is set here.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dropped := p.buffer.dropped
	pending := p.buffer.drain()
	p.logger.Info("connected", "replay", len(pending), "dropped", dropped)
	for _, msg := range pending {
		c.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}
	p.replayed = true
	p.onStatus(true)
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Warn("connection lost", "error", err)
	p.replayed = false
	p.onStatus(false)
}
