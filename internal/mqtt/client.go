// Package mqtt publishes finished seeds and their sphere traces to a broker
// for spoiler and hint consumers.
package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/events"
)

const defaultBrokerURL = "tcp://localhost:1883"

// Options configures a broker connection.
type Options struct {
	URL      string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// OptionsFromService reads the broker settings of svc.
func OptionsFromService(svc *config.Service, clientID string) Options {
	return Options{
		URL:      svc.MQTTURL,
		ClientID: clientID,
		Username: svc.MQTTUser,
		Password: svc.MQTTPassword,
	}
}

// Client wraps the Paho MQTT client.
type Client struct {
	client  paho.Client
	url     string
	timeout time.Duration
	mu      sync.Mutex
}

// NewClient creates a new MQTT client but does not connect.
func NewClient(o Options) *Client {
	if o.URL == "" {
		o.URL = defaultBrokerURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}

	opts := paho.NewClientOptions().
		AddBroker(o.URL).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			events.Emit(events.LevelWarn, "mqtt.disconnected", "connection lost", map[string]interface{}{
				"error": err.Error(),
			})
		})
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	return &Client{
		client:  paho.NewClient(opts),
		url:     o.URL,
		timeout: o.Timeout,
	}
}

// Connect attempts to connect to the broker.
// Returns an error if connection fails, but does not block indefinitely.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return &ConnectTimeoutError{URL: c.url}
	}
	if err := token.Error(); err != nil {
		return err
	}
	events.Emit(events.LevelInfo, "mqtt.connected", "", map[string]interface{}{"url": c.url})
	return nil
}

// Publish sends payload at QoS 1 and waits for the broker to accept it.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(c.timeout) {
		return &PublishTimeoutError{Topic: topic}
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.client.Disconnect(1000)
	events.Emit(events.LevelInfo, "mqtt.disconnected", "", map[string]interface{}{"url": c.url})
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// ConnectTimeoutError indicates connection timed out.
type ConnectTimeoutError struct {
	URL string
}

func (e *ConnectTimeoutError) Error() string {
	return "mqtt connect timeout: " + e.URL
}

// PublishTimeoutError indicates a publish was not acknowledged in time.
type PublishTimeoutError struct {
	Topic string
}

func (e *PublishTimeoutError) Error() string {
	return "mqtt publish timeout: " + e.Topic
}
