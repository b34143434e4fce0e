package command

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// MQTTChannel receives commands and publishes responses over MQTT.
type MQTTChannel struct {
	client   paho.Client
	requests chan string
}

// NewMQTTChannel connects to the broker and subscribes to the command
// topic. The subscription is re-established on every reconnect.
func NewMQTTChannel(broker string) (*MQTTChannel, error) {
	c := &MQTTChannel{
		// Buffered so the paho callback never blocks on a busy main loop.
		requests: make(chan string, 16),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("rf433d").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

func (c *MQTTChannel) onConnect(client paho.Client) {
	token := client.Subscribe(TopicCommands, 1, c.onMessage)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("mqtt: subscribe timeout on %s", TopicCommands)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe %s: %v", TopicCommands, err)
		return
	}
	log.Printf("mqtt: subscribed to %s", TopicCommands)
}

func (c *MQTTChannel) onMessage(_ paho.Client, msg paho.Message) {
	select {
	case c.requests <- string(msg.Payload()):
	default:
		log.Printf("mqtt: command queue full, dropping %q", msg.Payload())
	}
}

// Requests returns the stream of raw command payloads.
func (c *MQTTChannel) Requests() <-chan string {
	return c.requests
}

// Publish sends a response payload to the response topic.
func (c *MQTTChannel) Publish(payload []byte) error {
	// QoS 0 (at-most-once), not retained
	token := c.client.Publish(TopicResponses, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (c *MQTTChannel) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *MQTTChannel) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
