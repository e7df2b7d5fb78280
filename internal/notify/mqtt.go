package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher is satisfied by *mqttx.Client.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier publishes reports to a topic.
type MQTTNotifier struct {
	pub   Publisher
	topic string
	qos   byte
}

func NewMQTTNotifier(pub Publisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic, qos: qos}
}

func (n *MQTTNotifier) Notify(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(newEnvelope(msg))
	if err != nil {
		return fmt.Errorf("mqtt: failed to encode report: %w", err)
	}
	return n.pub.Publish(n.topic, n.qos, false, b)
}
