package mqtt

import "fmt"

// maxPayloadSize caps outbound payloads. Event payloads are small JSON
// documents; anything larger indicates a bug upstream.
const maxPayloadSize = 256 * 1024

// Publish sends a message to the broker and waits for acknowledgment
// according to the QoS level.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishEvent publishes an entity event with the configured default QoS.
//
// Events are not retained: they describe mutations, not current state.
func (c *Client) PublishEvent(entity, action string, payload []byte) error {
	return c.Publish(Topics{}.EntityEvent(entity, action), payload, byte(c.cfg.QoS), false)
}
