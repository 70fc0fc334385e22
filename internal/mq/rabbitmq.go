package mq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InitQueues declares every queue the process uses. The waitlist offer
// delay queue TTL must match the configured offer window.
func InitQueues(mqConn *amqp.Connection, offerTTL time.Duration) error {
	ch, err := NewChannel(mqConn)
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := SetupImmediateQueue(ch, NotificationQueue); err != nil {
		return err
	}
	if err := SetupDelayQueue(ch, WaitlistOfferDelayQueue, WaitlistOfferExpireExchange,
		WaitlistOfferExpireQueue, WaitlistOfferExpireRoutingKey, offerTTL); err != nil {
		return err
	}

	return nil
}

func NewMQConn(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func SetupImmediateQueue(ch *amqp.Channel, immediateQueueName string) error {
	_, err := ch.QueueDeclare(immediateQueueName, true, false, false, false, nil)
	return err
}

// the delay queue consists of three parts: delay queue, expire exchange,
// expire queue. Produce to the delay queue, consume from the expire queue.
func SetupDelayQueue(ch *amqp.Channel, delayQueueName, expireExchangeName, expireQueueName, expireRoutingKey string, ttl time.Duration) error {
	delayArgs := amqp.Table{
		"x-message-ttl":             int32(ttl.Milliseconds()),
		"x-dead-letter-exchange":    expireExchangeName,
		"x-dead-letter-routing-key": expireRoutingKey,
	}

	if _, err := ch.QueueDeclare(
		delayQueueName, true, false, false, false, delayArgs); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(expireExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(expireQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.QueueBind(expireQueueName, expireRoutingKey, expireExchangeName, false, nil)
}
