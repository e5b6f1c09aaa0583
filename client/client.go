package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"intlist/config"
	"intlist/types"
)

// Publisher is the part of an AMQP channel used to send commands.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Client sends list commands to the server queue and collects replies on an
// exclusive reply queue.
type Client struct {
	conn       *amqp.Connection
	pub        Publisher
	queue      string
	replyQueue string
	timeout    time.Duration

	mux     sync.Mutex
	pending map[string]chan types.Reply
}

func NewClient(conf *config.Config) (*Client, error) {
	conn, err := amqp.Dial(conf.AmqpUrl)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", conf.AmqpUrl, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		conf.Queue, // queue name
		true,       // durable
		false,      // auto delete
		false,      // exclusive
		false,      // no wait
		nil,        // arguments
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", conf.Queue, err)
	}

	replies, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare reply queue: %w", err)
	}

	deliveries, err := ch.Consume(replies.Name, "", true, true, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("consume reply queue: %w", err)
	}

	c := newClient(ch, conf.Queue, replies.Name, time.Duration(conf.ServerWaitTimeSeconds)*time.Second)
	c.conn = conn
	go c.dispatch(deliveries)
	return c, nil
}

func newClient(pub Publisher, queue, replyQueue string, timeout time.Duration) *Client {
	return &Client{
		pub:        pub,
		queue:      queue,
		replyQueue: replyQueue,
		timeout:    timeout,
		pending:    make(map[string]chan types.Reply),
	}
}

// Send publishes item without waiting for the server to apply it.
func (c *Client) Send(item *types.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return c.publish(item, "")
}

// Call publishes item and waits for the server's reply.
func (c *Client) Call(ctx context.Context, item *types.Item) (*types.Reply, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	wait := make(chan types.Reply, 1)
	c.mux.Lock()
	c.pending[item.ID] = wait
	c.mux.Unlock()

	defer func() {
		c.mux.Lock()
		delete(c.pending, item.ID)
		c.mux.Unlock()
	}()

	if err := c.publish(item, c.replyQueue); err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	select {
	case reply := <-wait:
		return &reply, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for reply to %s: %w", item.ID, ctx.Err())
	}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) publish(item *types.Item, replyTo string) error {
	req, err := json.Marshal(item)
	if err != nil {
		return err
	}

	err = c.pub.Publish(
		"",
		c.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: item.ID,
			ReplyTo:       replyTo,
			Body:          req,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", item.Action, err)
	}
	return nil
}

func (c *Client) dispatch(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		var reply types.Reply
		if err := json.Unmarshal(d.Body, &reply); err != nil {
			reply = types.Reply{Error: "malformed reply: " + err.Error()}
		}
		if reply.ID == "" {
			reply.ID = d.CorrelationId
		}

		c.mux.Lock()
		wait, ok := c.pending[d.CorrelationId]
		c.mux.Unlock()
		if ok {
			wait <- reply
		}
	}
}
