package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/streadway/amqp"

	"intlist/config"
	"intlist/storage"
	"intlist/types"
)

// Publisher is the part of an AMQP channel the server replies through.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Server applies list commands received from a queue to a single shared list.
type Server struct {
	data    *types.IntegerList
	store   storage.Store
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logFile log15.Logger
	logger  log15.Logger
	dataMux sync.Mutex
	logsMux sync.Mutex
}

func NewServer(conf *config.Config, store storage.Store) (*Server, error) {
	logFile, err := conf.ActionLog()
	if err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(conf.AmqpUrl)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", conf.AmqpUrl, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	s := newServer(types.New(), store, conf.Logger("server"), logFile)
	s.conn = conn
	s.channel = ch
	s.queue = conf.Queue
	return s, nil
}

func newServer(list *types.IntegerList, store storage.Store, logger, logFile log15.Logger) *Server {
	return &Server{
		data:    list,
		store:   store,
		logger:  logger,
		logFile: logFile,
	}
}

// StartServer consumes the configured queue until ctx is cancelled or the
// broker closes the delivery channel.
func (s *Server) StartServer(ctx context.Context) error {
	defer s.conn.Close()

	if _, err := s.channel.QueueDeclare(
		s.queue, // queue name
		true,    // durable
		false,   // auto delete
		false,   // exclusive
		false,   // no wait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", s.queue, err)
	}

	deliveries, err := s.channel.Consume(
		s.queue,
		"",
		true,
		false,
		false,
		false,
		nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.queue, err)
	}

	s.logger.Info("Listening queue", "queue", s.queue)
	return s.processMessages(ctx, deliveries, s.channel)
}

func (s *Server) processMessages(ctx context.Context, deliveries <-chan amqp.Delivery, pub Publisher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case message, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			s.handleDelivery(ctx, message, pub)
		}
	}
}

func (s *Server) handleDelivery(ctx context.Context, message amqp.Delivery, pub Publisher) {
	var item types.Item
	var reply types.Reply
	malformed := false

	if err := json.Unmarshal(message.Body, &item); err != nil {
		malformed = true
		s.logger.Error("Cannot unmarshal message", "error", err.Error())
		reply = types.Reply{Error: "malformed message: " + err.Error()}
	} else {
		reply = s.processItem(ctx, &item)
	}
	if reply.ID == "" {
		reply.ID = message.CorrelationId
	}

	s.logsMux.Lock()
	if malformed {
		s.logFile.Warn("Malformed message", "id", reply.ID, "error", reply.Error)
	} else if reply.OK {
		s.logFile.Info(item.Action+"() done", "id", reply.ID, "result", reply.Result)
	} else {
		s.logFile.Warn(item.Action+"() failed", "id", reply.ID, "error", reply.Error)
	}
	s.logsMux.Unlock()

	if message.ReplyTo == "" {
		return
	}

	body, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Cannot marshal reply", "error", err.Error())
		return
	}
	err = pub.Publish("", message.ReplyTo, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: message.CorrelationId,
		Body:          body,
	})
	if err != nil {
		s.logger.Error("Error while sending reply", "reply_to", message.ReplyTo, "error", err)
	}
}

func (s *Server) processItem(ctx context.Context, item *types.Item) types.Reply {
	s.dataMux.Lock()
	defer s.dataMux.Unlock()

	result, err := s.apply(ctx, item)
	if err != nil {
		return types.Reply{ID: item.ID, Error: err.Error()}
	}
	return types.Reply{ID: item.ID, OK: true, Result: result}
}

func (s *Server) apply(ctx context.Context, item *types.Item) (string, error) {
	switch item.Action {
	case types.PushFront:
		s.data.PushFront(item.Value)
		return s.data.String(), nil
	case types.PushBack:
		s.data.PushBack(item.Value)
		return s.data.String(), nil
	case types.PopFront:
		v, ok := s.data.PopFront()
		if !ok {
			return "", types.ErrEmpty
		}
		return strconv.Itoa(v), nil
	case types.PopBack:
		v, ok := s.data.PopBack()
		if !ok {
			return "", types.ErrEmpty
		}
		return strconv.Itoa(v), nil
	case types.RemoveAt:
		if err := s.data.RemoveAt(item.Index); err != nil {
			return "", err
		}
		return s.data.String(), nil
	case types.RemoveValue:
		return strconv.Itoa(s.data.RemoveValue(item.Value)), nil
	case types.Front:
		v, err := s.data.Front()
		if err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	case types.Back:
		v, err := s.data.Back()
		if err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	case types.ElementAt:
		v, err := s.data.ElementAt(item.Index)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	case types.Find:
		return strconv.Itoa(s.data.FindFirstIndex(item.Value)), nil
	case types.Print:
		return s.data.Summary() + " " + s.data.String(), nil
	case types.Clear:
		s.data.Clear()
		return s.data.String(), nil
	case types.Load:
		n, err := s.store.Load(ctx, item.Path, s.data)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	case types.Save:
		if err := s.store.Save(ctx, item.Path, s.data); err != nil {
			return "", err
		}
		return strconv.Itoa(s.data.Len()), nil
	default:
		return "", fmt.Errorf("unknown action %q", item.Action)
	}
}
