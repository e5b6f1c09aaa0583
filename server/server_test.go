package server

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/inconshreveable/log15"
	"github.com/streadway/amqp"

	"intlist/storage"
	"intlist/types"
)

type published struct {
	key string
	msg amqp.Publishing
}

type fakePublisher struct {
	sent []published
}

func (p *fakePublisher) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	p.sent = append(p.sent, published{key: key, msg: msg})
	return nil
}

func testServer(t *testing.T) (*Server, *types.IntegerList) {
	t.Helper()

	discard := log15.New()
	discard.SetHandler(log15.DiscardHandler())

	list := types.New()
	return newServer(list, storage.NewFileStore(t.TempDir()), discard, discard), list
}

func TestProcessItem(t *testing.T) {
	ctx := context.Background()
	s, list := testServer(t)

	steps := []struct {
		item   types.Item
		ok     bool
		result string
	}{
		{item: types.Item{Action: types.Front}, ok: false},
		{item: types.Item{Action: types.PushBack, Value: 1}, ok: true, result: "{ 1 }"},
		{item: types.Item{Action: types.PushBack, Value: 2}, ok: true, result: "{ 1, 2 }"},
		{item: types.Item{Action: types.PushFront, Value: 1}, ok: true, result: "{ 1, 1, 2 }"},
		{item: types.Item{Action: types.PushBack, Value: 3}, ok: true, result: "{ 1, 1, 2, 3 }"},
		{item: types.Item{Action: types.Find, Value: 2}, ok: true, result: "2"},
		{item: types.Item{Action: types.Find, Value: 9}, ok: true, result: "4"},
		{item: types.Item{Action: types.ElementAt, Index: 3}, ok: true, result: "3"},
		{item: types.Item{Action: types.ElementAt, Index: 4}, ok: false},
		{item: types.Item{Action: types.RemoveValue, Value: 1}, ok: true, result: "2"},
		{item: types.Item{Action: types.Print}, ok: true, result: "List contains 2 elements. { 2, 3 }"},
		{item: types.Item{Action: types.Save, Path: "state.txt"}, ok: true, result: "2"},
		{item: types.Item{Action: types.RemoveAt, Index: 0}, ok: true, result: "{ 3 }"},
		{item: types.Item{Action: types.Back}, ok: true, result: "3"},
		{item: types.Item{Action: types.Load, Path: "state.txt"}, ok: true, result: "2"},
		{item: types.Item{Action: types.PopFront}, ok: true, result: "3"},
		{item: types.Item{Action: types.PopBack}, ok: true, result: "3"},
		{item: types.Item{Action: types.Load, Path: "x"}, ok: false},
		{item: types.Item{Action: types.Clear}, ok: true, result: "{ }"},
		{item: types.Item{Action: types.PopBack}, ok: false},
		{item: types.Item{Action: "Shuffle"}, ok: false},
	}

	for i, step := range steps {
		reply := s.processItem(ctx, &step.item)
		if reply.OK != step.ok {
			t.Fatalf("step %d %s: ok = %t (%s), want %t", i, step.item.Action, reply.OK, reply.Error, step.ok)
		}
		if step.ok && reply.Result != step.result {
			t.Errorf("step %d %s: result = %q, want %q", i, step.item.Action, reply.Result, step.result)
		}
		if !step.ok && reply.Error == "" {
			t.Errorf("step %d %s: failed without an error message", i, step.item.Action)
		}
	}

	if values := list.Values(); len(values) != 0 {
		t.Errorf("list should end empty, found %v", values)
	}
}

func TestHandleDeliveryReplies(t *testing.T) {
	s, list := testServer(t)
	pub := &fakePublisher{}

	s.handleDelivery(context.Background(), amqp.Delivery{
		Body:          []byte(`{"id":"a1","action":"PushBack","value":7}`),
		ReplyTo:       "replies",
		CorrelationId: "a1",
	}, pub)

	if !reflect.DeepEqual(list.Values(), []int{7}) {
		t.Fatalf("list = %v, want [7]", list.Values())
	}
	if len(pub.sent) != 1 {
		t.Fatalf("published %d replies, want 1", len(pub.sent))
	}

	sent := pub.sent[0]
	if sent.key != "replies" || sent.msg.CorrelationId != "a1" {
		t.Errorf("reply routed to %q with correlation %q", sent.key, sent.msg.CorrelationId)
	}

	var reply types.Reply
	if err := json.Unmarshal(sent.msg.Body, &reply); err != nil {
		t.Fatal(err)
	}
	if !reply.OK || reply.ID != "a1" || reply.Result != "{ 7 }" {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestHandleDeliveryMalformed(t *testing.T) {
	s, list := testServer(t)
	pub := &fakePublisher{}

	s.handleDelivery(context.Background(), amqp.Delivery{
		Body:          []byte(`{not json`),
		ReplyTo:       "replies",
		CorrelationId: "b2",
	}, pub)

	if list.Len() != 0 {
		t.Errorf("malformed message changed the list: %v", list.Values())
	}
	if len(pub.sent) != 1 {
		t.Fatalf("published %d replies, want 1", len(pub.sent))
	}

	var reply types.Reply
	if err := json.Unmarshal(pub.sent[0].msg.Body, &reply); err != nil {
		t.Fatal(err)
	}
	if reply.OK || reply.ID != "b2" || !strings.Contains(reply.Error, "malformed") {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestHandleDeliveryMalformedActionLog(t *testing.T) {
	var actions bytes.Buffer
	logFile := log15.New()
	logFile.SetHandler(log15.StreamHandler(&actions, log15.LogfmtFormat()))

	discard := log15.New()
	discard.SetHandler(log15.DiscardHandler())

	s := newServer(types.New(), storage.NewFileStore(t.TempDir()), discard, logFile)
	s.handleDelivery(context.Background(), amqp.Delivery{Body: []byte(`{not json`)}, &fakePublisher{})

	record := actions.String()
	if !strings.Contains(record, `msg="Malformed message"`) {
		t.Errorf("action log %q does not record the malformed message", record)
	}
	if strings.Contains(record, "() failed") {
		t.Errorf("action log %q names an empty action", record)
	}
}

func TestHandleDeliveryWithoutReplyTo(t *testing.T) {
	s, list := testServer(t)
	pub := &fakePublisher{}

	s.handleDelivery(context.Background(), amqp.Delivery{
		Body: []byte(`{"action":"PushFront","value":3}`),
	}, pub)

	if len(pub.sent) != 0 {
		t.Errorf("published %d replies for a fire and forget message", len(pub.sent))
	}
	if !reflect.DeepEqual(list.Values(), []int{3}) {
		t.Errorf("list = %v, want [3]", list.Values())
	}
}

func TestProcessMessages(t *testing.T) {
	s, list := testServer(t)
	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Body: []byte(`{"action":"PushBack","value":1}`)}
	deliveries <- amqp.Delivery{Body: []byte(`{"action":"PushBack","value":2}`)}
	deliveries <- amqp.Delivery{Body: []byte(`{"action":"PushFront","value":0}`)}
	close(deliveries)

	err := s.processMessages(context.Background(), deliveries, &fakePublisher{})
	if err == nil {
		t.Error("processMessages should report the closed delivery channel")
	}
	if !reflect.DeepEqual(list.Values(), []int{0, 1, 2}) {
		t.Errorf("list = %v, want [0 1 2]", list.Values())
	}
}

func TestProcessMessagesCancelled(t *testing.T) {
	s, _ := testServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.processMessages(ctx, make(chan amqp.Delivery), &fakePublisher{}); err != nil {
		t.Errorf("processMessages = %v, want nil after cancellation", err)
	}
}
