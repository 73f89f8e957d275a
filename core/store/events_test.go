package store

import (
	"errors"
	"testing"

	"github.com/ksubased/hub/core/message"
)

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus(nil)
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe(EventMergeMessage, func(m *message.Message) error {
			order = append(order, i)
			return nil
		})
	}
	bus.publish(EventMergeMessage, &message.Message{})
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("unexpected delivery order %v", order)
	}
}

func TestEventBusKindsAreIndependent(t *testing.T) {
	bus := NewEventBus(nil)
	var merges, prunes int
	bus.Subscribe(EventMergeMessage, func(m *message.Message) error { merges++; return nil })
	bus.Subscribe(EventPruneMessage, func(m *message.Message) error { prunes++; return nil })

	bus.publish(EventMergeMessage, &message.Message{})
	bus.publish(EventMergeMessage, &message.Message{})
	bus.publish(EventPruneMessage, &message.Message{})

	if merges != 2 {
		t.Errorf("expected 2 merge deliveries, got %d", merges)
	}
	if prunes != 1 {
		t.Errorf("expected 1 prune delivery, got %d", prunes)
	}
}

func TestEventBusSurvivesFailingSubscriber(t *testing.T) {
	bus := NewEventBus(nil)
	var reached bool
	bus.Subscribe(EventMergeMessage, func(m *message.Message) error {
		return errors.New("subscriber failure")
	})
	bus.Subscribe(EventMergeMessage, func(m *message.Message) error {
		panic("subscriber panic")
	})
	bus.Subscribe(EventMergeMessage, func(m *message.Message) error {
		reached = true
		return nil
	})
	bus.publish(EventMergeMessage, &message.Message{})
	if !reached {
		t.Error("expected delivery to continue past failing subscribers")
	}
}
