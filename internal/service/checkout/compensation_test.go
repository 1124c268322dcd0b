package checkout

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSagaUnwind_ReverseOrder(t *testing.T) {
	sg := newSaga(log.WithField("component", "saga-test"), nil)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		sg.record(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := sg.unwind(context.Background()); err != nil {
		t.Fatalf("unwind: %v", err)
	}

	if len(order) != 3 || order[0] != "third" || order[1] != "second" || order[2] != "first" {
		t.Fatalf("compensations ran in order %v, want strict reverse", order)
	}
	if sg.state != StateFailed {
		t.Fatalf("state = %s, want failed", sg.state)
	}
}

func TestSagaUnwind_ContinuesPastFailures(t *testing.T) {
	sg := newSaga(log.WithField("component", "saga-test"), nil)

	var applied []string
	sg.record("keep-going", func(context.Context) error {
		applied = append(applied, "keep-going")
		return nil
	})
	sg.record("broken", func(context.Context) error {
		return errors.New("undo failed")
	})

	err := sg.unwind(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error from failed compensation")
	}
	if len(applied) != 1 {
		t.Fatal("remaining compensations must still run after a failure")
	}
}

func TestSagaTerminalStates(t *testing.T) {
	if !StateCommitted.IsTerminal() || !StateFailed.IsTerminal() {
		t.Fatal("committed and failed must be terminal")
	}
	for _, s := range []State{StateNotStarted, StateOrderCreated, StateItemsCreated, StateStockReserved, StateCartCleared} {
		if s.IsTerminal() {
			t.Fatalf("state %s must not be terminal", s)
		}
	}

	sg := newSaga(log.WithField("component", "saga-test"), nil)
	sg.advance(StateCommitted)
	sg.advance(StateFailed)
	if sg.state != StateCommitted {
		t.Fatalf("terminal state must not change, got %s", sg.state)
	}
}
