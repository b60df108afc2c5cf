package signal

import (
	"errors"
	"testing"
)

func TestSend_OrderAndPayload(t *testing.T) {
	s := New("transaction_start")
	var got []int
	var apps []any
	s.Connect(func(app any) error { got = append(got, 1); apps = append(apps, app); return nil })
	s.Connect(func(app any) error { got = append(got, 2); apps = append(apps, app); return nil })

	payload := struct{ name string }{"app"}
	if err := s.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("receivers out of order: %v", got)
	}
	for _, a := range apps {
		if a != any(payload) {
			t.Fatalf("payload not broadcast: %v", a)
		}
	}
}

func TestSend_ErrorPropagatesAndStops(t *testing.T) {
	s := New("transaction_stop")
	boom := errors.New("observer failed")
	var reached bool
	s.Connect(func(any) error { return boom })
	s.Connect(func(any) error { reached = true; return nil })

	if err := s.Send(nil); !errors.Is(err, boom) {
		t.Fatalf("expected observer error, got %v", err)
	}
	if reached {
		t.Fatal("receiver after failing observer must not run")
	}
}

func TestSend_NoReceivers(t *testing.T) {
	if err := New("empty").Send(nil); err != nil {
		t.Fatalf("empty signal: %v", err)
	}
}
