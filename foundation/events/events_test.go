package events_test

import (
	"testing"

	"github.com/ardanlabs/simwallet/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan notifications out to receivers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two receivers are registered.", testID)
		{
			evts := events.NewEvents()
			ch1 := evts.Acquire("one")
			ch2 := evts.Acquire("two")

			evts.Send(events.Failure("No more blocks"))

			for i, ch := range []<-chan events.Event{ch1, ch2} {
				e := <-ch
				if e.Message != "No more blocks" {
					t.Fatalf("\t%s\tTest %d:\tShould receive the event on receiver %d: got %q", failed, testID, i, e.Message)
				}
				if e.Color != events.ColorFailure {
					t.Fatalf("\t%s\tTest %d:\tShould get the failure color: got %q", failed, testID, e.Color)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould receive the event on every receiver.", success, testID)

			if err := evts.Release("one"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to release a receiver: %s", failed, testID, err)
			}
			if _, open := <-ch1; open {
				t.Fatalf("\t%s\tTest %d:\tShould close the released channel.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to release a receiver.", success, testID)

			if err := evts.Release("one"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not release an unknown receiver.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not release an unknown receiver.", success, testID)

			evts.Shutdown()
			if _, open := <-ch2; open {
				t.Fatalf("\t%s\tTest %d:\tShould close every channel on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel on shutdown.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a receiver is not draining its channel.", testID)
		{
			evts := events.NewEvents()
			evts.Acquire("slow")

			for i := 0; i < 500; i++ {
				evts.Send(events.Info("Opened explorer", events.ColorInfo))
			}
			t.Logf("\t%s\tTest %d:\tShould not block the sender.", success, testID)
		}
	}
}

func TestRecorder(t *testing.T) {
	t.Log("Given the need to record notifications.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen recording a set of events.", testID)
		{
			var rec events.Recorder
			var n events.Notifier = &rec

			n.Notify(events.Failure("No more blocks"))
			n.Notify(events.Success("Block mined successfully", events.ColorMined))
			n.Notify(events.Failure("No more blocks"))

			if got := rec.Count("No more blocks"); got != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould count the repeated message: got %d", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould count the repeated message.", success, testID)

			msgs := rec.Messages()
			if len(msgs) != 3 || msgs[1] != "Block mined successfully" {
				t.Fatalf("\t%s\tTest %d:\tShould keep the events in order: %v", failed, testID, msgs)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the events in order.", success, testID)

			rec.Reset()
			if len(rec.Events()) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould drop the events on reset.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould drop the events on reset.", success, testID)
		}
	}
}
