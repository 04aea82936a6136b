package application

import "testing"

func TestAdvance(t *testing.T) {
	t.Parallel()

	t.Run("reschedule forces rescheduled from every state", func(t *testing.T) {
		t.Parallel()

		for _, current := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusRescheduled, StatusCancelled} {
			if got := Advance(current, EventReschedule, ""); got != StatusRescheduled {
				t.Fatalf("Advance(%s, reschedule) = %s, want rescheduled", current, got)
			}
		}
	})

	t.Run("record filing confirms only pending appointments", func(t *testing.T) {
		t.Parallel()

		cases := map[AppointmentStatus]AppointmentStatus{
			StatusPending:     StatusConfirmed,
			StatusConfirmed:   StatusConfirmed,
			StatusRescheduled: StatusRescheduled,
			StatusCancelled:   StatusCancelled,
		}
		for current, want := range cases {
			if got := Advance(current, EventRecordFiled, ""); got != want {
				t.Fatalf("Advance(%s, record_filed) = %s, want %s", current, got, want)
			}
		}
	})

	t.Run("direct status update has no guard", func(t *testing.T) {
		t.Parallel()

		if got := Advance(StatusCancelled, EventSetStatus, StatusConfirmed); got != StatusConfirmed {
			t.Fatalf("Advance(cancelled, set_status, confirmed) = %s, want confirmed", got)
		}
		if got := Advance(StatusConfirmed, EventSetStatus, StatusPending); got != StatusPending {
			t.Fatalf("expected target to win, got %s", got)
		}
	})

	t.Run("unknown event leaves status untouched", func(t *testing.T) {
		t.Parallel()

		if got := Advance(StatusConfirmed, TransitionEvent("unknown"), StatusCancelled); got != StatusConfirmed {
			t.Fatalf("expected confirmed, got %s", got)
		}
	})
}
