package application

// TransitionEvent names an action that touches an appointment's status.
type TransitionEvent string

const (
	// EventSetStatus is a direct status update by clinic staff. The target
	// status is taken verbatim with no transition guard.
	EventSetStatus TransitionEvent = "set_status"
	// EventReschedule is a reschedule of the appointment's date and time.
	EventReschedule TransitionEvent = "reschedule"
	// EventRecordFiled is the filing of a medical record against the appointment.
	EventRecordFiled TransitionEvent = "record_filed"
)

// Advance computes the status an appointment moves to when an event occurs.
// The lifecycle is deliberately asymmetric: rescheduling always forces
// rescheduled, even from cancelled; filing a record advances a pending
// appointment to confirmed and leaves every other state untouched; a direct
// staff update sets any of the four states with no guard. Callers validate
// target before passing it for EventSetStatus.
func Advance(current AppointmentStatus, event TransitionEvent, target AppointmentStatus) AppointmentStatus {
	switch event {
	case EventReschedule:
		return StatusRescheduled
	case EventRecordFiled:
		if current == StatusPending {
			return StatusConfirmed
		}
		return current
	case EventSetStatus:
		return target
	}
	return current
}
