package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerAccept    Trigger = "ACCEPT"     // vendor accepts the order
	TriggerDeny      Trigger = "DENY"       // vendor denies the order
	TriggerCancel    Trigger = "CANCEL"     // user cancels while waiting
	TriggerExpire    Trigger = "EXPIRE"     // pending past the approval ceiling
	TriggerMarkReady Trigger = "MARK_READY" // vendor finished preparing
	TriggerComplete  Trigger = "COMPLETE"   // order picked up or delivered
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
