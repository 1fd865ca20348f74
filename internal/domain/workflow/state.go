package workflow

// State represents an order's position in the vendor-approval lifecycle.
// State values are the wire status strings of the order-approval contract.
type State string

const (
	StatePendingApproval State = "pendingVendorApproval"
	StateInProgress      State = "inProgress"
	StateReadyForPickup  State = "readyForPickup"
	StateCompleted       State = "completed"
	StateDenied          State = "denied"
	StateCancelled       State = "cancelled"
	StateExpired         State = "expired"
)

var validStates = map[State]bool{
	StatePendingApproval: true,
	StateInProgress:      true,
	StateReadyForPickup:  true,
	StateCompleted:       true,
	StateDenied:          true,
	StateCancelled:       true,
	StateExpired:         true,
}

var terminalStates = map[State]bool{
	StateCompleted: true,
	StateDenied:    true,
	StateCancelled: true,
	StateExpired:   true,
}

// IsTerminal returns true if no trigger can move the order out of this state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is part of the approval lifecycle.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the wire status string.
func (s State) String() string {
	return string(s)
}
