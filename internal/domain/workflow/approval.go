package workflow

// NewApprovalMachine builds the order-approval lifecycle machine positioned
// at the given state. Terminal states have no outgoing transitions, so a
// vendor accept racing a user cancel loses cleanly: whichever transition
// commits first wins and the other gets ErrInvalidTransition.
func NewApprovalMachine(current State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StatePendingApproval).
		Permit(TriggerAccept, StateInProgress).
		Permit(TriggerDeny, StateDenied).
		Permit(TriggerCancel, StateCancelled).
		Permit(TriggerExpire, StateExpired)

	builder.Configure(StateInProgress).
		Permit(TriggerMarkReady, StateReadyForPickup).
		Permit(TriggerComplete, StateCompleted)

	builder.Configure(StateReadyForPickup).
		Permit(TriggerComplete, StateCompleted)

	return builder.Build(current)
}
