package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendingApproval, false},
		{StateInProgress, false},
		{StateReadyForPickup, false},
		{StateCompleted, true},
		{StateDenied, true},
		{StateCancelled, true},
		{StateExpired, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePendingApproval, true},
		{"completed", StateCompleted, true},
		{"unknown", State("paymentPending"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingApproval).
		Permit(TriggerAccept, StateInProgress)

	machine := builder.Build(StatePendingApproval)

	if !machine.CanFire(TriggerAccept) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	if err := machine.Fire(context.Background(), TriggerAccept); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StateInProgress {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateInProgress)
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingApproval).
		PermitIf(TriggerAccept, StateInProgress, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(StatePendingApproval)

	err := machine.Fire(context.Background(), TriggerAccept)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}

	if machine.State() != StatePendingApproval {
		t.Errorf("State should be unchanged after guard failure, got %v", machine.State())
	}
}

func TestApprovalMachine_Lifecycle(t *testing.T) {
	machine := NewApprovalMachine(StatePendingApproval)
	ctx := context.Background()

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerAccept, StateInProgress},
		{TriggerMarkReady, StateReadyForPickup},
		{TriggerComplete, StateCompleted},
	}

	for _, step := range steps {
		if err := machine.Fire(ctx, step.trigger); err != nil {
			t.Fatalf("Fire(%s) failed: %v", step.trigger, err)
		}
		if machine.State() != step.want {
			t.Fatalf("State after %s = %v, want %v", step.trigger, machine.State(), step.want)
		}
	}
}

func TestApprovalMachine_AcceptAfterCancelRejected(t *testing.T) {
	machine := NewApprovalMachine(StatePendingApproval)
	ctx := context.Background()

	if err := machine.Fire(ctx, TriggerCancel); err != nil {
		t.Fatalf("Fire(CANCEL) failed: %v", err)
	}

	err := machine.Fire(ctx, TriggerAccept)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(ACCEPT) after cancel = %v, want ErrInvalidTransition", err)
	}

	if machine.State() != StateCancelled {
		t.Errorf("State = %v, want %v", machine.State(), StateCancelled)
	}
}

func TestApprovalMachine_TerminalStatesPermitNothing(t *testing.T) {
	for _, state := range []State{StateCompleted, StateDenied, StateCancelled, StateExpired} {
		t.Run(string(state), func(t *testing.T) {
			machine := NewApprovalMachine(state)
			if triggers := machine.PermittedTriggers(); len(triggers) != 0 {
				t.Errorf("PermittedTriggers() = %v, want none", triggers)
			}
		})
	}
}
