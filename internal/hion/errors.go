package hion

import "fmt"

// InvalidProcessError signals that final-state generation was dispatched on
// a process type the action variant does not implement, or that a builder
// received the wrong outgoing multiplicity. It is not retried.
type InvalidProcessError struct {
	Type   ProcessType
	Reason string
}

func (e *InvalidProcessError) Error() string {
	return fmt.Sprintf("invalid process type %s: %s", e.Type, e.Reason)
}

// ResonanceFormationError signals that mass sampling discovered the
// available energy is below the kinematic threshold. A correctly admitted
// channel can never hit this, so it surfaces as a hard failure.
type ResonanceFormationError struct {
	Reaction  string
	Available float64
	Threshold float64
}

func (e *ResonanceFormationError) Error() string {
	return fmt.Sprintf("%s: not enough energy, %g < %g",
		e.Reaction, e.Available, e.Threshold)
}

// ConservationError signals that the quantum-number ledgers before and after
// an action disagree beyond tolerance for a process class that does not
// tolerate it.
type ConservationError struct {
	IDProcess uint32
	Report    string
}

func (e *ConservationError) Error() string {
	if e.IDProcess == IDProcessForced {
		return "conservation laws violated in forced process: " + e.Report
	}
	return fmt.Sprintf("conservation laws violated in process %d: %s",
		e.IDProcess, e.Report)
}
