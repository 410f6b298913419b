package fwsm

import "strconv"

// ErrCode is the error channel of a Descriptor. Configuration, derivation and
// execution failures are recorded in it instead of being returned, so a
// descriptor is always left in an inspectable state.
//
// ErrCode implements error, which lets hosts write errors.Is(d.Err(), fwsm.ErrWrongNumActions).
type ErrCode uint8

const (
	// ErrNone means the descriptor is healthy.
	ErrNone ErrCode = iota
	// ErrWrongNumActions is set by InitDer when the candidate and base declare
	// a different number of action slots.
	ErrWrongNumActions
	// ErrWrongNumGuards is set by InitDer when the candidate and base declare
	// a different number of guard slots.
	ErrWrongNumGuards
	// ErrNotOwner is set by Init on a descriptor that does not own its table.
	ErrNotOwner
	// ErrNoTable means the descriptor is not bound to any table.
	ErrNoTable
	ErrIllStateID
	ErrIllChoiceID
	ErrStateIDInUse
	ErrChoiceIDInUse
	ErrUndefinedTransSrc
	ErrIllTransSrc
	ErrTooManyTrans
	ErrTooManyOutTrans
	ErrNegOutTrans
	ErrIllSlot
	ErrNotComposite
	ErrConfigLocked
	ErrNotDerived
	ErrNullState
	ErrNullChoice
	ErrNullTrans
	ErrIllTransDest
	// ErrUnboundAction means an action slot referenced by the table holds no action.
	ErrUnboundAction
	// ErrUnboundGuard means a guard slot referenced by the table holds no guard.
	ErrUnboundGuard
	// ErrTransErr means a choice pseudo-state was entered and none of its
	// outgoing transitions was enabled.
	ErrTransErr
	// ErrReentrant means a transition command was issued from inside an action
	// of the same descriptor while it was still running to completion.
	ErrReentrant
	// ErrEsmError means an embedded machine failed its check.
	ErrEsmError
	// ErrSnapshotMismatch means a snapshot does not fit the descriptor it is
	// restored into.
	ErrSnapshotMismatch
)

var errCodeNames = [...]string{
	ErrNone:              "no error",
	ErrWrongNumActions:   "wrong number of actions",
	ErrWrongNumGuards:    "wrong number of guards",
	ErrNotOwner:          "descriptor does not own its table",
	ErrNoTable:           "descriptor has no table",
	ErrIllStateID:        "illegal state identifier",
	ErrIllChoiceID:       "illegal choice identifier",
	ErrStateIDInUse:      "state identifier already in use",
	ErrChoiceIDInUse:     "choice identifier already in use",
	ErrUndefinedTransSrc: "transition source not yet defined",
	ErrIllTransSrc:       "illegal transition source",
	ErrTooManyTrans:      "too many transitions",
	ErrTooManyOutTrans:   "too many outgoing transitions",
	ErrNegOutTrans:       "negative or zero number of outgoing transitions",
	ErrIllSlot:           "slot index out of range",
	ErrNotComposite:      "state is not composite",
	ErrConfigLocked:      "descriptor can no longer be configured",
	ErrNotDerived:        "descriptor is not derived",
	ErrNullState:         "state not defined",
	ErrNullChoice:        "choice not defined",
	ErrNullTrans:         "transition not defined",
	ErrIllTransDest:      "illegal transition destination",
	ErrUnboundAction:     "unbound action slot",
	ErrUnboundGuard:      "unbound guard slot",
	ErrTransErr:          "no enabled transition out of choice",
	ErrReentrant:         "re-entrant transition command",
	ErrEsmError:          "embedded machine error",
	ErrSnapshotMismatch:  "snapshot does not fit descriptor",
}

func (c ErrCode) String() string {
	if int(c) < len(errCodeNames) {
		return errCodeNames[c]
	}
	return "ErrCode(" + strconv.Itoa(int(c)) + ")"
}

func (c ErrCode) Error() string {
	return "fwsm: " + c.String()
}
