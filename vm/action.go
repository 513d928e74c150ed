package vm

import "github.com/coreevm/coreevm/types"

// CallScheme distinguishes CALL/CALLCODE/DELEGATECALL/STATICCALL.
type CallScheme int

const (
	SchemeCall CallScheme = iota
	SchemeCallCode
	SchemeDelegateCall
	SchemeStaticCall
)

// CreateScheme distinguishes CREATE/CREATE2.
type CreateScheme int

const (
	SchemeCreate CreateScheme = iota
	SchemeCreate2
)

// ValueKind tags how a call's value argument should be interpreted by the
// orchestrator, per spec.md §4.5.
type ValueKind int

const (
	ValueTransfer ValueKind = iota // CALL/CALLCODE/STATICCALL(0): move `Amount` from caller to target
	ValueLimbo                     // DELEGATECALL: keep the parent's existing value, no transfer
)

// CallValue pairs a ValueKind with the amount (meaningful only for
// ValueTransfer).
type CallValue struct {
	Kind   ValueKind
	Amount *types.Word
}

// CallAction is the payload of a NextAction tagged Call.
type CallAction struct {
	Value           CallValue
	Input           []byte
	Caller          types.Address
	GasLimit        uint64
	CodeAddress     types.Address // account whose code will run
	TargetAddress   types.Address // account whose storage/balance is affected
	Scheme          CallScheme
	IsStatic        bool
	ReturnMemOffset uint64
	ReturnMemSize   uint64
}

// CreateAction is the payload of a NextAction tagged Create.
type CreateAction struct {
	Value    *types.Word
	InitCode []byte
	Caller   types.Address
	GasLimit uint64
	Scheme   CreateScheme
	Salt     *types.Word // only meaningful for SchemeCreate2
}

// ReturnAction is the payload of a NextAction tagged Return: the
// interpreter's terminal status plus output bytes.
type ReturnAction struct {
	Status Status
	Output []byte
}

// ActionKind tags which field of NextAction is populated.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionCall
	ActionCreate
	ActionReturn
)

// NextAction is the interpreter's suspension payload, consumed by the
// orchestrator's call-frame loop (spec.md §4.10).
type NextAction struct {
	Kind   ActionKind
	Call   *CallAction
	Create *CreateAction
	Return *ReturnAction
}
