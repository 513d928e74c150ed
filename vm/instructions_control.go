package vm

import "github.com/coreevm/coreevm/types"

func opStop(ip *Interpreter) error {
	ip.Status = StatusStopped
	return nil
}

func opJump(ip *Interpreter) error {
	dest := ip.Stack.Pop()
	if !ip.Contract.ValidJumpdest(&dest) {
		return ErrInvalidJump
	}
	ip.PC = dest.Uint64()
	return nil
}

func opJumpi(ip *Interpreter) error {
	dest, cond := ip.Stack.Pop2()
	if cond.IsZero() {
		ip.PC++
		return nil
	}
	if !ip.Contract.ValidJumpdest(&dest) {
		return ErrInvalidJump
	}
	ip.PC = dest.Uint64()
	return nil
}

func opReturn(ip *Interpreter) error {
	offset, size := ip.Stack.Pop2()
	out := ip.Memory.Get(offset.Uint64(), size.Uint64())
	ip.Status = StatusReturned
	ip.NextAction = NextAction{Kind: ActionReturn, Return: &ReturnAction{Status: StatusReturned, Output: out}}
	return nil
}

func opRevert(ip *Interpreter) error {
	offset, size := ip.Stack.Pop2()
	out := ip.Memory.Get(offset.Uint64(), size.Uint64())
	ip.NextAction = NextAction{Kind: ActionReturn, Return: &ReturnAction{Status: StatusReverted, Output: out}}
	return ErrExecutionReverted
}

func opInvalid(ip *Interpreter) error {
	return ErrInvalidOpcode
}

func opSelfDestruct(ip *Interpreter) error {
	beneficiaryW := ip.Stack.Pop()
	beneficiary := types.BytesToAddress(beneficiaryW.Bytes())
	_, err := ip.Host.SelfDestruct(ip.Contract.Address, beneficiary)
	if err != nil {
		return err
	}
	ip.Status = StatusSelfDestructed
	ip.NextAction = NextAction{Kind: ActionReturn, Return: &ReturnAction{Status: StatusSelfDestructed}}
	return nil
}
