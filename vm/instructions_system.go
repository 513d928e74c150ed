package vm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

// callArgs holds the common shape shared by CALL/CALLCODE/DELEGATECALL/
// STATICCALL after popping their stack arguments.
type callArgs struct {
	gasWanted  types.Word
	target     types.Address
	value      *types.Word // nil for DELEGATECALL
	argsOffset types.Word
	argsSize   types.Word
	retOffset  types.Word
	retSize    types.Word
}

func popCallArgsWithValue(ip *Interpreter) callArgs {
	g, to, value, argsOff, argsSize, retOff, retSize := ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop()
	return callArgs{
		gasWanted: g, target: types.BytesToAddress(to.Bytes()), value: &value,
		argsOffset: argsOff, argsSize: argsSize, retOffset: retOff, retSize: retSize,
	}
}

func popCallArgsNoValue(ip *Interpreter) callArgs {
	g, to, argsOff, argsSize, retOff, retSize := ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop()
	return callArgs{
		gasWanted: g, target: types.BytesToAddress(to.Bytes()),
		argsOffset: argsOff, argsSize: argsSize, retOffset: retOff, retSize: retSize,
	}
}

func memCall(ip *Interpreter) (uint64, bool) {
	argsOff, argsSize := ip.Stack.Back(3), ip.Stack.Back(4)
	retOff, retSize := ip.Stack.Back(5), ip.Stack.Back(6)
	a, _ := memRange(argsOff, argsSize)
	b, _ := memRange(retOff, retSize)
	if b > a {
		a = b
	}
	return a, true
}

func memCallNoValue(ip *Interpreter) (uint64, bool) {
	argsOff, argsSize := ip.Stack.Back(2), ip.Stack.Back(3)
	retOff, retSize := ip.Stack.Back(4), ip.Stack.Back(5)
	a, _ := memRange(argsOff, argsSize)
	b, _ := memRange(retOff, retSize)
	if b > a {
		a = b
	}
	return a, true
}

// callGasAndStash implements spec.md §4.5's CALL gas computation, charging
// the base+value+new-account surcharge immediately and stashing the
// EIP-150-capped forwarded amount on ip.callGasTemp for the execute
// function to read. The base cost follows the active fork: a flat 40
// before TANGERINE, 700 through BERLIN-1, then EIP-2929 warm/cold.
func callGasAndStash(ip *Interpreter, target types.Address, value *types.Word, requested *types.Word, chargeValue, chargeNewAccount bool) (uint64, error) {
	isCold, isNew := ip.Host.LoadAccount(target)
	var base uint64
	switch {
	case ip.SpecID >= Berlin:
		base = gas.CallWarm
		if isCold {
			base = gas.CallCold
		}
	case ip.SpecID >= Tangerine:
		base = gas.CallBaseTangerine
	default:
		base = gas.CallBaseFrontier
	}
	hasValue := value != nil && !value.IsZero()
	if hasValue && chargeValue {
		base += gas.CallValueTransfer
	}
	if chargeNewAccount && isNew {
		// EIP-161 narrowed the surcharge to value-bearing calls.
		if ip.SpecID < Spurious || hasValue {
			base += gas.CallNewAccount
		}
	}

	avail := ip.Gas.Available()
	if base > avail {
		return base, nil // Charge() in the caller will surface OutOfGas
	}
	if ip.SpecID < Tangerine {
		// Pre-EIP-150 the requested amount is forwarded as-is and must be
		// affordable in full.
		if !requested.IsUint64() {
			return ^uint64(0), nil
		}
		ip.callGasTemp = requested.Uint64()
		return base + requested.Uint64(), nil
	}
	forwarded := gas.CallGasEIP150(avail-base, requested.Uint64())
	if !requested.IsUint64() {
		forwarded = avail - base - (avail-base)/gas.CallGasFraction
	}
	ip.callGasTemp = forwarded
	return base + forwarded, nil
}

func gasCall(ip *Interpreter) (uint64, error) {
	target := types.BytesToAddress(ip.Stack.Back(1).Bytes())
	value := ip.Stack.Back(2)
	requested := ip.Stack.Back(0)
	return callGasAndStash(ip, target, value, requested, true, true)
}

func gasCallCode(ip *Interpreter) (uint64, error) {
	target := types.BytesToAddress(ip.Stack.Back(1).Bytes())
	value := ip.Stack.Back(2)
	requested := ip.Stack.Back(0)
	return callGasAndStash(ip, target, value, requested, true, false)
}

func gasDelegateCall(ip *Interpreter) (uint64, error) {
	target := types.BytesToAddress(ip.Stack.Back(1).Bytes())
	requested := ip.Stack.Back(0)
	return callGasAndStash(ip, target, nil, requested, false, false)
}

func gasStaticCall(ip *Interpreter) (uint64, error) {
	target := types.BytesToAddress(ip.Stack.Back(1).Bytes())
	requested := ip.Stack.Back(0)
	return callGasAndStash(ip, target, nil, requested, false, false)
}

func suspendWithCall(ip *Interpreter, action *CallAction) error {
	ip.Status = StatusCallOrCreate
	ip.NextAction = NextAction{Kind: ActionCall, Call: action}
	return nil
}

func opCall(ip *Interpreter) error {
	args := popCallArgsWithValue(ip)
	if ip.IsStatic && !args.value.IsZero() {
		return ErrWriteProtection
	}
	input := ip.Memory.Get(args.argsOffset.Uint64(), args.argsSize.Uint64())
	forwarded := ip.callGasTemp
	if !args.value.IsZero() {
		forwarded += gas.CallStipend
	}
	return suspendWithCall(ip, &CallAction{
		Value:           CallValue{Kind: ValueTransfer, Amount: args.value},
		Input:           input,
		Caller:          ip.Contract.Address,
		GasLimit:        forwarded,
		CodeAddress:     args.target,
		TargetAddress:   args.target,
		Scheme:          SchemeCall,
		IsStatic:        ip.IsStatic,
		ReturnMemOffset: args.retOffset.Uint64(),
		ReturnMemSize:   args.retSize.Uint64(),
	})
}

func opCallCode(ip *Interpreter) error {
	args := popCallArgsWithValue(ip)
	input := ip.Memory.Get(args.argsOffset.Uint64(), args.argsSize.Uint64())
	forwarded := ip.callGasTemp
	if !args.value.IsZero() {
		forwarded += gas.CallStipend
	}
	return suspendWithCall(ip, &CallAction{
		Value:           CallValue{Kind: ValueTransfer, Amount: args.value},
		Input:           input,
		Caller:          ip.Contract.Address,
		GasLimit:        forwarded,
		CodeAddress:     args.target,
		TargetAddress:   ip.Contract.Address, // CALLCODE keeps the parent's target
		Scheme:          SchemeCallCode,
		IsStatic:        ip.IsStatic,
		ReturnMemOffset: args.retOffset.Uint64(),
		ReturnMemSize:   args.retSize.Uint64(),
	})
}

func opDelegateCall(ip *Interpreter) error {
	args := popCallArgsNoValue(ip)
	input := ip.Memory.Get(args.argsOffset.Uint64(), args.argsSize.Uint64())
	return suspendWithCall(ip, &CallAction{
		Value:           CallValue{Kind: ValueLimbo, Amount: ip.Contract.Value},
		Input:           input,
		Caller:          ip.Contract.CallerAddress, // preserves parent's caller
		GasLimit:        ip.callGasTemp,
		CodeAddress:     args.target,
		TargetAddress:   ip.Contract.Address,
		Scheme:          SchemeDelegateCall,
		IsStatic:        ip.IsStatic,
		ReturnMemOffset: args.retOffset.Uint64(),
		ReturnMemSize:   args.retSize.Uint64(),
	})
}

func opStaticCall(ip *Interpreter) error {
	args := popCallArgsNoValue(ip)
	input := ip.Memory.Get(args.argsOffset.Uint64(), args.argsSize.Uint64())
	zero := types.NewWord()
	return suspendWithCall(ip, &CallAction{
		Value:           CallValue{Kind: ValueTransfer, Amount: zero},
		Input:           input,
		Caller:          ip.Contract.Address,
		GasLimit:        ip.callGasTemp,
		CodeAddress:     args.target,
		TargetAddress:   args.target,
		Scheme:          SchemeStaticCall,
		IsStatic:        true,
		ReturnMemOffset: args.retOffset.Uint64(),
		ReturnMemSize:   args.retSize.Uint64(),
	})
}

// --- CREATE / CREATE2 ---

func gasCreate(ip *Interpreter) (uint64, error) {
	avail := ip.Gas.Available()
	if ip.SpecID >= Tangerine {
		ip.callGasTemp = avail - avail/gas.CallGasFraction
	} else {
		ip.callGasTemp = avail
	}
	return ip.callGasTemp, nil
}

func gasCreate2(ip *Interpreter) (uint64, error) {
	size := ip.Stack.Back(2)
	words := (size.Uint64() + 31) / 32
	avail := ip.Gas.Available()
	wordCost := words * gas.Keccak256Word
	if wordCost > avail {
		return wordCost, nil
	}
	ip.callGasTemp = (avail - wordCost) - (avail-wordCost)/gas.CallGasFraction
	return wordCost + ip.callGasTemp, nil
}

func opCreate(ip *Interpreter) error {
	if ip.IsStatic {
		return ErrWriteProtection
	}
	value, offset, size := ip.Stack.Pop3()
	if limit, enforced := MaxInitCodeSize(ip.SpecID); enforced && size.Uint64() > limit {
		return ErrCreateCodeSizeLimit
	}
	initCode := ip.Memory.Get(offset.Uint64(), size.Uint64())
	ip.Status = StatusCallOrCreate
	ip.NextAction = NextAction{Kind: ActionCreate, Create: &CreateAction{
		Value: &value, InitCode: initCode, Caller: ip.Contract.Address,
		GasLimit: ip.callGasTemp, Scheme: SchemeCreate,
	}}
	return nil
}

func opCreate2(ip *Interpreter) error {
	if ip.IsStatic {
		return ErrWriteProtection
	}
	value, offset, size, salt := ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop()
	if limit, enforced := MaxInitCodeSize(ip.SpecID); enforced && size.Uint64() > limit {
		return ErrCreateCodeSizeLimit
	}
	initCode := ip.Memory.Get(offset.Uint64(), size.Uint64())
	ip.Status = StatusCallOrCreate
	ip.NextAction = NextAction{Kind: ActionCreate, Create: &CreateAction{
		Value: &value, InitCode: initCode, Caller: ip.Contract.Address,
		GasLimit: ip.callGasTemp, Scheme: SchemeCreate2, Salt: &salt,
	}}
	return nil
}
