package vm

import "github.com/coreevm/coreevm/types"

func pushBool(ip *Interpreter, v bool) {
	var r types.Word
	if v {
		r.SetOne()
	}
	ip.Stack.PushUnchecked(&r)
}

func opLt(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	pushBool(ip, a.Lt(&b))
	return nil
}

func opGt(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	pushBool(ip, a.Gt(&b))
	return nil
}

func opSlt(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	pushBool(ip, a.Slt(&b))
	return nil
}

func opSgt(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	pushBool(ip, a.Sgt(&b))
	return nil
}

func opEq(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	pushBool(ip, a.Eq(&b))
	return nil
}

func opIsZero(ip *Interpreter) error {
	top := ip.Stack.Peek()
	isZero := top.IsZero()
	top.Clear()
	if isZero {
		top.SetOne()
	}
	return nil
}

func opAnd(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.And(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opOr(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.Or(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opXor(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.Xor(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opNot(ip *Interpreter) error {
	top := ip.Stack.Peek()
	top.Not(top)
	return nil
}

func opByte(ip *Interpreter) error {
	i, x := ip.Stack.Pop2()
	x.Byte(&i)
	ip.Stack.PushUnchecked(&x)
	return nil
}

func opShl(ip *Interpreter) error {
	shift, val := ip.Stack.Pop2()
	var r types.Word
	if shift.LtUint64(256) {
		r.Lsh(&val, uint(shift.Uint64()))
	}
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opShr(ip *Interpreter) error {
	shift, val := ip.Stack.Pop2()
	var r types.Word
	if shift.LtUint64(256) {
		r.Rsh(&val, uint(shift.Uint64()))
	}
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opSar(ip *Interpreter) error {
	shift, val := ip.Stack.Pop2()
	var r types.Word
	if shift.GtUint64(255) {
		if val.Sign() >= 0 {
			r.Clear()
		} else {
			r.SetAllOne()
		}
	} else {
		r.SRsh(&val, uint(shift.Uint64()))
	}
	ip.Stack.PushUnchecked(&r)
	return nil
}
