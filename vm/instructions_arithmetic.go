package vm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

func opAdd(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.Add(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opMul(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.Mul(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opSub(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.Sub(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opDiv(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.Div(&a, &b) // uint256.Div returns 0 when b == 0
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opSdiv(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.SDiv(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opMod(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.Mod(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opSmod(ip *Interpreter) error {
	a, b := ip.Stack.Pop2()
	var r types.Word
	r.SMod(&a, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opAddmod(ip *Interpreter) error {
	a, b, n := ip.Stack.Pop3()
	var r types.Word
	r.AddMod(&a, &b, &n)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opMulmod(ip *Interpreter) error {
	a, b, n := ip.Stack.Pop3()
	var r types.Word
	r.MulMod(&a, &b, &n)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func opExp(ip *Interpreter) error {
	base, exp := ip.Stack.Pop2()
	var r types.Word
	r.Exp(&base, &exp)
	ip.Stack.PushUnchecked(&r)
	return nil
}

func gasExp(ip *Interpreter) (uint64, error) {
	exp := ip.Stack.Back(1)
	byteLen := uint64(32 - leadingZeroBytes(exp))
	perByte := gas.ExpByte
	if ip.SpecID < Spurious {
		perByte = gas.ExpByteLegacy
	}
	return byteLen * perByte, nil
}

func leadingZeroBytes(w *types.Word) int {
	b := w.Bytes32()
	n := 0
	for _, c := range b {
		if c != 0 {
			break
		}
		n++
	}
	return n
}

func opSignExtend(ip *Interpreter) error {
	b, x := ip.Stack.Pop2()
	var r types.Word
	r.ExtendSign(&x, &b)
	ip.Stack.PushUnchecked(&r)
	return nil
}
