package vm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

func opPop(ip *Interpreter) error {
	ip.Stack.Pop()
	return nil
}

func opMload(ip *Interpreter) error {
	top := ip.Stack.Peek()
	off := top.Uint64()
	*top = *ip.Memory.Word(off)
	return nil
}

func memMload(ip *Interpreter) (uint64, bool) {
	offset := ip.Stack.Back(0)
	return memRange(offset, types.WordFromUint64(32))
}

func opMstore(ip *Interpreter) error {
	offset, val := ip.Stack.Pop2()
	ip.Memory.SetWord(offset.Uint64(), &val)
	return nil
}

func memMstore(ip *Interpreter) (uint64, bool) {
	offset := ip.Stack.Back(0)
	return memRange(offset, types.WordFromUint64(32))
}

func opMstore8(ip *Interpreter) error {
	offset, val := ip.Stack.Pop2()
	ip.Memory.SetByte(offset.Uint64(), byte(val.Uint64()))
	return nil
}

func memMstore8(ip *Interpreter) (uint64, bool) {
	offset := ip.Stack.Back(0)
	return memRange(offset, types.WordFromUint64(1))
}

func opMsize(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(uint64(ip.Memory.Len())))
	return nil
}

func opGas(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(ip.Gas.Available()))
	return nil
}

func opPc(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(ip.PC))
	return nil
}

func opJumpdest(ip *Interpreter) error { return nil }

func makePush(n int) executionFunc {
	return func(ip *Interpreter) error {
		data := ip.Contract.Code.Slice(ip.PC+1, uint64(n))
		var w types.Word
		w.SetBytes(data)
		ip.Stack.PushUnchecked(&w)
		ip.PC += uint64(n) + 1
		return nil
	}
}

func opPush0(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.NewWord())
	return nil
}

func makeDup(n int) executionFunc {
	return func(ip *Interpreter) error {
		ip.Stack.Dup(n)
		return nil
	}
}

func makeSwap(n int) executionFunc {
	return func(ip *Interpreter) error {
		ip.Stack.Swap(n)
		return nil
	}
}

func opMcopy(ip *Interpreter) error {
	dst, src, size := ip.Stack.Pop3()
	ip.Memory.Copy(dst.Uint64(), src.Uint64(), size.Uint64())
	return nil
}

func memMcopy(ip *Interpreter) (uint64, bool) {
	dst := ip.Stack.Back(0)
	src := ip.Stack.Back(1)
	size := ip.Stack.Back(2)
	a, _ := memRange(dst, size)
	b, _ := memRange(src, size)
	if b > a {
		a = b
	}
	return a, !size.IsZero()
}

func gasMcopy(ip *Interpreter) (uint64, error) {
	size := ip.Stack.Back(2)
	words := (size.Uint64() + 31) / 32
	return words * gas.Copy, nil
}
