package vm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

func opAddress(ip *Interpreter) error {
	ip.Stack.PushUnchecked(ip.Contract.Address.Word())
	return nil
}

func opBalance(ip *Interpreter) error {
	top := ip.Stack.Peek()
	addr := types.BytesToAddress(top.Bytes())
	bal, _ := ip.Host.Balance(addr)
	if bal == nil {
		top.Clear()
		return nil
	}
	*top = *bal
	return nil
}

func opOrigin(ip *Interpreter) error {
	ip.Stack.PushUnchecked(ip.Host.TxEnv().Origin.Word())
	return nil
}

func opCaller(ip *Interpreter) error {
	ip.Stack.PushUnchecked(ip.Contract.CallerAddress.Word())
	return nil
}

func opCallValue(ip *Interpreter) error {
	ip.Stack.PushUnchecked(ip.Contract.Value)
	return nil
}

func opCallDataLoad(ip *Interpreter) error {
	top := ip.Stack.Peek()
	if !top.IsUint64() {
		top.Clear()
		return nil
	}
	return readPaddedWord(ip.Contract.Input, top.Uint64(), top)
}

func readPaddedWord(data []byte, offset uint64, dst *types.Word) error {
	var buf [32]byte
	if offset < uint64(len(data)) {
		copy(buf[:], data[offset:])
	}
	dst.SetBytes(buf[:])
	return nil
}

func opCallDataSize(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(uint64(len(ip.Contract.Input))))
	return nil
}

func opCallDataCopy(ip *Interpreter) error {
	destOffset, offset, size := ip.Stack.Pop3()
	data := paddedSlice(ip.Contract.Input, offset.Uint64(), size.Uint64())
	ip.Memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func paddedSlice(src []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset < uint64(len(src)) {
		copy(out, src[offset:])
	}
	return out
}

func opCodeSize(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(uint64(ip.Contract.Code.Len())))
	return nil
}

func opCodeCopy(ip *Interpreter) error {
	destOffset, offset, size := ip.Stack.Pop3()
	data := ip.Contract.Code.Slice(offset.Uint64(), size.Uint64())
	ip.Memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func opGasPrice(ip *Interpreter) error {
	ip.Stack.PushUnchecked(ip.Host.TxEnv().GasPrice)
	return nil
}

func opExtCodeSize(ip *Interpreter) error {
	top := ip.Stack.Peek()
	addr := types.BytesToAddress(top.Bytes())
	size, _ := ip.Host.CodeSize(addr)
	top.Clear()
	*top = *types.WordFromUint64(uint64(size))
	return nil
}

func opExtCodeCopy(ip *Interpreter) error {
	addrW, destOffset, offset, size := ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop(), ip.Stack.Pop()
	addr := types.BytesToAddress(addrW.Bytes())
	code, _ := ip.Host.Code(addr)
	bc := types.NewBytecode(code, types.Hash{})
	data := bc.Slice(offset.Uint64(), size.Uint64())
	ip.Memory.Set(destOffset.Uint64(), size.Uint64(), data)
	return nil
}

func gasExtCodeCopy(ip *Interpreter) (uint64, error) {
	size := ip.Stack.Back(3)
	words := (size.Uint64() + 31) / 32
	return words * gas.Copy, nil
}

func opReturnDataSize(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(uint64(len(ip.ReturnData))))
	return nil
}

func opReturnDataCopy(ip *Interpreter) error {
	destOffset, offset, size := ip.Stack.Pop3()
	end := offset.Uint64() + size.Uint64()
	if !offset.IsUint64() || !size.IsUint64() || end > uint64(len(ip.ReturnData)) || end < offset.Uint64() {
		return ErrInvalidOffset
	}
	ip.Memory.Set(destOffset.Uint64(), size.Uint64(), ip.ReturnData[offset.Uint64():end])
	return nil
}

func gasCopy(ip *Interpreter) (uint64, error) {
	size := ip.Stack.Back(2)
	words := (size.Uint64() + 31) / 32
	return words * gas.Copy, nil
}

// memCopy returns a memorySizeFunc reading (destOffset@offIdx, size@sizeIdx)
// from the stack (0-indexed from the top, before popping).
func memCopy(offIdx, sizeIdx int) memorySizeFunc {
	return func(ip *Interpreter) (uint64, bool) {
		destOffset := ip.Stack.Back(offIdx)
		size := ip.Stack.Back(sizeIdx)
		return memRange(destOffset, size)
	}
}

func opExtCodeHash(ip *Interpreter) error {
	top := ip.Stack.Peek()
	addr := types.BytesToAddress(top.Bytes())
	h, exists := ip.Host.CodeHash(addr)
	top.Clear()
	if exists {
		*top = *h.Word()
	}
	return nil
}

func opBlockHash(ip *Interpreter) error {
	top := ip.Stack.Peek()
	h, _ := ip.Host.BlockHash(top.Uint64())
	top.Clear()
	*top = *h.Word()
	return nil
}

func opCoinbase(ip *Interpreter) error {
	ip.Stack.PushUnchecked(ip.Host.BlockEnv().Coinbase.Word())
	return nil
}

func opTimestamp(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(ip.Host.BlockEnv().Timestamp))
	return nil
}

func opNumber(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(ip.Host.BlockEnv().Number))
	return nil
}

func opPrevRandao(ip *Interpreter) error {
	env := ip.Host.BlockEnv()
	if ip.SpecID >= Merge && env.PrevRandao != nil {
		ip.Stack.PushUnchecked(env.PrevRandao.Word())
		return nil
	}
	if env.Difficulty != nil {
		ip.Stack.PushUnchecked(env.Difficulty)
		return nil
	}
	ip.Stack.PushUnchecked(types.NewWord())
	return nil
}

func opGasLimit(ip *Interpreter) error {
	ip.Stack.PushUnchecked(types.WordFromUint64(ip.Host.BlockEnv().GasLimit))
	return nil
}

func opChainID(ip *Interpreter) error {
	ip.Stack.PushUnchecked(ip.Host.ChainID())
	return nil
}

func opSelfBalance(ip *Interpreter) error {
	bal, _ := ip.Host.Balance(ip.Contract.Address)
	if bal == nil {
		bal = types.NewWord()
	}
	ip.Stack.PushUnchecked(bal)
	return nil
}

func opBaseFee(ip *Interpreter) error {
	bf := ip.Host.BlockEnv().BaseFee
	if bf == nil {
		bf = types.NewWord()
	}
	ip.Stack.PushUnchecked(bf)
	return nil
}

func opBlobHash(ip *Interpreter) error {
	top := ip.Stack.Peek()
	inRange := top.IsUint64()
	idx := top.Uint64()
	hashes := ip.Host.TxEnv().BlobHashes
	top.Clear()
	if inRange && idx < uint64(len(hashes)) {
		*top = *hashes[idx].Word()
	}
	return nil
}

func opBlobBaseFee(ip *Interpreter) error {
	bf := ip.Host.BlockEnv().BlobBaseFee
	if bf == nil {
		bf = types.NewWord()
	}
	ip.Stack.PushUnchecked(bf)
	return nil
}
