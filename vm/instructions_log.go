package vm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

func makeLog(numTopics int) executionFunc {
	return func(ip *Interpreter) error {
		offset := ip.Stack.Pop()
		size := ip.Stack.Pop()
		topics := make([]types.Hash, numTopics)
		for i := 0; i < numTopics; i++ {
			w := ip.Stack.Pop()
			topics[i] = types.WordToHash(&w)
		}
		data := ip.Memory.Get(offset.Uint64(), size.Uint64())
		ip.Host.Log(types.Log{
			Address: ip.Contract.Address,
			Topics:  topics,
			Data:    data,
		})
		return nil
	}
}

func makeGasLog(numTopics int) dynamicGasFunc {
	return func(ip *Interpreter) (uint64, error) {
		size := ip.Stack.Back(1)
		return gas.Log + gas.LogTopic*uint64(numTopics) + gas.LogData*size.Uint64(), nil
	}
}
