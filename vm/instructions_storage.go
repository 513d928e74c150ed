package vm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

func opSload(ip *Interpreter) error {
	top := ip.Stack.Peek()
	key := types.WordToHash(top)
	val, _ := ip.Host.SLoad(ip.Contract.Address, key)
	*top = val
	return nil
}

// opSstore applies the write itself; the gas charge was already taken by
// the active dynamicGas function below, and the refund side of the
// EIP-2200/3529 table is applied inside Host.SStore so it journals
// correctly under a sub-call revert.
func opSstore(ip *Interpreter) error {
	keyW, newVal := ip.Stack.Pop2()
	key := types.WordToHash(&keyW)
	_, err := ip.Host.SStore(ip.Contract.Address, key, &newVal)
	return err
}

// gasSstoreLegacy implements the flat FRONTIER..PETERSBURG SSTORE pricing:
// 20000 from zero to non-zero, 5000 otherwise. The 15000 clear refund is
// applied by Host.SStore (state.RefundPolicyLegacy).
func gasSstoreLegacy(ip *Interpreter) (uint64, error) {
	keyW := ip.Stack.Back(0)
	newVal := ip.Stack.Back(1)
	key := types.WordToHash(keyW)
	present, _ := ip.Host.SLoad(ip.Contract.Address, key)

	if present.IsZero() && !newVal.IsZero() {
		return gas.SstoreSet, nil
	}
	return gas.SstoreResetLegacy, nil
}

// gasSstoreEIP2200 implements the ISTANBUL sentry-guarded SSTORE pricing
// (EIP-2200), before EIP-3529 rewrote the refund table and BERLIN added
// cold-access surcharges.
func gasSstoreEIP2200(ip *Interpreter) (uint64, error) {
	if ip.Gas.Available() <= gas.SentrySstore {
		return 0, &outOfGasSentry{}
	}
	return sstoreCost(ip, false)
}

// gasSstoreEIP3529 is the BERLIN+ SSTORE pricing, adding the EIP-2929
// cold-access surcharge; the refund side follows EIP-3529's reduced table
// from LONDON onward (selected by the Host's RefundPolicy, not here).
func gasSstoreEIP3529(ip *Interpreter) (uint64, error) {
	if ip.Gas.Available() <= gas.SentrySstore {
		return 0, &outOfGasSentry{}
	}
	return sstoreCost(ip, true)
}

type outOfGasSentry struct{}

func (e *outOfGasSentry) Error() string { return "out of gas: sstore sentry (EIP-2200)" }

// sstoreCost computes only the gas *charge* for spec.md §4.8's table
// (original/present/new classification plus, from BERLIN on, the cold
// surcharge); the refund delta is computed and applied separately by
// Host.SStore once the write actually happens.
func sstoreCost(ip *Interpreter, coldPricing bool) (uint64, error) {
	keyW := ip.Stack.Back(0)
	newVal := ip.Stack.Back(1)
	key := types.WordToHash(keyW)

	present, wasCold := ip.Host.SLoad(ip.Contract.Address, key)
	original := ip.Host.SLoadOriginal(ip.Contract.Address, key)

	readCost := gas.SloadIstanbul
	resetCost := gas.SstoreResetLegacy
	if coldPricing {
		readCost = gas.SloadWarm
		resetCost = gas.SstoreReset
	}

	cost := uint64(0)
	if coldPricing && wasCold {
		cost += gas.SloadCold
	}

	switch {
	case present.Eq(newVal):
		cost += readCost
	case original.Eq(&present):
		if original.IsZero() {
			cost += gas.SstoreSet
		} else {
			cost += resetCost
		}
	default:
		cost += readCost
	}
	return cost, nil
}

func opTload(ip *Interpreter) error {
	top := ip.Stack.Peek()
	key := types.WordToHash(top)
	*top = ip.Host.TLoad(ip.Contract.Address, key)
	return nil
}

func opTstore(ip *Interpreter) error {
	keyW, val := ip.Stack.Pop2()
	key := types.WordToHash(&keyW)
	ip.Host.TStore(ip.Contract.Address, key, &val)
	return nil
}
