package vm

import (
	"github.com/coreevm/coreevm/gas"
	"github.com/coreevm/coreevm/types"
)

// EIP-2929 dynamic access pricing (BERLIN+). Charging goes through the
// Host so the warm-marking journals alongside it and unwinds on revert.

func gasAccountAccessEIP2929(ip *Interpreter) (uint64, error) {
	addr := types.BytesToAddress(ip.Stack.Back(0).Bytes())
	isCold, _ := ip.Host.LoadAccount(addr)
	if isCold {
		return gas.ColdAccountAccess, nil
	}
	return gas.WarmAccess, nil
}

func gasExtCodeCopyEIP2929(ip *Interpreter) (uint64, error) {
	addr := types.BytesToAddress(ip.Stack.Back(0).Bytes())
	size := ip.Stack.Back(3)
	words := (size.Uint64() + 31) / 32
	cost := words * gas.Copy
	isCold, _ := ip.Host.LoadAccount(addr)
	if isCold {
		return cost + gas.ColdAccountAccess, nil
	}
	return cost + gas.WarmAccess, nil
}

func gasSloadEIP2929(ip *Interpreter) (uint64, error) {
	key := types.WordToHash(ip.Stack.Back(0))
	_, wasCold := ip.Host.SLoad(ip.Contract.Address, key)
	if wasCold {
		return gas.SloadCold, nil
	}
	return gas.SloadWarm, nil
}

// gasSelfdestruct covers every era in one place: free on FRONTIER, 5000
// plus a possible new-account surcharge from TANGERINE (EIP-150/161), a
// cold-access surcharge from BERLIN (EIP-2929), and a 24000 refund that
// EIP-3529 removed at LONDON.
func gasSelfdestruct(ip *Interpreter) (uint64, error) {
	var cost uint64
	beneficiary := types.BytesToAddress(ip.Stack.Back(0).Bytes())
	if ip.SpecID >= Tangerine {
		cost = gas.Selfdestruct
		isCold, isNew := ip.Host.LoadAccount(beneficiary)
		if ip.SpecID >= Berlin && isCold {
			cost += gas.ColdAccountAccess
		}
		if ip.SpecID >= Spurious {
			// EIP-161: the surcharge applies only when a balance would
			// actually bring a dead account to life.
			bal, _ := ip.Host.Balance(ip.Contract.Address)
			if isNew && bal != nil && !bal.IsZero() {
				cost += gas.CallNewAccount
			}
		} else if isNew {
			cost += gas.CallNewAccount
		}
	}
	if ip.SpecID < London && !ip.Host.HasSelfDestructed(ip.Contract.Address) {
		ip.Host.AddRefund(int64(gas.SelfdestructRefund))
	}
	return cost, nil
}
