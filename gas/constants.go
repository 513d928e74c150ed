// Package gas implements gas-tracker bookkeeping and the per-opcode,
// per-fork constant tables the interpreter charges against.
package gas

// Fixed per-opcode tiers, Yellow Paper Appendix G naming.
const (
	Zero    uint64 = 0
	Base    uint64 = 2
	VeryLow uint64 = 3
	Low     uint64 = 5
	Mid     uint64 = 8
	High    uint64 = 10
	Ext     uint64 = 20

	ColdAccountAccess uint64 = 2600 // EIP-2929 COLD_ACCOUNT_ACCESS_COST
	WarmAccess        uint64 = 100  // EIP-2929 WARM_STORAGE_READ_COST
	SloadCold         uint64 = 2100 // EIP-2929 COLD_SLOAD_COST
	SloadWarm         uint64 = 100

	// Flat account/storage access costs per pre-BERLIN era.
	BalanceFrontier  uint64 = 20
	BalanceTangerine uint64 = 400 // EIP-150
	BalanceIstanbul  uint64 = 700 // EIP-1884
	SloadFrontier    uint64 = 50
	SloadTangerine   uint64 = 200 // EIP-150
	ExtFrontier      uint64 = 20
	ExtTangerine     uint64 = 700 // EIP-150
	ExtCodeHashConstantinople uint64 = 400 // EIP-1052
	ExtCodeHashIstanbul       uint64 = 700 // EIP-1884

	SstoreSet         uint64 = 20000
	SstoreReset       uint64 = 2900  // BERLIN+: warm-only portion, cold surcharge billed separately
	SstoreResetLegacy uint64 = 5000  // pre-BERLIN flat reset cost
	SloadIstanbul     uint64 = 800   // ISTANBUL..BERLIN-1 flat SLOAD cost
	SstoreClearRefund       uint64 = 4800  // EIP-3529 R_clear, LONDON+
	SstoreClearRefundLegacy uint64 = 15000 // pre-LONDON R_clear

	Create       uint64 = 32000
	Selfdestruct uint64 = 5000  // EIP-150; free before TANGERINE
	SelfdestructRefund uint64 = 24000 // removed by EIP-3529 (LONDON)

	CallBaseFrontier  uint64 = 40
	CallBaseTangerine uint64 = 700 // EIP-150
	CallCold          uint64 = 2600
	CallWarm          uint64 = 100
	CallValueTransfer uint64 = 9000
	CallNewAccount    uint64 = 25000
	CallStipend       uint64 = 2300

	Log      uint64 = 375
	LogTopic uint64 = 375
	LogData  uint64 = 8

	Keccak256     uint64 = 30
	Keccak256Word uint64 = 6

	Memory uint64 = 3
	Copy   uint64 = 3

	JumpDest uint64 = 1
	Jump     uint64 = 8
	Jumpi    uint64 = 10

	Push0   uint64 = 2
	Push    uint64 = 3
	Dup     uint64 = 3
	Swap    uint64 = 3
	Pop     uint64 = 2
	Mload   uint64 = 3
	Mstore  uint64 = 3
	Mstore8 uint64 = 3
	Pc      uint64 = 2
	Msize   uint64 = 2
	GasOp   uint64 = 2

	Tload       uint64 = 100 // EIP-1153
	Tstore      uint64 = 100 // EIP-1153
	BlobHash    uint64 = 3   // EIP-4844
	BlobBaseFee uint64 = 2   // EIP-7516
	McopyBase   uint64 = 3   // EIP-5656

	SentrySstore uint64 = 2300 // EIP-2200 reentrancy sentry, ISTANBUL+

	ExpByte        uint64 = 50 // SPURIOUS_DRAGON+, per byte of exponent
	ExpByteLegacy  uint64 = 10 // pre-SPURIOUS_DRAGON, per byte of exponent

	CreateDataGas uint64 = 200 // per byte of deployed code (CODE_DEPOSIT)

	MaxCodeSize     = 24576    // EIP-170
	MaxInitCodeSize = 2 * MaxCodeSize // EIP-3860, SHANGHAI+

	CallGasFraction = 64 // EIP-150: forward all but 1/64th
)

// RefundQuotientPreLondon and RefundQuotient are the denominators used to
// cap the final gas refund against gas_used.
const (
	RefundQuotientPreLondon uint64 = 2 // pre-LONDON: used/2
	RefundQuotient          uint64 = 5 // LONDON+ (EIP-3529): used/5
)
