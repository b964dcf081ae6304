package state

import "time"

// Parameters is the closed, versioned system-parameter table fixed at
// genesis and mutated only through a validated SetParameter instruction.
// A closed struct is used rather than an open key-value bag since the
// recognized parameter names are enumerated exhaustively.
type Parameters struct {
	BlockMaxTransactions uint32
	SumeragiBlockTime    time.Duration

	SmartContractFuel   uint64
	SmartContractMemory uint32 // bytes

	ExecutorFuel   uint64
	ExecutorMemory uint32 // bytes

	MaxInstructionNumber uint32
	MaxWasmSizeBytes     uint32

	QueueMaxTransactionsInBlock uint32
	QueueMaxTransactionsInQueue uint32
	QueueTransactionTTL         time.Duration
	QueueFutureThreshold        time.Duration
}

// DefaultParameters returns a parameter set suitable for a local or test
// network; production deployments override these at genesis.
func DefaultParameters() Parameters {
	return Parameters{
		BlockMaxTransactions: 512,
		SumeragiBlockTime:    2 * time.Second,

		SmartContractFuel:   100_000_000,
		SmartContractMemory: 16 * 1024 * 1024,

		ExecutorFuel:   500_000_000,
		ExecutorMemory: 32 * 1024 * 1024,

		MaxInstructionNumber: 4096,
		MaxWasmSizeBytes:     4 * 1024 * 1024,

		QueueMaxTransactionsInBlock: 512,
		QueueMaxTransactionsInQueue: 65536,
		QueueTransactionTTL:         24 * time.Hour,
		QueueFutureThreshold:        1 * time.Second,
	}
}

// ParameterName enumerates the SetParameter-settable keys, using the same
// dotted naming convention as the parameter names themselves.
type ParameterName string

const (
	ParamBlockMaxTransactions      ParameterName = "Block.MaxTransactions"
	ParamSumeragiBlockTimeMs       ParameterName = "Sumeragi.BlockTimeMs"
	ParamSmartContractFuel         ParameterName = "SmartContract.fuel"
	ParamSmartContractMemory       ParameterName = "SmartContract.memory"
	ParamExecutorFuel              ParameterName = "Executor.fuel"
	ParamExecutorMemory            ParameterName = "Executor.memory"
	ParamMaxInstructionNumber      ParameterName = "TransactionLimits.max_instruction_number"
	ParamMaxWasmSizeBytes          ParameterName = "TransactionLimits.max_wasm_size_bytes"
	ParamQueueMaxTxsInBlock        ParameterName = "Queue.maximum_transactions_in_block"
	ParamQueueMaxTxsInQueue        ParameterName = "Queue.maximum_transactions_in_queue"
	ParamQueueTransactionTTLMs     ParameterName = "Queue.transaction_time_to_live_ms"
	ParamQueueFutureThresholdMs    ParameterName = "Queue.future_threshold_ms"
)

// Set applies a single named parameter update, returning false for an
// unrecognized name so the dispatcher can turn that into a NotFound error.
func (p *Parameters) Set(name ParameterName, value int64) bool {
	switch name {
	case ParamBlockMaxTransactions:
		p.BlockMaxTransactions = uint32(value)
	case ParamSumeragiBlockTimeMs:
		p.SumeragiBlockTime = time.Duration(value) * time.Millisecond
	case ParamSmartContractFuel:
		p.SmartContractFuel = uint64(value)
	case ParamSmartContractMemory:
		p.SmartContractMemory = uint32(value)
	case ParamExecutorFuel:
		p.ExecutorFuel = uint64(value)
	case ParamExecutorMemory:
		p.ExecutorMemory = uint32(value)
	case ParamMaxInstructionNumber:
		p.MaxInstructionNumber = uint32(value)
	case ParamMaxWasmSizeBytes:
		p.MaxWasmSizeBytes = uint32(value)
	case ParamQueueMaxTxsInBlock:
		p.QueueMaxTransactionsInBlock = uint32(value)
	case ParamQueueMaxTxsInQueue:
		p.QueueMaxTransactionsInQueue = uint32(value)
	case ParamQueueTransactionTTLMs:
		p.QueueTransactionTTL = time.Duration(value) * time.Millisecond
	case ParamQueueFutureThresholdMs:
		p.QueueFutureThreshold = time.Duration(value) * time.Millisecond
	default:
		return false
	}
	return true
}
