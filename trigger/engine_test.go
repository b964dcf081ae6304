package trigger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satu-n/iroha/core/dispatch"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
	"github.com/satu-n/iroha/executor"
	"github.com/satu-n/iroha/trigger"
)

type lazyApplier struct{ d *dispatch.Dispatcher }

func (l *lazyApplier) Apply(tx *state.InstrTx, authority types.AccountId, instr types.Instruction, header types.BlockHeader) error {
	return l.d.Apply(tx, authority, instr, header)
}
func (l *lazyApplier) Query(view state.Snapshot, authority types.AccountId, q types.Query) (*types.QueryResult, error) {
	return l.d.Query(view, authority, q)
}

func newDispatcher() *dispatch.Dispatcher {
	la := &lazyApplier{}
	policy := executor.NewNativePolicy(la)
	d := dispatch.NewDispatcher(policy)
	la.d = d
	return d
}

func mustDomain(t *testing.T, name string) types.DomainId {
	id, err := types.NewDomainId(name)
	require.NoError(t, err)
	return id
}

func setParamAction(value int64) types.Executable {
	return types.Executable{
		Kind: types.ExecutableInstructions,
		Instructions: []types.Instruction{{
			Kind:           types.InstructionSetParameter,
			ParameterName:  "Block.MaxTransactions",
			ParameterValue: json.RawMessage([]byte{'0' + byte(value%10)}),
		}},
	}
}

func TestProcessPassFiresMatchingTriggerOnce(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")
	d := newDispatcher()
	engine := trigger.NewEngine(d, nil)

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()

	trig := types.NewTrigger(
		types.TriggerId{Name: "on-account-created"},
		setParamAction(7),
		types.EventFilter{Kinds: []types.EventKind{types.EventAccountCreated}},
		owner,
		types.Unlimited,
	)
	itx.PutTrigger(trig)

	events := []types.DataEvent{
		{Kind: types.EventAccountCreated, Subject: "alice"},
		{Kind: types.EventDomainCreated, Subject: "wonderland"},
	}
	fired := engine.ProcessPass(itx, events, types.BlockHeader{Height: 1})

	require.Len(t, fired, 1)
	require.Equal(t, types.EventTriggerFired, fired[0].Kind)
	require.Equal(t, uint32(7), itx.View().Parameters().BlockMaxTransactions)
	wtx.Rollback()
}

func TestProcessPassUnregistersExhaustedTrigger(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")
	d := newDispatcher()
	engine := trigger.NewEngine(d, nil)

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()

	triggerId := types.TriggerId{Name: "one-shot"}
	trig := types.NewTrigger(triggerId, setParamAction(3), types.EventFilter{}, owner, 1)
	itx.PutTrigger(trig)

	engine.ProcessPass(itx, []types.DataEvent{{Kind: types.EventAccountCreated, Subject: "x"}}, types.BlockHeader{Height: 1})

	_, ok := itx.View().Trigger(triggerId)
	require.False(t, ok, "an exhausted trigger must be unregistered after its last firing")
}

func TestProcessPassReportsFailureWithoutAbortingLaterTriggers(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")
	d := newDispatcher()
	engine := trigger.NewEngine(d, nil)

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()

	// ExecuteTrigger against a nonexistent trigger id, so firing this
	// trigger's own instruction always fails inside dispatch.
	failing := types.NewTrigger(
		types.TriggerId{Name: "a-failing"},
		types.Executable{
			Kind:         types.ExecutableInstructions,
			Instructions: []types.Instruction{{Kind: types.InstructionExecuteTrigger, Trigger: types.TriggerId{Name: "ghost"}}},
		},
		types.EventFilter{},
		owner,
		types.Unlimited,
	)
	succeeding := types.NewTrigger(
		types.TriggerId{Name: "b-succeeding"},
		setParamAction(5),
		types.EventFilter{},
		owner,
		types.Unlimited,
	)
	itx.PutTrigger(failing)
	itx.PutTrigger(succeeding)

	fired := engine.ProcessPass(itx, []types.DataEvent{{Kind: types.EventAccountCreated, Subject: "x"}}, types.BlockHeader{Height: 1})

	require.Len(t, fired, 2)
	require.Equal(t, types.EventTriggerFailed, fired[0].Kind)
	require.Equal(t, types.EventTriggerFired, fired[1].Kind)
	require.Equal(t, uint32(5), itx.View().Parameters().BlockMaxTransactions)
}

func TestProcessPassIgnoresNonMatchingTrigger(t *testing.T) {
	mgr := state.NewManager(state.DefaultParameters())
	domain := mustDomain(t, "wonderland")
	owner := types.NewAccountId(domain, "owner-key")
	d := newDispatcher()
	engine := trigger.NewEngine(d, nil)

	wtx := mgr.BlockTransaction(types.BlockHeader{Height: 1})
	itx := wtx.Transaction()

	trig := types.NewTrigger(
		types.TriggerId{Name: "domain-only"},
		setParamAction(9),
		types.EventFilter{Kinds: []types.EventKind{types.EventDomainCreated}},
		owner,
		types.Unlimited,
	)
	itx.PutTrigger(trig)

	fired := engine.ProcessPass(itx, []types.DataEvent{{Kind: types.EventAccountCreated, Subject: "x"}}, types.BlockHeader{Height: 1})
	require.Empty(t, fired)
	require.NotEqual(t, uint32(9), itx.View().Parameters().BlockMaxTransactions)
}
