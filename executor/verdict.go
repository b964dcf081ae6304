// Package executor is the policy engine the dispatcher consults before
// applying any instruction or releasing any query result. The executor is
// itself WASM code, installed at genesis and upgradable only through a
// permissioned Upgrade instruction — this package is the thin Go adapter
// between the dispatcher's Policy interface and a running wasmhost.Host.
package executor

import (
	"github.com/satu-n/iroha/core/ledgererr"
)

// ValidationFail mirrors the executor's Deny payload: a reason string the
// WASM module chooses, wrapped in the ledger's closed error-kind taxonomy
// so the dispatcher and its callers can still branch on Kind.
type ValidationFail struct {
	Reason string `json:"reason"`
}

// wireVerdict is the JSON envelope an execute_instruction or
// execute_transaction entry point returns. Exactly one of Deny or
// ElevatedAuthority is set when Allow is false/true respectively; both
// empty with Allow true means plain approval.
type wireVerdict struct {
	Allow             bool            `json:"allow"`
	ElevatedAuthority string          `json:"elevated_authority,omitempty"`
	Deny              *ValidationFail `json:"deny,omitempty"`
}

func denyError(v *ValidationFail) *ledgererr.Error {
	if v == nil {
		return ledgererr.New(ledgererr.KindNotPermitted, "executor: denied")
	}
	return ledgererr.New(ledgererr.KindNotPermitted, "executor: %s", v.Reason)
}
