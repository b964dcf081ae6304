// Package types is the ledger's data model: identifiers, values, the
// instruction/query sum types, and the wire-level transaction and block
// shapes. Every entity the world-state view owns is addressed by one of the
// identifier types in this file — never by pointer — so cross-entity
// references stay stable across snapshots (see core/state.Manager).
package types

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength bounds every structural identifier component. It is
// deliberately small: names cross the WASM ABI on every instruction and
// query, so an unbounded name is an unbounded fuel/memory cost.
const MaxNameLength = 128

// Name is a validated, bounded UTF-8 identifier component shared by domains,
// asset definitions, roles, and triggers.
type Name string

// ValidateName reports whether n is a non-empty, bounded, separator-free
// UTF-8 string. The separators it rejects (@ # %) are reserved by the
// composite identifier grammar below.
func ValidateName(n Name) error {
	s := string(n)
	if s == "" {
		return fmt.Errorf("types: name must not be empty")
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("types: name must be valid UTF-8")
	}
	if utf8.RuneCountInString(s) > MaxNameLength {
		return fmt.Errorf("types: name exceeds %d characters", MaxNameLength)
	}
	if strings.ContainsAny(s, "@#%") {
		return fmt.Errorf("types: name %q must not contain '@', '#', or '%%'", s)
	}
	return nil
}

// DomainId names a domain. Domains are the top-level namespace for accounts
// and asset definitions.
type DomainId struct {
	Name Name
}

func NewDomainId(name string) (DomainId, error) {
	id := DomainId{Name: Name(name)}
	if err := ValidateName(id.Name); err != nil {
		return DomainId{}, err
	}
	return id, nil
}

func (d DomainId) String() string { return string(d.Name) }

// AccountId is (domain, public key). The public key bytes — not a derived
// address — are the account's identity, per the data model.
type AccountId struct {
	Domain    DomainId
	PublicKey string // bech32 form of crypto.PublicKey, kept as a plain
	// comparable string so AccountId can key a Go map directly.
}

func NewAccountId(domain DomainId, publicKey string) AccountId {
	return AccountId{Domain: domain, PublicKey: publicKey}
}

// String renders the canonical form: <public-key>@<domain>.
func (a AccountId) String() string {
	return fmt.Sprintf("%s@%s", a.PublicKey, a.Domain)
}

// AssetDefinitionId is (name, domain).
type AssetDefinitionId struct {
	Name   Name
	Domain DomainId
}

func NewAssetDefinitionId(name string, domain DomainId) (AssetDefinitionId, error) {
	id := AssetDefinitionId{Name: Name(name), Domain: domain}
	if err := ValidateName(id.Name); err != nil {
		return AssetDefinitionId{}, err
	}
	return id, nil
}

func (a AssetDefinitionId) String() string {
	return fmt.Sprintf("%s#%s", a.Name, a.Domain)
}

// AssetId is (definition, account).
type AssetId struct {
	Definition AssetDefinitionId
	Account    AccountId
}

// String renders the short form when the asset and account share a domain,
// the long form otherwise.
func (a AssetId) String() string {
	if a.Definition.Domain == a.Account.Domain {
		return fmt.Sprintf("%s##%s", a.Definition.Name, a.Account)
	}
	return fmt.Sprintf("%s#%s#%s@%s", a.Definition.Name, a.Account.Domain, a.Account.PublicKey, a.Definition.Domain)
}

// RoleId names a role.
type RoleId struct{ Name Name }

func NewRoleId(name string) (RoleId, error) {
	id := RoleId{Name: Name(name)}
	if err := ValidateName(id.Name); err != nil {
		return RoleId{}, err
	}
	return id, nil
}

func (r RoleId) String() string { return string(r.Name) }

// TriggerId names a trigger.
type TriggerId struct{ Name Name }

func NewTriggerId(name string) (TriggerId, error) {
	id := TriggerId{Name: Name(name)}
	if err := ValidateName(id.Name); err != nil {
		return TriggerId{}, err
	}
	return id, nil
}

func (t TriggerId) String() string { return string(t.Name) }
