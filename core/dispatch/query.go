package dispatch

import (
	"github.com/satu-n/iroha/core/ledgererr"
	"github.com/satu-n/iroha/core/state"
	"github.com/satu-n/iroha/core/types"
)

// resolveQuery evaluates q against view. Singular queries return exactly
// one record or NotFound; iterable queries return a Cursor-kind result
// with an empty cursor id and no records — resolveQuery neither
// materializes nor pages them.
func resolveQuery(view state.Snapshot, q types.Query) (*types.QueryResult, error) {
	switch q.Kind {
	case types.QueryFindDomain:
		d, ok := view.Domain(q.Domain)
		if !ok {
			return nil, notFound("dispatch: domain %s not found", q.Domain)
		}
		return &types.QueryResult{Kind: types.ResultDomain, Domain: d}, nil
	case types.QueryFindAccount:
		a, ok := view.Account(q.Account)
		if !ok {
			return nil, notFound("dispatch: account %s not found", q.Account)
		}
		return &types.QueryResult{Kind: types.ResultAccount, Account: a}, nil
	case types.QueryFindAssetDefinition:
		d, ok := view.AssetDefinition(q.AssetDef)
		if !ok {
			return nil, notFound("dispatch: asset definition %s not found", q.AssetDef)
		}
		return &types.QueryResult{Kind: types.ResultAssetDef, AssetDef: d}, nil
	case types.QueryFindAsset:
		a, ok := view.Asset(q.Asset)
		if !ok {
			return nil, notFound("dispatch: asset %s not found", q.Asset)
		}
		return &types.QueryResult{Kind: types.ResultAsset, Asset: a}, nil
	case types.QueryFindRole:
		r, ok := view.Role(q.Role)
		if !ok {
			return nil, notFound("dispatch: role %s not found", q.Role)
		}
		return &types.QueryResult{Kind: types.ResultRole, Role: r}, nil
	case types.QueryFindTrigger:
		t, ok := view.Trigger(q.Trigger)
		if !ok {
			return nil, notFound("dispatch: trigger %s not found", q.Trigger)
		}
		return &types.QueryResult{Kind: types.ResultTrigger, Trigger: t}, nil
	case types.QueryFindAllDomains, types.QueryFindAccountsInDomain, types.QueryFindAllRoles,
		types.QueryFindAllTriggers, types.QueryFindAssetsByAccount:
		// The result set of an iterable query comes from MaterializeIterable
		// and is paged by CursorStore.Open; no caller in this module does
		// either for a query answered here, so the cursor id stays empty.
		return &types.QueryResult{Kind: types.ResultCursor}, nil
	default:
		return nil, ledgererr.New(ledgererr.KindNotFound, "dispatch: unsupported query kind %q", q.Kind)
	}
}

// MaterializeIterable runs the plural form of q against view and returns
// every matching record, for the caller to hand to CursorStore.Open.
// q.Filter is not applied.
func MaterializeIterable(view state.Snapshot, q types.Query) any {
	switch q.Kind {
	case types.QueryFindAllDomains:
		return view.AllDomains()
	case types.QueryFindAccountsInDomain:
		return view.AllAccountsInDomain(q.Domain)
	case types.QueryFindAllRoles:
		return view.AllRoles()
	case types.QueryFindAllTriggers:
		return view.AllTriggers()
	case types.QueryFindAssetsByAccount:
		return view.AssetsByAccount(q.Account)
	default:
		return nil
	}
}
