package types

// QueryKind tags the variant carried by a Query box, mirroring Instruction's
// closed-box design.
type QueryKind string

const (
	QueryFindDomain           QueryKind = "FindDomain"
	QueryFindAllDomains       QueryKind = "FindAllDomains"
	QueryFindAccount          QueryKind = "FindAccount"
	QueryFindAccountsInDomain QueryKind = "FindAccountsInDomain"
	QueryFindAssetDefinition  QueryKind = "FindAssetDefinition"
	QueryFindAsset            QueryKind = "FindAsset"
	QueryFindAssetsByAccount  QueryKind = "FindAssetsByAccount"
	QueryFindRole             QueryKind = "FindRole"
	QueryFindAllRoles         QueryKind = "FindAllRoles"
	QueryFindTrigger          QueryKind = "FindTrigger"
	QueryFindAllTriggers      QueryKind = "FindAllTriggers"
	QueryFindTransaction      QueryKind = "FindTransaction"
	QueryFindBlock            QueryKind = "FindBlockHeader"
)

// Query is the sum type the dispatcher's read path evaluates. Singular
// queries (FindDomain, FindAccount, FindAsset, ...) return exactly one
// record or an error; plural queries (FindAllDomains, ...) return a cursor
// handle a client pages through.
type Query struct {
	Kind QueryKind

	Domain  DomainId
	Account AccountId
	Asset   AssetId
	AssetDef AssetDefinitionId
	Role    RoleId
	Trigger TriggerId
	TxHash  string
	BlockHeight uint64

	// Filter is carried with the query; the dispatcher does not apply it,
	// so iterable results are not narrowed by it.
	Filter EventFilter

	// PageSize bounds how many records one cursor page holds. Zero puts the
	// whole result set in one page (see CursorStore.Open).
	PageSize uint32
}

// QueryResultKind tags what a singular query resolved to.
type QueryResultKind string

const (
	ResultDomain      QueryResultKind = "Domain"
	ResultAccount     QueryResultKind = "Account"
	ResultAssetDef     QueryResultKind = "AssetDefinition"
	ResultAsset        QueryResultKind = "Asset"
	ResultRole         QueryResultKind = "Role"
	ResultTrigger      QueryResultKind = "Trigger"
	ResultTransaction  QueryResultKind = "Transaction"
	ResultBlockHeader  QueryResultKind = "BlockHeader"
	ResultCursor       QueryResultKind = "Cursor"
)

// QueryResult is the singular-or-cursor result the dispatcher hands back to
// the executor's validate_query hook for authorization before it reaches
// the caller.
type QueryResult struct {
	Kind     QueryResultKind
	Domain   *Domain
	Account  *Account
	AssetDef *AssetDefinition
	Asset    *Asset
	Role     *Role
	Trigger  *Trigger
	Transaction *SignedTransaction
	BlockHeader *BlockHeader
	CursorId string
}
