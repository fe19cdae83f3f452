package codegen

// Kind is the closed set of operations the generator knows how to emit, plus
// KindUnknown for everything else. Dispatch switches over Kind exhaustively.
type Kind int

const (
	KindUnknown Kind = iota
	KindInit
	KindCreate
	KindRead
	KindUpdate
	KindDelete
	KindList
)

// kindIDs maps block ids onto kinds. Each record kind accepts both the
// canvas id ("createAsset") and the neutral id ("createRecord").
var kindIDs = map[string]Kind{
	"init":         KindInit,
	"createAsset":  KindCreate,
	"createRecord": KindCreate,
	"readAsset":    KindRead,
	"readRecord":   KindRead,
	"updateAsset":  KindUpdate,
	"updateRecord": KindUpdate,
	"deleteAsset":  KindDelete,
	"deleteRecord": KindDelete,
	"query":        KindList,
	"listRecords":  KindList,
}

// ParseKind resolves a block id. Unrecognised ids yield KindUnknown.
func ParseKind(id string) Kind {
	return kindIDs[id]
}

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindCreate:
		return "createRecord"
	case KindRead:
		return "readRecord"
	case KindUpdate:
		return "updateRecord"
	case KindDelete:
		return "deleteRecord"
	case KindList:
		return "listRecords"
	default:
		return "unknown"
	}
}

// namesAssetType reports whether a block of this kind is consulted when
// resolving the effective asset type name. These are the single-record
// operations; listing is not.
func (k Kind) namesAssetType() bool {
	switch k {
	case KindCreate, KindRead, KindUpdate, KindDelete:
		return true
	}
	return false
}

// usesRecord reports whether emitted code for this kind references the record
// struct, which makes the struct declaration necessary.
func (k Kind) usesRecord() bool {
	return k.namesAssetType() || k == KindList
}

// needsKey reports whether emitted code for this kind addresses a record by key.
func (k Kind) needsKey() bool {
	switch k {
	case KindCreate, KindRead, KindUpdate, KindDelete:
		return true
	}
	return false
}
