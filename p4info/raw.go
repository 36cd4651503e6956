// Package p4info builds and indexes the schema model of a P4 program from
// a P4Info document: tables, match fields, actions, action parameters, and
// packet-io metadata, each with a derived value Format, plus the foreign-key
// declarations the update sequencer depends on.
package p4info

// MatchType is the closed set of match kinds a match field can declare.
type MatchType int

const (
	Exact MatchType = iota
	LPM
	Ternary
	Optional
	Range
)

func (m MatchType) String() string {
	switch m {
	case Exact:
		return "EXACT"
	case LPM:
		return "LPM"
	case Ternary:
		return "TERNARY"
	case Optional:
		return "OPTIONAL"
	case Range:
		return "RANGE"
	default:
		return "UNKNOWN"
	}
}

// Unit is the closed set of counter/meter accounting units.
type Unit int

const (
	Bytes Unit = iota
	Packets
	Both
)

// Preamble carries the common id/name/alias/annotation fields every P4
// object has.
type Preamble struct {
	ID          uint32
	Name        string
	Alias       string
	Annotations []string
}

// RawMatchField is the as-declared P4Info form of a table match field.
type RawMatchField struct {
	ID          uint32
	Name        string
	Bitwidth    int
	MatchType   MatchType
	Annotations []string
	TypeName    string // optional named type, e.g. "router_interface_id_t"
}

// RawActionParam is the as-declared P4Info form of an action parameter.
type RawActionParam struct {
	ID          uint32
	Name        string
	Bitwidth    int
	Annotations []string
	TypeName    string
}

// RawAction is the as-declared P4Info form of an action.
type RawAction struct {
	Preamble Preamble
	Params   []RawActionParam
}

// RawActionRef references an action allowed in a table, by id.
type RawActionRef struct {
	ActionID uint32
}

// RawCounterOrMeterSpec describes an optional counter or meter attached to
// a table.
type RawCounterOrMeterSpec struct {
	Unit Unit
}

// RawTable is the as-declared P4Info form of a table.
type RawTable struct {
	Preamble    Preamble
	MatchFields []RawMatchField
	ActionRefs  []RawActionRef
	Size        int64
	Counter     *RawCounterOrMeterSpec
	Meter       *RawCounterOrMeterSpec
	UsesOneshot bool
	// WeightActionProtoID, when UsesOneshot is set, is the id the table
	// declares for the per-member weight field; construction records
	// whether any allowed action's P4 id equals it. Actions' @proto_id
	// annotations are not read for this check.
	WeightActionProtoID uint32
}

// RawPacketMetadata is the as-declared P4Info form of a packet-in or
// packet-out metadata field.
type RawPacketMetadata struct {
	ID          uint32
	Name        string
	Bitwidth    int
	Annotations []string
	TypeName    string
}

// ForeignKeyOwnerKind selects whether a foreign key is declared on a table
// match field or on an action parameter.
type ForeignKeyOwnerKind int

const (
	OwnerMatchField ForeignKeyOwnerKind = iota
	OwnerActionParam
)

// ForeignKey declares that a value carried by a match field or action
// parameter must reference an EXACT or OPTIONAL match value of another
// table's match field.
type ForeignKey struct {
	OwnerKind ForeignKeyOwnerKind
	// Table is always the owning table name (for both owner kinds: for
	// action params, the table that allows the action).
	Table string
	// MatchField or (ActionName, ParamName) identify the owning field,
	// depending on OwnerKind.
	MatchField string
	ActionName string
	ParamName  string

	ReferredTable      string
	ReferredMatchField string
}

// RawP4Info is the full structured input: the P4Info document plus the
// foreign-key declarations this library requires alongside it (P4Runtime's
// own P4Info does not carry foreign keys; they are supplied out of band by
// whatever produced the P4Info, e.g. a P4 program's own annotations surfaced
// into a side file).
type RawP4Info struct {
	Tables      []RawTable
	Actions     []RawAction
	PacketIn    []RawPacketMetadata
	PacketOut   []RawPacketMetadata
	ForeignKeys []ForeignKey
}
