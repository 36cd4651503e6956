// Package pi defines the on-wire, program-independent P4Runtime value
// types: numeric table/field/action ids and opaque byte strings, as
// carried by the P4Runtime TableEntry/Update/WriteRequest/ReadRequest/
// ReadResponse/PacketIn/PacketOut/status messages. Protocol buffer wire
// encoding itself is an external collaborator (see spec's transport
// carve-out); these types are the plain-Go shape package translate
// converts to and from IR.
package pi

// FieldMatch is one matched field of a wire-form table entry, identified
// by numeric field id, carrying exactly one populated variant.
type FieldMatch struct {
	FieldID uint32

	Exact    *ExactMatch
	LPM      *LPMMatch
	Ternary  *TernaryMatch
	Optional *OptionalMatch
}

type ExactMatch struct {
	Value []byte
}

type LPMMatch struct {
	Value        []byte
	PrefixLength int32
}

type TernaryMatch struct {
	Value []byte
	Mask  []byte
}

type OptionalMatch struct {
	Value []byte
}

// ActionParam is one (param_id, value) pair of a wire-form action
// invocation.
type ActionParam struct {
	ParamID uint32
	Value   []byte
}

// Action is a wire-form action invocation: an action id plus its
// parameters.
type Action struct {
	ActionID uint32
	Params   []ActionParam
}

// ActionSetMember is one weighted member of a wire-form action-set entry.
type ActionSetMember struct {
	Action *Action
	Weight int32
}

// ActionSet is a wire-form action-set (used by oneshot tables).
type ActionSet struct {
	Members []ActionSetMember
}

// MeterConfig is a wire-form meter configuration carrying the four rate
// parameters as given on the wire.
type MeterConfig struct {
	CIR       int64
	CBurst    int64
	PIR       int64
	PBurst    int64
}

// CounterData is a wire-form counter reading.
type CounterData struct {
	ByteCount   int64
	PacketCount int64
}

// TableEntry is the wire form of a single P4Runtime table entry.
type TableEntry struct {
	TableID  uint32
	Match    []FieldMatch
	Priority int32

	Action    *Action
	ActionSet *ActionSet

	MeterConfig *MeterConfig
	CounterData *CounterData
}

// UpdateType mirrors the wire-form update type enum.
type UpdateType int32

const (
	UpdateUnspecified UpdateType = iota
	UpdateInsert
	UpdateModify
	UpdateDelete
)

// Update is a wire-form (type, entry) pair.
type Update struct {
	Type  UpdateType
	Entry TableEntry
}

// WriteRequest is a wire-form batch of updates.
type WriteRequest struct {
	DeviceID     uint64
	ElectionHigh uint64
	ElectionLow  uint64
	Updates      []Update
}

// ReadRequest is a wire-form request for entries on given tables (empty
// means all tables).
type ReadRequest struct {
	DeviceID uint64
	TableIDs []uint32
}

// ReadResponse is a wire-form batch of entries.
type ReadResponse struct {
	Entries []TableEntry
}

// PacketMetadata is one (metadata_id, value) pair of a wire-form
// packet-in/out message.
type PacketMetadata struct {
	MetadataID uint32
	Value      []byte
}

// PacketIn is the wire form of a switch-to-controller packet.
type PacketIn struct {
	Payload  []byte
	Metadata []PacketMetadata
}

// PacketOut is the wire form of a controller-to-switch packet.
type PacketOut struct {
	Payload  []byte
	Metadata []PacketMetadata
}
