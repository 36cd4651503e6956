// Package ir defines the typed, self-describing in-memory representation
// of P4Runtime entities: table entries, updates, read/write requests and
// responses, packet-in/out, and RPC status. IR values are owned by their
// enclosing entity; every translation in package translate or pd produces
// a fresh, owned instance.
package ir

import (
	"github.com/p4rtxlate/p4rtxlate/irvalue"
)

// MatchVariant is the closed set of match-field representations an IR
// Match can carry.
type MatchVariant int

const (
	VariantExact MatchVariant = iota
	VariantLPM
	VariantTernary
	VariantOptional
)

// Match is one matched field of a table entry.
type Match struct {
	Name    string
	Variant MatchVariant

	// Exact, Optional
	Value irvalue.Value

	// LPM
	PrefixLength int

	// Ternary
	Mask irvalue.Value
}

// ActionInvocation is a named action applied with a list of parameter
// values, in declaration order.
type ActionInvocation struct {
	Name   string
	Params []ActionParamValue
}

// ActionParamValue is one (name, value) pair of an action invocation.
type ActionParamValue struct {
	Name  string
	Value irvalue.Value
}

// ActionSetMember is one weighted action of an action-set (oneshot table)
// entry.
type ActionSetMember struct {
	Action ActionInvocation
	Weight int32
}

// MeterConfig is a two-rate-two-color meter's committed/peak rate and
// burst size. The wire form carries CIR/PIR and CBURST/PBURST separately;
// the PD schema and this IR model collapse them under the invariant that
// CIR == PIR and CBURST == PBURST.
type MeterConfig struct {
	Rate  int64
	Burst int64
}

// CounterData is an accumulated byte/packet counter reading.
type CounterData struct {
	Bytes   int64
	Packets int64
}

// TableEntry is the IR form of a single P4Runtime table entry.
type TableEntry struct {
	TableName string
	Matches   []Match
	// Priority is 0 when the table does not require one.
	Priority int32

	// Exactly one of Action or ActionSet is populated, depending on
	// whether the table uses oneshot action profiles.
	Action    *ActionInvocation
	ActionSet []ActionSetMember

	Meter   *MeterConfig
	Counter *CounterData
}

// UpdateType is the closed set of write operations a controller can apply
// to a table entry.
type UpdateType int

const (
	Insert UpdateType = iota
	Modify
	Delete
)

func (u UpdateType) String() string {
	switch u {
	case Insert:
		return "INSERT"
	case Modify:
		return "MODIFY"
	case Delete:
		return "DELETE"
	default:
		return "UNSPECIFIED"
	}
}

// Update pairs a write operation with the table entry it applies to.
type Update struct {
	Type  UpdateType
	Entry TableEntry
}

// WriteRequest is a batch of updates a controller sends to a switch,
// scoped to a device and an election id for primary-arbitration.
type WriteRequest struct {
	DeviceID   uint64
	ElectionID ElectionID
	Updates    []Update
}

// ElectionID is the monotonic identifier a controller uses to claim
// primary status.
type ElectionID struct {
	High uint64
	Low  uint64
}

// ReadRequest selects which table entries to read back; an empty
// TableNames means "all tables".
type ReadRequest struct {
	DeviceID   uint64
	TableNames []string
}

// ReadResponse carries the entries returned by a ReadRequest.
type ReadResponse struct {
	Entries []TableEntry
}

// PacketMetadataValue is one named, typed packet-io metadata value.
type PacketMetadataValue struct {
	Name  string
	Value irvalue.Value
}

// PacketIn is a packet the switch delivered to the controller, with its
// typed metadata.
type PacketIn struct {
	Payload  []byte
	Metadata []PacketMetadataValue
}

// PacketOut is a packet the controller sends to the switch, with its typed
// metadata.
type PacketOut struct {
	Payload  []byte
	Metadata []PacketMetadataValue
}

// RpcCode is the closed gRPC-style status code space carried by
// WriteRpcStatus.
type RpcCode int

const (
	CodeOK RpcCode = iota
	CodeUnknown
	CodeInvalidArgument
	CodeNotFound
	CodeAlreadyExists
	CodeFailedPrecondition
	CodeUnimplemented
	CodeInternal
)

// UpdateStatus is the per-update outcome of a WriteRequest.
type UpdateStatus struct {
	Code    RpcCode
	Message string
}

// WriteRpcStatus is either an empty (all-OK) status, a single rpc-wide
// error, or a per-update list of outcomes. Exactly one representation is
// populated.
type WriteRpcStatus struct {
	// RpcWide is set when the whole request failed uniformly (details
	// absent from the transport envelope).
	RpcWide *UpdateStatus
	// PerUpdate is set when the transport carried a batch sub-status; one
	// entry per update in the originating WriteRequest, in order.
	PerUpdate []UpdateStatus
}
