// Package pdgen emits the textual program-dependent (PD) schema for a
// P4Info, via its info manager. Output is deterministic: every collection
// (tables, actions, match fields, params, packet-io metadata) is sorted by
// ascending P4 id before emission, per spec §4.8.
package pdgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/p4name"
)

func sortedTables(mgr *p4info.Manager) []*p4info.Table {
	out := make([]*p4info.Table, 0, len(mgr.TablesByID))
	for _, t := range mgr.TablesByID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedActions(mgr *p4info.Manager) []*p4info.Action {
	out := make([]*p4info.Action, 0, len(mgr.ActionsByID))
	for _, a := range mgr.ActionsByID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedMatchFields(t *p4info.Table) []*p4info.MatchField {
	out := make([]*p4info.MatchField, 0, len(t.MatchFieldsByID))
	for _, mf := range t.MatchFieldsByID {
		out = append(out, mf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedParams(a *p4info.Action) []*p4info.ActionParam {
	out := make([]*p4info.ActionParam, len(a.ParamOrder))
	copy(out, a.ParamOrder)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedAllowedActionIDs(t *p4info.Table) []uint32 {
	out := make([]uint32, 0, len(t.AllowedActionIDs))
	for id := range t.AllowedActionIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedPacketMetadata(byID map[uint32]*p4info.PacketMetadata) []*p4info.PacketMetadata {
	out := make([]*p4info.PacketMetadata, 0, len(byID))
	for _, m := range byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchFieldType(mf *p4info.MatchField) string {
	switch mf.MatchType {
	case p4info.Exact:
		return "string"
	case p4info.LPM:
		return "Lpm"
	case p4info.Ternary:
		return "Ternary"
	case p4info.Optional:
		return "Optional"
	default:
		return "string"
	}
}

func writeCommonHelpers(b *strings.Builder) {
	b.WriteString("message Ternary {\n  string value = 1;\n  string mask = 2;\n}\n")
	b.WriteString("message Lpm {\n  string value = 1;\n  int32 prefix_length = 2;\n}\n")
	b.WriteString("message Optional {\n  string value = 1;\n}\n")
	b.WriteString("message BytesMeterConfig {\n  int64 cir = 1;\n  int64 cburst = 2;\n}\n")
	b.WriteString("message PacketsMeterConfig {\n  int64 cir = 1;\n  int64 cburst = 2;\n}\n")
}

func writeActionMessage(b *strings.Builder, a *p4info.Action) {
	msgName := p4name.ToMessageName(a.Name, p4name.Action)
	fmt.Fprintf(b, "message %s {\n", msgName)
	for i, p := range sortedParams(a) {
		fmt.Fprintf(b, "  string %s = %d;\n", p4name.ToFieldName(p.Name, p4name.Action), i+1)
	}
	b.WriteString("}\n")
}

func writeTableMatchMessage(b *strings.Builder, t *p4info.Table) {
	matchMsgName := p4name.ToMessageName(t.Name, p4name.Table) + "Match"
	fmt.Fprintf(b, "message %s {\n", matchMsgName)
	for i, mf := range sortedMatchFields(t) {
		fmt.Fprintf(b, "  %s %s = %d;\n", matchFieldType(mf), p4name.ToFieldName(mf.Name, p4name.Action), i+1)
	}
	b.WriteString("}\n")
}

func writeTableEntryMessage(b *strings.Builder, mgr *p4info.Manager, t *p4info.Table) {
	entryMsgName := p4name.ToMessageName(t.Name, p4name.Table)
	matchMsgName := entryMsgName + "Match"
	fmt.Fprintf(b, "message %s {\n", entryMsgName)
	fmt.Fprintf(b, "  %s match = 1;\n", matchMsgName)

	field := 2
	if t.UsesOneshot {
		b.WriteString("  repeated ActionSetElem actions = 2;\n")
		field = 3
	} else {
		b.WriteString("  oneof action {\n")
		for i, id := range sortedAllowedActionIDs(t) {
			a := mgr.ActionsByID[id]
			fmt.Fprintf(b, "    %s %s = %d;\n", p4name.ToMessageName(a.Name, p4name.Action), p4name.ToFieldName(a.Name, p4name.Action), i+1)
		}
		b.WriteString("  }\n")
		field = 3
	}

	if t.RequiresPriority() {
		fmt.Fprintf(b, "  int32 priority = %d;\n", field)
		field++
	}
	if t.Meter != nil {
		switch t.Meter.Unit {
		case p4info.Packets:
			fmt.Fprintf(b, "  PacketsMeterConfig packets_meter_config = %d;\n", field)
		default:
			fmt.Fprintf(b, "  BytesMeterConfig bytes_meter_config = %d;\n", field)
		}
		field++
	}
	if t.Counter != nil {
		if t.Counter.Unit == p4info.Bytes || t.Counter.Unit == p4info.Both {
			fmt.Fprintf(b, "  int64 byte_counter = %d;\n", field)
			field++
		}
		if t.Counter.Unit == p4info.Packets || t.Counter.Unit == p4info.Both {
			fmt.Fprintf(b, "  int64 packet_counter = %d;\n", field)
			field++
		}
	}
	b.WriteString("}\n")
}

func writePacketMessage(b *strings.Builder, name string, byID map[uint32]*p4info.PacketMetadata) {
	fmt.Fprintf(b, "message %s {\n  bytes payload = 1;\n", name)
	for i, m := range sortedPacketMetadata(byID) {
		fmt.Fprintf(b, "  string %s = %d;\n", p4name.ToFieldName(m.Name, p4name.Action), i+2)
	}
	b.WriteString("}\n")
}

func writeTopLevelMessages(b *strings.Builder, mgr *p4info.Manager, tables []*p4info.Table) {
	b.WriteString("message ActionSetElem {\n  // action is one of the table's allowed actions.\n  int32 weight = 1;\n}\n")

	b.WriteString("message TableEntry {\n  oneof entry {\n")
	for i, t := range tables {
		fmt.Fprintf(b, "    %s %s = %d; // table id %d, selector key %d\n",
			p4name.ToMessageName(t.Name, p4name.Table), p4name.ToFieldName(t.Name, p4name.Table), i+1, t.ID, t.ID&0xFFFFFF)
	}
	b.WriteString("  }\n}\n")

	b.WriteString("message Update {\n  UpdateType type = 1;\n  TableEntry table_entry = 2;\n}\n")
	b.WriteString("message WriteRequest {\n  uint64 device_id = 1;\n  uint64 election_id_high = 2;\n  uint64 election_id_low = 3;\n  repeated Update updates = 4;\n}\n")
	b.WriteString("message UpdateStatus {\n  int32 code = 1;\n  string message = 2;\n}\n")
	b.WriteString("message WriteResponse {\n}\n")
	b.WriteString("message WriteRpcStatus {\n  oneof status {\n    UpdateStatus rpc_wide_error = 1;\n    RpcResponse rpc_response = 2;\n  }\n}\n")
	b.WriteString("message RpcResponse {\n  repeated UpdateStatus statuses = 1;\n}\n")
	b.WriteString("message ReadRequest {\n  uint64 device_id = 1;\n  repeated string table_names = 2;\n}\n")
	b.WriteString("message ReadResponse {\n  repeated TableEntry entries = 1;\n}\n")
}

// Generate emits the textual PD schema for mgr. The output is
// deterministic: identical for repeated calls on an equivalent Manager,
// since every collection is walked in ascending-id order.
func Generate(mgr *p4info.Manager) string {
	var b strings.Builder

	writeCommonHelpers(&b)

	actions := sortedActions(mgr)
	for _, a := range actions {
		writeActionMessage(&b, a)
	}

	tables := sortedTables(mgr)
	for _, t := range tables {
		writeTableMatchMessage(&b, t)
	}
	for _, t := range tables {
		writeTableEntryMessage(&b, mgr, t)
	}

	writeTopLevelMessages(&b, mgr, tables)

	writePacketMessage(&b, "PacketIn", mgr.PacketInByID)
	writePacketMessage(&b, "PacketOut", mgr.PacketOutByID)

	return b.String()
}
