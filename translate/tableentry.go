// Package translate implements the validated, bidirectional PI<->IR
// conversion for every IR entity: table entries, updates, write/read
// requests and responses, and packet-in/out.
package translate

import (
	"fmt"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4err"
	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/pi"
)

func bytesForWidth(bitwidth int) int {
	return (bitwidth + 7) / 8
}

// TableEntryToIr validates and converts a wire-form table entry into IR.
func TableEntryToIr(mgr *p4info.Manager, e pi.TableEntry) (ir.TableEntry, error) {
	table, err := mgr.TableByID(e.TableID)
	if err != nil {
		return ir.TableEntry{}, err
	}

	seen := make(map[uint32]bool, len(e.Match))
	matches := make([]ir.Match, 0, len(e.Match))
	exactSeen := 0
	for _, fm := range e.Match {
		if seen[fm.FieldID] {
			return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q: duplicate match field id %d", table.Name, fm.FieldID)
		}
		seen[fm.FieldID] = true

		mf, ok := table.MatchFieldsByID[fm.FieldID]
		if !ok {
			return ir.TableEntry{}, p4err.New(p4err.NotFound,
				"table %q: no match field with id %d", table.Name, fm.FieldID)
		}

		m, err := piMatchToIr(table.Name, mf, fm)
		if err != nil {
			return ir.TableEntry{}, err
		}
		if mf.MatchType == p4info.Exact {
			exactSeen++
		}
		matches = append(matches, m)
	}
	if exactSeen != table.ExactMatchCount {
		return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q: expected %d EXACT matches, got %d", table.Name, table.ExactMatchCount, exactSeen)
	}

	if table.RequiresPriority() {
		if e.Priority <= 0 {
			return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q requires a positive priority, got %d", table.Name, e.Priority)
		}
	} else if e.Priority != 0 {
		return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q does not require priority but got %d", table.Name, e.Priority)
	}

	entry := ir.TableEntry{TableName: table.Name, Matches: matches, Priority: e.Priority}

	switch {
	case e.Action != nil && e.ActionSet != nil:
		return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q: entry carries both a single action and an action set", table.Name)
	case e.Action != nil:
		if table.UsesOneshot {
			return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q uses one-shot action profiles and requires an action set", table.Name)
		}
		inv, err := piActionToIr(mgr, table, *e.Action)
		if err != nil {
			return ir.TableEntry{}, err
		}
		entry.Action = &inv
	case e.ActionSet != nil:
		if !table.UsesOneshot {
			return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q does not use one-shot action profiles but got an action set", table.Name)
		}
		members := make([]ir.ActionSetMember, 0, len(e.ActionSet.Members))
		for i, mem := range e.ActionSet.Members {
			if mem.Weight < 1 {
				return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
					"table %q: action set member %d has weight %d, must be >= 1", table.Name, i, mem.Weight)
			}
			if mem.Action == nil {
				return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
					"table %q: action set member %d is missing its action", table.Name, i)
			}
			inv, err := piActionToIr(mgr, table, *mem.Action)
			if err != nil {
				return ir.TableEntry{}, err
			}
			members = append(members, ir.ActionSetMember{Action: inv, Weight: mem.Weight})
		}
		entry.ActionSet = members
	default:
		return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q: entry carries neither an action nor an action set", table.Name)
	}

	if e.MeterConfig != nil {
		if table.Meter == nil {
			return ir.TableEntry{}, p4err.New(p4err.FailedPrecondition,
				"table %q does not declare a meter but entry carries one", table.Name)
		}
		if e.MeterConfig.CIR != e.MeterConfig.PIR || e.MeterConfig.CBurst != e.MeterConfig.PBurst {
			return ir.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q: meter CIR must equal PIR and CBURST must equal PBURST", table.Name)
		}
		entry.Meter = &ir.MeterConfig{Rate: e.MeterConfig.CIR, Burst: e.MeterConfig.CBurst}
	}
	if e.CounterData != nil {
		if table.Counter == nil {
			return ir.TableEntry{}, p4err.New(p4err.FailedPrecondition,
				"table %q does not declare a counter but entry carries one", table.Name)
		}
		entry.Counter = &ir.CounterData{Bytes: e.CounterData.ByteCount, Packets: e.CounterData.PacketCount}
	}

	return entry, nil
}

func piMatchToIr(tableName string, mf *p4info.MatchField, fm pi.FieldMatch) (ir.Match, error) {
	desc := fmt.Sprintf("table %q match field %q", tableName, mf.Name)
	switch mf.MatchType {
	case p4info.Exact:
		if fm.Exact == nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: expected an exact match", desc)
		}
		v, err := irvalue.FormatToIr(mf.Format, mf.Bitwidth, fm.Exact.Value)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		return ir.Match{Name: mf.Name, Variant: ir.VariantExact, Value: v}, nil

	case p4info.LPM:
		if fm.LPM == nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: expected an LPM match", desc)
		}
		if int(fm.LPM.PrefixLength) > mf.Bitwidth {
			return ir.Match{}, p4err.New(p4err.InvalidArgument,
				"%s: prefix length %d is greater than bitwidth %d", desc, fm.LPM.PrefixLength, mf.Bitwidth)
		}
		if fm.LPM.PrefixLength == 0 {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: LPM prefix length must not be zero", desc)
		}
		if mf.Format != irvalue.IPv4 && mf.Format != irvalue.IPv6 {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: LPM is only allowed on IPV4 or IPV6 fields", desc)
		}
		norm, err := irvalue.Normalize(fm.LPM.Value, mf.Bitwidth)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		mask := prefixMask(int(fm.LPM.PrefixLength), bytesForWidth(mf.Bitwidth))
		if !andNotIsZero(norm, mask) {
			return ir.Match{}, p4err.New(p4err.InvalidArgument,
				"%s: value has bits set beyond prefix length %d", desc, fm.LPM.PrefixLength)
		}
		v, err := irvalue.FormatToIr(mf.Format, mf.Bitwidth, norm)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		return ir.Match{Name: mf.Name, Variant: ir.VariantLPM, Value: v, PrefixLength: int(fm.LPM.PrefixLength)}, nil

	case p4info.Ternary:
		if fm.Ternary == nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: expected a ternary match", desc)
		}
		normV, err := irvalue.Normalize(fm.Ternary.Value, mf.Bitwidth)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		normM, err := irvalue.Normalize(fm.Ternary.Mask, mf.Bitwidth)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		allZero := true
		for _, b := range normM {
			if b != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: ternary mask must not be zero", desc)
		}
		if !andNotIsZero(normV, normM) {
			return ir.Match{}, p4err.New(p4err.InvalidArgument,
				"%s: value has bits set that the mask does not set", desc)
		}
		vv, err := irvalue.FormatToIr(mf.Format, mf.Bitwidth, normV)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		mv, err := irvalue.FormatToIr(mf.Format, mf.Bitwidth, normM)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		return ir.Match{Name: mf.Name, Variant: ir.VariantTernary, Value: vv, Mask: mv}, nil

	case p4info.Optional:
		if fm.Optional == nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: expected an optional match", desc)
		}
		v, err := irvalue.FormatToIr(mf.Format, mf.Bitwidth, fm.Optional.Value)
		if err != nil {
			return ir.Match{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		return ir.Match{Name: mf.Name, Variant: ir.VariantOptional, Value: v}, nil

	default:
		return ir.Match{}, p4err.New(p4err.Unimplemented, "%s: unsupported match type %v", desc, mf.MatchType)
	}
}

func piActionToIr(mgr *p4info.Manager, table *p4info.Table, a pi.Action) (ir.ActionInvocation, error) {
	if !table.AllowedActionIDs[a.ActionID] {
		return ir.ActionInvocation{}, p4err.New(p4err.InvalidArgument,
			"table %q does not allow action id %d", table.Name, a.ActionID)
	}
	action, err := mgr.ActionByID(a.ActionID)
	if err != nil {
		return ir.ActionInvocation{}, err
	}

	seen := make(map[uint32]bool, len(a.Params))
	params := make([]ir.ActionParamValue, 0, len(action.ParamOrder))
	byID := make(map[uint32]irvalue.Value, len(a.Params))
	for _, p := range a.Params {
		if seen[p.ParamID] {
			return ir.ActionInvocation{}, p4err.New(p4err.InvalidArgument,
				"action %q: duplicate param id %d", action.Name, p.ParamID)
		}
		seen[p.ParamID] = true
		ap, ok := action.ParamsByID[p.ParamID]
		if !ok {
			return ir.ActionInvocation{}, p4err.New(p4err.NotFound,
				"action %q: no param with id %d", action.Name, p.ParamID)
		}
		v, err := irvalue.FormatToIr(ap.Format, ap.Bitwidth, p.Value)
		if err != nil {
			return ir.ActionInvocation{}, p4err.New(p4err.InvalidArgument,
				"action %q param %q: %v", action.Name, ap.Name, err)
		}
		byID[p.ParamID] = v
	}
	if len(a.Params) != len(action.ParamOrder) {
		return ir.ActionInvocation{}, p4err.New(p4err.InvalidArgument,
			"action %q: expected %d params, got %d", action.Name, len(action.ParamOrder), len(a.Params))
	}
	for _, ap := range action.ParamOrder {
		v, ok := byID[ap.ID]
		if !ok {
			return ir.ActionInvocation{}, p4err.New(p4err.InvalidArgument,
				"action %q: missing param %q", action.Name, ap.Name)
		}
		params = append(params, ir.ActionParamValue{Name: ap.Name, Value: v})
	}

	return ir.ActionInvocation{Name: action.Name, Params: params}, nil
}

// TableEntryToPi validates and renders an IR table entry back to wire
// form.
func TableEntryToPi(mgr *p4info.Manager, e ir.TableEntry) (pi.TableEntry, error) {
	table, err := mgr.TableByName(e.TableName)
	if err != nil {
		return pi.TableEntry{}, err
	}

	if table.RequiresPriority() {
		if e.Priority <= 0 {
			return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q requires a positive priority, got %d", table.Name, e.Priority)
		}
	} else if e.Priority != 0 {
		return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q does not require priority but got %d", table.Name, e.Priority)
	}

	seenNames := make(map[string]bool, len(e.Matches))
	matches := make([]pi.FieldMatch, 0, len(e.Matches))
	exactSeen := 0
	for _, m := range e.Matches {
		if seenNames[m.Name] {
			return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q: duplicate match field %q", table.Name, m.Name)
		}
		seenNames[m.Name] = true
		mf, ok := table.MatchFieldsByName[m.Name]
		if !ok {
			return pi.TableEntry{}, p4err.New(p4err.NotFound,
				"table %q: no match field named %q", table.Name, m.Name)
		}
		fm, err := irMatchToPi(table.Name, mf, m)
		if err != nil {
			return pi.TableEntry{}, err
		}
		if mf.MatchType == p4info.Exact {
			exactSeen++
		}
		matches = append(matches, fm)
	}
	if exactSeen != table.ExactMatchCount {
		return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q: expected %d EXACT matches, got %d", table.Name, table.ExactMatchCount, exactSeen)
	}

	out := pi.TableEntry{TableID: table.ID, Match: matches, Priority: e.Priority}

	switch {
	case e.Action != nil && e.ActionSet != nil:
		return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q: entry carries both a single action and an action set", table.Name)
	case e.Action != nil:
		if table.UsesOneshot {
			return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q uses one-shot action profiles and requires an action set", table.Name)
		}
		a, err := irActionToPi(mgr, table, *e.Action)
		if err != nil {
			return pi.TableEntry{}, err
		}
		out.Action = &a
	case len(e.ActionSet) > 0:
		if !table.UsesOneshot {
			return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
				"table %q does not use one-shot action profiles but got an action set", table.Name)
		}
		members := make([]pi.ActionSetMember, 0, len(e.ActionSet))
		for i, mem := range e.ActionSet {
			if mem.Weight < 1 {
				return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
					"table %q: action set member %d has weight %d, must be >= 1", table.Name, i, mem.Weight)
			}
			a, err := irActionToPi(mgr, table, mem.Action)
			if err != nil {
				return pi.TableEntry{}, err
			}
			members = append(members, pi.ActionSetMember{Action: &a, Weight: mem.Weight})
		}
		out.ActionSet = &pi.ActionSet{Members: members}
	default:
		return pi.TableEntry{}, p4err.New(p4err.InvalidArgument,
			"table %q: entry carries neither an action nor an action set", table.Name)
	}

	if e.Meter != nil {
		if table.Meter == nil {
			return pi.TableEntry{}, p4err.New(p4err.FailedPrecondition,
				"table %q does not declare a meter but entry carries one", table.Name)
		}
		out.MeterConfig = &pi.MeterConfig{CIR: e.Meter.Rate, PIR: e.Meter.Rate, CBurst: e.Meter.Burst, PBurst: e.Meter.Burst}
	}
	if e.Counter != nil {
		if table.Counter == nil {
			return pi.TableEntry{}, p4err.New(p4err.FailedPrecondition,
				"table %q does not declare a counter but entry carries one", table.Name)
		}
		out.CounterData = &pi.CounterData{ByteCount: e.Counter.Bytes, PacketCount: e.Counter.Packets}
	}

	return out, nil
}

func irMatchToPi(tableName string, mf *p4info.MatchField, m ir.Match) (pi.FieldMatch, error) {
	desc := fmt.Sprintf("table %q match field %q", tableName, mf.Name)
	switch mf.MatchType {
	case p4info.Exact:
		if m.Variant != ir.VariantExact {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: expected an exact match", desc)
		}
		b, err := irvalue.IrToBytes(m.Value, mf.Format)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		norm, err := irvalue.Normalize(b, mf.Bitwidth)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		return pi.FieldMatch{FieldID: mf.ID, Exact: &pi.ExactMatch{Value: irvalue.BytesToCanonical(norm)}}, nil

	case p4info.LPM:
		if m.Variant != ir.VariantLPM {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: expected an LPM match", desc)
		}
		if m.PrefixLength == 0 {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: LPM prefix length must not be zero", desc)
		}
		if m.PrefixLength > mf.Bitwidth {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument,
				"%s: prefix length %d is greater than bitwidth %d", desc, m.PrefixLength, mf.Bitwidth)
		}
		if mf.Format != irvalue.IPv4 && mf.Format != irvalue.IPv6 {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: LPM is only allowed on IPV4 or IPV6 fields", desc)
		}
		b, err := irvalue.IrToBytes(m.Value, mf.Format)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		norm, err := irvalue.Normalize(b, mf.Bitwidth)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		mask := prefixMask(m.PrefixLength, bytesForWidth(mf.Bitwidth))
		if !andNotIsZero(norm, mask) {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument,
				"%s: value has bits set beyond prefix length %d", desc, m.PrefixLength)
		}
		return pi.FieldMatch{FieldID: mf.ID, LPM: &pi.LPMMatch{
			Value: irvalue.BytesToCanonical(norm), PrefixLength: int32(m.PrefixLength),
		}}, nil

	case p4info.Ternary:
		if m.Variant != ir.VariantTernary {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: expected a ternary match", desc)
		}
		vb, err := irvalue.IrToBytes(m.Value, mf.Format)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		mb, err := irvalue.IrToBytes(m.Mask, mf.Format)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		normV, err := irvalue.Normalize(vb, mf.Bitwidth)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		normM, err := irvalue.Normalize(mb, mf.Bitwidth)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		allZero := true
		for _, b := range normM {
			if b != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: ternary mask must not be zero", desc)
		}
		if !andNotIsZero(normV, normM) {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument,
				"%s: value has bits set that the mask does not set", desc)
		}
		return pi.FieldMatch{FieldID: mf.ID, Ternary: &pi.TernaryMatch{
			Value: irvalue.BytesToCanonical(normV), Mask: irvalue.BytesToCanonical(normM),
		}}, nil

	case p4info.Optional:
		if m.Variant != ir.VariantOptional {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: expected an optional match", desc)
		}
		b, err := irvalue.IrToBytes(m.Value, mf.Format)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		norm, err := irvalue.Normalize(b, mf.Bitwidth)
		if err != nil {
			return pi.FieldMatch{}, p4err.New(p4err.InvalidArgument, "%s: %v", desc, err)
		}
		return pi.FieldMatch{FieldID: mf.ID, Optional: &pi.OptionalMatch{Value: irvalue.BytesToCanonical(norm)}}, nil

	default:
		return pi.FieldMatch{}, p4err.New(p4err.Unimplemented, "%s: unsupported match type %v", desc, mf.MatchType)
	}
}

func irActionToPi(mgr *p4info.Manager, table *p4info.Table, inv ir.ActionInvocation) (pi.Action, error) {
	action, err := mgr.ActionByName(inv.Name)
	if err != nil {
		return pi.Action{}, err
	}
	if !table.AllowedActionIDs[action.ID] {
		return pi.Action{}, p4err.New(p4err.InvalidArgument,
			"table %q does not allow action %q", table.Name, action.Name)
	}

	seen := make(map[string]bool, len(inv.Params))
	byName := make(map[string]irvalue.Value, len(inv.Params))
	for _, p := range inv.Params {
		if seen[p.Name] {
			return pi.Action{}, p4err.New(p4err.InvalidArgument, "action %q: duplicate param %q", action.Name, p.Name)
		}
		seen[p.Name] = true
		if _, ok := action.ParamsByName[p.Name]; !ok {
			return pi.Action{}, p4err.New(p4err.NotFound, "action %q: no param named %q", action.Name, p.Name)
		}
		byName[p.Name] = p.Value
	}
	if len(inv.Params) != len(action.ParamOrder) {
		return pi.Action{}, p4err.New(p4err.InvalidArgument,
			"action %q: expected %d params, got %d", action.Name, len(action.ParamOrder), len(inv.Params))
	}

	out := pi.Action{ActionID: action.ID, Params: make([]pi.ActionParam, 0, len(action.ParamOrder))}
	for _, ap := range action.ParamOrder {
		v, ok := byName[ap.Name]
		if !ok {
			return pi.Action{}, p4err.New(p4err.InvalidArgument, "action %q: missing param %q", action.Name, ap.Name)
		}
		b, err := irvalue.IrToBytes(v, ap.Format)
		if err != nil {
			return pi.Action{}, p4err.New(p4err.InvalidArgument, "action %q param %q: %v", action.Name, ap.Name, err)
		}
		norm, err := irvalue.Normalize(b, ap.Bitwidth)
		if err != nil {
			return pi.Action{}, p4err.New(p4err.InvalidArgument, "action %q param %q: %v", action.Name, ap.Name, err)
		}
		out.Params = append(out.Params, pi.ActionParam{ParamID: ap.ID, Value: irvalue.BytesToCanonical(norm)})
	}
	return out, nil
}
