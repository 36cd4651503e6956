package pd

import (
	"reflect"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/p4err"
	"github.com/p4rtxlate/p4rtxlate/p4info"
)

func matchStructType(dstElem reflect.Value) (reflect.Type, error) {
	f := dstElem.FieldByName("Match")
	if !f.IsValid() {
		return nil, p4err.New(p4err.FailedPrecondition, "PD and P4Info out of sync: table PD struct has no Match field")
	}
	if f.Type().Kind() != reflect.Ptr {
		return nil, p4err.New(p4err.Internal, "Match field must be a pointer type")
	}
	return f.Type().Elem(), nil
}

// TableEntryToPD allocates and fills a new instance of the registry's PD
// struct type for entry.TableName.
func TableEntryToPD(mgr *p4info.Manager, reg Registry, entry ir.TableEntry) (interface{}, error) {
	table, err := mgr.TableByName(entry.TableName)
	if err != nil {
		return nil, err
	}
	entryType, ok := reg.TableEntryTypes[table.Name]
	if !ok {
		return nil, p4err.New(p4err.FailedPrecondition, "no PD type registered for table %q", table.Name)
	}
	dst := reflect.New(entryType)
	elem := dst.Elem()

	matchType, err := matchStructType(elem)
	if err != nil {
		return nil, err
	}
	matchVal, err := MatchToPD(table, matchType, entry.Matches)
	if err != nil {
		return nil, err
	}
	elem.FieldByName("Match").Set(reflect.ValueOf(matchVal))

	if table.RequiresPriority() {
		pf := elem.FieldByName("Priority")
		if !pf.IsValid() {
			return nil, p4err.New(p4err.FailedPrecondition, "table %q PD struct missing Priority field", table.Name)
		}
		pf.SetInt(int64(entry.Priority))
	}

	switch {
	case entry.Action != nil:
		if table.UsesOneshot {
			return nil, p4err.New(p4err.InvalidArgument, "table %q uses one-shot profiles, expected an action set", table.Name)
		}
		af := elem.FieldByName("Action")
		if !af.IsValid() {
			return nil, p4err.New(p4err.FailedPrecondition, "table %q PD struct missing Action field", table.Name)
		}
		actionVal, err := actionInvocationToPD(mgr, reg, *entry.Action)
		if err != nil {
			return nil, err
		}
		af.Set(reflect.ValueOf(actionVal))
	case len(entry.ActionSet) > 0:
		if !table.UsesOneshot {
			return nil, p4err.New(p4err.InvalidArgument, "table %q does not use one-shot profiles, unexpected action set", table.Name)
		}
		asf := elem.FieldByName("Actions")
		if !asf.IsValid() {
			return nil, p4err.New(p4err.FailedPrecondition, "table %q PD struct missing Actions field", table.Name)
		}
		members := make([]ActionSetElem, 0, len(entry.ActionSet))
		for i, mem := range entry.ActionSet {
			if mem.Weight < 1 {
				return nil, p4err.New(p4err.InvalidArgument, "table %q: action set member %d has weight %d", table.Name, i, mem.Weight)
			}
			actionVal, err := actionInvocationToPD(mgr, reg, mem.Action)
			if err != nil {
				return nil, err
			}
			members = append(members, ActionSetElem{Action: actionVal, Weight: mem.Weight})
		}
		asf.Set(reflect.ValueOf(members))
	default:
		return nil, p4err.New(p4err.InvalidArgument, "table %q: entry carries neither an action nor an action set", table.Name)
	}

	if entry.Meter != nil {
		if table.Meter == nil {
			return nil, p4err.New(p4err.FailedPrecondition, "table %q does not declare a meter", table.Name)
		}
		switch table.Meter.Unit {
		case p4info.Packets:
			f := elem.FieldByName("PacketsMeterConfig")
			if !f.IsValid() {
				return nil, outOfSync("meter", table.Name)
			}
			f.Set(reflect.ValueOf(&PacketsMeterConfig{Cir: entry.Meter.Rate, Cburst: entry.Meter.Burst}))
		default:
			f := elem.FieldByName("BytesMeterConfig")
			if !f.IsValid() {
				return nil, outOfSync("meter", table.Name)
			}
			f.Set(reflect.ValueOf(&BytesMeterConfig{Cir: entry.Meter.Rate, Cburst: entry.Meter.Burst}))
		}
	}
	if entry.Counter != nil {
		if table.Counter == nil {
			return nil, p4err.New(p4err.FailedPrecondition, "table %q does not declare a counter", table.Name)
		}
		if table.Counter.Unit == p4info.Bytes || table.Counter.Unit == p4info.Both {
			f := elem.FieldByName("ByteCounter")
			if f.IsValid() {
				f.SetInt(entry.Counter.Bytes)
			}
		}
		if table.Counter.Unit == p4info.Packets || table.Counter.Unit == p4info.Both {
			f := elem.FieldByName("PacketCounter")
			if f.IsValid() {
				f.SetInt(entry.Counter.Packets)
			}
		}
	}

	return dst.Interface(), nil
}

func actionInvocationToPD(mgr *p4info.Manager, reg Registry, inv ir.ActionInvocation) (interface{}, error) {
	action, err := mgr.ActionByName(inv.Name)
	if err != nil {
		return nil, err
	}
	actionType, ok := reg.ActionTypes[action.Name]
	if !ok {
		return nil, p4err.New(p4err.FailedPrecondition, "no PD type registered for action %q", action.Name)
	}
	return ActionToPD(action, actionType, inv)
}

// TableEntryFromPD reads a PD struct pointer (registered for tableName)
// back into IR.
func TableEntryFromPD(mgr *p4info.Manager, reg Registry, tableName string, src interface{}) (ir.TableEntry, error) {
	table, err := mgr.TableByName(tableName)
	if err != nil {
		return ir.TableEntry{}, err
	}
	v := reflect.ValueOf(src)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ir.TableEntry{}, p4err.New(p4err.InvalidArgument, "table %q: PD value must be a non-nil pointer", table.Name)
	}
	elem := v.Elem()

	mf := elem.FieldByName("Match")
	if !mf.IsValid() || mf.IsNil() {
		return ir.TableEntry{}, p4err.New(p4err.InvalidArgument, "table %q: PD entry missing Match", table.Name)
	}
	matches, err := MatchFromPD(table, mf.Interface())
	if err != nil {
		return ir.TableEntry{}, err
	}

	entry := ir.TableEntry{TableName: table.Name, Matches: matches}

	if table.RequiresPriority() {
		pf := elem.FieldByName("Priority")
		if !pf.IsValid() {
			return ir.TableEntry{}, p4err.New(p4err.FailedPrecondition, "table %q PD struct missing Priority field", table.Name)
		}
		entry.Priority = int32(pf.Int())
	}

	if table.UsesOneshot {
		asf := elem.FieldByName("Actions")
		if !asf.IsValid() {
			return ir.TableEntry{}, p4err.New(p4err.FailedPrecondition, "table %q PD struct missing Actions field", table.Name)
		}
		members, ok := asf.Interface().([]ActionSetElem)
		if !ok {
			return ir.TableEntry{}, p4err.New(p4err.Internal, "table %q Actions field has unexpected type", table.Name)
		}
		out := make([]ir.ActionSetMember, 0, len(members))
		for i, m := range members {
			if m.Weight < 1 {
				return ir.TableEntry{}, p4err.New(p4err.InvalidArgument, "table %q: action set member %d has weight %d", table.Name, i, m.Weight)
			}
			inv, err := actionInvocationFromPD(mgr, reg, m.Action)
			if err != nil {
				return ir.TableEntry{}, err
			}
			out = append(out, ir.ActionSetMember{Action: inv, Weight: m.Weight})
		}
		entry.ActionSet = out
	} else {
		af := elem.FieldByName("Action")
		if !af.IsValid() || af.IsNil() {
			return ir.TableEntry{}, p4err.New(p4err.InvalidArgument, "table %q: PD entry missing Action", table.Name)
		}
		inv, err := actionInvocationFromPD(mgr, reg, af.Interface())
		if err != nil {
			return ir.TableEntry{}, err
		}
		entry.Action = &inv
	}

	if table.Meter != nil {
		if table.Meter.Unit == p4info.Packets {
			f := elem.FieldByName("PacketsMeterConfig")
			if f.IsValid() && !f.IsNil() {
				mc := f.Interface().(*PacketsMeterConfig)
				entry.Meter = &ir.MeterConfig{Rate: mc.Cir, Burst: mc.Cburst}
			}
		} else {
			f := elem.FieldByName("BytesMeterConfig")
			if f.IsValid() && !f.IsNil() {
				mc := f.Interface().(*BytesMeterConfig)
				entry.Meter = &ir.MeterConfig{Rate: mc.Cir, Burst: mc.Cburst}
			}
		}
	}
	if table.Counter != nil {
		var cd ir.CounterData
		any := false
		if table.Counter.Unit == p4info.Bytes || table.Counter.Unit == p4info.Both {
			f := elem.FieldByName("ByteCounter")
			if f.IsValid() {
				cd.Bytes = f.Int()
				any = true
			}
		}
		if table.Counter.Unit == p4info.Packets || table.Counter.Unit == p4info.Both {
			f := elem.FieldByName("PacketCounter")
			if f.IsValid() {
				cd.Packets = f.Int()
				any = true
			}
		}
		if any {
			entry.Counter = &cd
		}
	}

	return entry, nil
}

func actionInvocationFromPD(mgr *p4info.Manager, reg Registry, src interface{}) (ir.ActionInvocation, error) {
	// Identify which action this PD struct belongs to by matching its
	// pointer type against the registry.
	t := reflect.TypeOf(src)
	if t == nil || t.Kind() != reflect.Ptr {
		return ir.ActionInvocation{}, p4err.New(p4err.InvalidArgument, "action PD value must be a non-nil pointer")
	}
	for name, at := range reg.ActionTypes {
		if at == t.Elem() {
			action, err := mgr.ActionByName(name)
			if err != nil {
				return ir.ActionInvocation{}, err
			}
			return ActionFromPD(action, src)
		}
	}
	return ir.ActionInvocation{}, p4err.New(p4err.FailedPrecondition, "PD and P4Info out of sync: action struct type %v is not registered", t.Elem())
}
