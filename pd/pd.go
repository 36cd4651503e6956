// Package pd implements the reflective, bidirectional conversion between
// IR and a program-dependent (PD) schema instance. PD types are ordinary
// Go structs generated (conceptually, by package pdgen) per P4 program;
// this package never compiles in a Go struct definition for any specific
// program. Instead it walks a caller-supplied struct by field name via
// reflect, the same way the source's generic protobuf-reflection approach
// would, but specialized to exported Go struct fields.
//
// Field naming convention (matching package p4name and package pdgen):
//   - A table's PD struct has a "Match" field (pointer to its Match
//     struct), either an "Action" field (interface{} holding a pointer to
//     one of the table's per-action structs) for non-oneshot tables, or
//     an "Actions" field ([]ActionSetElem) for oneshot tables, an optional
//     "Priority" int32, optional "ByteCounter"/"PacketCounter" int64, and
//     an optional "BytesMeterConfig"/"PacketsMeterConfig" pointer.
//   - A Match struct has one exported field per match field, named
//     p4name PascalCase of the P4 field name: a plain string for EXACT,
//     *Ternary for TERNARY, *Lpm for LPM, *Optional for OPTIONAL.
//   - A per-action struct has one exported string field per parameter,
//     named p4name PascalCase of the P4 parameter name.
package pd

import (
	"reflect"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4err"
	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/p4name"
)

// Ternary is the common PD helper message for a ternary match.
type Ternary struct {
	Value string
	Mask  string
}

// Lpm is the common PD helper message for an LPM match.
type Lpm struct {
	Value        string
	PrefixLength int32
}

// Optional is the common PD helper message for an optional match.
type Optional struct {
	Value string
}

// BytesMeterConfig is the PD meter message for a byte-accounted meter.
type BytesMeterConfig struct {
	Cir    int64
	Cburst int64
}

// PacketsMeterConfig is the PD meter message for a packet-accounted meter.
type PacketsMeterConfig struct {
	Cir    int64
	Cburst int64
}

// ActionSetElem is one member of a PD "Actions" repeated field (an
// oneshot table entry's action set).
type ActionSetElem struct {
	Action interface{}
	Weight int32
}

// Registry supplies the concrete Go types generated (conceptually) for one
// P4 program's PD schema: a table's entry-message type and an action's
// param-message type, keyed by P4 name. TableEntryToPD uses it to pick
// which concrete struct to instantiate for a table or action.
type Registry struct {
	TableEntryTypes map[string]reflect.Type // table name -> *struct type (pointer element type)
	ActionTypes     map[string]reflect.Type // action name -> *struct type (pointer element type)
}

func outOfSync(kind, name string) error {
	return p4err.New(p4err.FailedPrecondition, "PD and P4Info out of sync: no PD field for %s %q", kind, name)
}

func pascal(name string) string {
	return p4name.ToPascalCase(name)
}

// MatchToPD writes each IR match into a newly allocated Match struct whose
// type is matchType (a struct type, not a pointer), returning a pointer to
// it.
func MatchToPD(table *p4info.Table, matchType reflect.Type, matches []ir.Match) (interface{}, error) {
	dst := reflect.New(matchType)
	elem := dst.Elem()
	for _, m := range matches {
		mf, ok := table.MatchFieldsByName[m.Name]
		if !ok {
			return nil, p4err.New(p4err.NotFound, "table %q: no match field named %q", table.Name, m.Name)
		}
		field := elem.FieldByName(pascal(mf.Name))
		if !field.IsValid() {
			return nil, outOfSync("match field", mf.Name)
		}
		switch mf.MatchType {
		case p4info.Exact, p4info.Optional:
			v := m.Value
			s, err := renderValueString(v)
			if err != nil {
				return nil, err
			}
			if mf.MatchType == p4info.Exact {
				if field.Kind() != reflect.String {
					return nil, p4err.New(p4err.Internal, "match field %q: expected string field for EXACT", mf.Name)
				}
				field.SetString(s)
			} else {
				opt := &Optional{Value: s}
				field.Set(reflect.ValueOf(opt))
			}
		case p4info.LPM:
			s, err := renderValueString(m.Value)
			if err != nil {
				return nil, err
			}
			field.Set(reflect.ValueOf(&Lpm{Value: s, PrefixLength: int32(m.PrefixLength)}))
		case p4info.Ternary:
			vs, err := renderValueString(m.Value)
			if err != nil {
				return nil, err
			}
			ms, err := renderValueString(m.Mask)
			if err != nil {
				return nil, err
			}
			field.Set(reflect.ValueOf(&Ternary{Value: vs, Mask: ms}))
		default:
			return nil, p4err.New(p4err.Unimplemented, "match field %q: unsupported match type %v", mf.Name, mf.MatchType)
		}
	}
	return dst.Interface(), nil
}

// MatchFromPD reads a Match struct (pointer) back into IR matches, using
// table's match-field schema to know each field's kind and format.
func MatchFromPD(table *p4info.Table, src interface{}) ([]ir.Match, error) {
	v := reflect.ValueOf(src)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return nil, p4err.New(p4err.InvalidArgument, "table %q: Match must be a non-nil pointer", table.Name)
	}
	elem := v.Elem()
	out := make([]ir.Match, 0, len(table.MatchFieldsByName))
	for name, mf := range table.MatchFieldsByName {
		_ = name
		field := elem.FieldByName(pascal(mf.Name))
		if !field.IsValid() {
			return nil, outOfSync("match field", mf.Name)
		}
		switch mf.MatchType {
		case p4info.Exact:
			s := field.String()
			if s == "" {
				continue
			}
			val, err := parseValueString(mf.Format, mf.Bitwidth, s)
			if err != nil {
				return nil, err
			}
			out = append(out, ir.Match{Name: mf.Name, Variant: ir.VariantExact, Value: val})
		case p4info.Optional:
			if field.IsNil() {
				continue
			}
			opt := field.Interface().(*Optional)
			val, err := parseValueString(mf.Format, mf.Bitwidth, opt.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, ir.Match{Name: mf.Name, Variant: ir.VariantOptional, Value: val})
		case p4info.LPM:
			if field.IsNil() {
				continue
			}
			lpm := field.Interface().(*Lpm)
			val, err := parseValueString(mf.Format, mf.Bitwidth, lpm.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, ir.Match{Name: mf.Name, Variant: ir.VariantLPM, Value: val, PrefixLength: int(lpm.PrefixLength)})
		case p4info.Ternary:
			if field.IsNil() {
				continue
			}
			tern := field.Interface().(*Ternary)
			val, err := parseValueString(mf.Format, mf.Bitwidth, tern.Value)
			if err != nil {
				return nil, err
			}
			mask, err := parseValueString(mf.Format, mf.Bitwidth, tern.Mask)
			if err != nil {
				return nil, err
			}
			out = append(out, ir.Match{Name: mf.Name, Variant: ir.VariantTernary, Value: val, Mask: mask})
		default:
			return nil, p4err.New(p4err.Unimplemented, "match field %q: unsupported match type %v", mf.Name, mf.MatchType)
		}
	}
	return out, nil
}

// renderValueString renders a typed IR value to the plain string PD
// carries for every non-hex and hex format alike.
func renderValueString(v irvalue.Value) (string, error) {
	switch v.Format {
	case irvalue.Mac:
		return v.Mac, nil
	case irvalue.IPv4:
		return v.IPv4, nil
	case irvalue.IPv6:
		return v.IPv6, nil
	case irvalue.String:
		return v.Str, nil
	case irvalue.HexString:
		return v.HexStr, nil
	default:
		return "", p4err.New(p4err.Internal, "unsupported format %v", v.Format)
	}
}

// parseValueString parses a PD string back into a typed IR value for
// format.
func parseValueString(format irvalue.Format, bitwidth int, s string) (irvalue.Value, error) {
	var b []byte
	var err error
	switch format {
	case irvalue.Mac:
		b, err = irvalue.MacToBytes(s)
	case irvalue.IPv4:
		b, err = irvalue.IPv4ToBytes(s)
	case irvalue.IPv6:
		b, err = irvalue.IPv6ToBytes(s)
	case irvalue.String:
		b = []byte(s)
	case irvalue.HexString:
		return irvalue.FormatToIr(format, bitwidth, mustHexBytes(s))
	default:
		return irvalue.Value{}, p4err.New(p4err.Internal, "unsupported format %v", format)
	}
	if err != nil {
		return irvalue.Value{}, err
	}
	return irvalue.FormatToIr(format, bitwidth, b)
}

func mustHexBytes(s string) []byte {
	b, err := irvalue.IrToBytes(irvalue.Value{Format: irvalue.HexString, HexStr: s}, irvalue.HexString)
	if err != nil {
		return nil
	}
	return b
}

// ActionToPD allocates and fills a new per-action struct of actionType (a
// struct type, not a pointer) from an IR action invocation.
func ActionToPD(action *p4info.Action, actionType reflect.Type, inv ir.ActionInvocation) (interface{}, error) {
	dst := reflect.New(actionType)
	elem := dst.Elem()
	for _, p := range inv.Params {
		ap, ok := action.ParamsByName[p.Name]
		if !ok {
			return nil, p4err.New(p4err.NotFound, "action %q: no param named %q", action.Name, p.Name)
		}
		field := elem.FieldByName(pascal(ap.Name))
		if !field.IsValid() {
			return nil, outOfSync("action param", ap.Name)
		}
		s, err := renderValueString(p.Value)
		if err != nil {
			return nil, err
		}
		field.SetString(s)
	}
	return dst.Interface(), nil
}

// ActionFromPD reads a per-action struct (pointer) back into an IR action
// invocation, using action's parameter schema for format/bitwidth.
func ActionFromPD(action *p4info.Action, src interface{}) (ir.ActionInvocation, error) {
	v := reflect.ValueOf(src)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ir.ActionInvocation{}, p4err.New(p4err.InvalidArgument, "action %q: PD value must be a non-nil pointer", action.Name)
	}
	elem := v.Elem()
	params := make([]ir.ActionParamValue, 0, len(action.ParamOrder))
	for _, ap := range action.ParamOrder {
		field := elem.FieldByName(pascal(ap.Name))
		if !field.IsValid() {
			return ir.ActionInvocation{}, outOfSync("action param", ap.Name)
		}
		val, err := parseValueString(ap.Format, ap.Bitwidth, field.String())
		if err != nil {
			return ir.ActionInvocation{}, err
		}
		params = append(params, ir.ActionParamValue{Name: ap.Name, Value: val})
	}
	return ir.ActionInvocation{Name: action.Name, Params: params}, nil
}
