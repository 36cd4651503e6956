package p4info

import (
	"fmt"

	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4err"
)

// MatchField is the built, validated form of a table match field.
type MatchField struct {
	ID        uint32
	Name      string
	Bitwidth  int
	MatchType MatchType
	Format    irvalue.Format
}

// ActionParam is the built, validated form of an action parameter.
type ActionParam struct {
	ID       uint32
	Name     string
	Bitwidth int
	Format   irvalue.Format
}

// Action is the built, validated form of an action: its parameters indexed
// both by id and by name, preserving declaration order.
type Action struct {
	ID           uint32
	Name         string
	ParamsByID   map[uint32]*ActionParam
	ParamsByName map[string]*ActionParam
	ParamOrder   []*ActionParam
}

// Table is the built, validated form of a table.
type Table struct {
	ID                 uint32
	Name               string
	MatchFieldsByID     map[uint32]*MatchField
	MatchFieldsByName   map[string]*MatchField
	AllowedActionIDs    map[uint32]bool
	Counter             *RawCounterOrMeterSpec
	Meter               *RawCounterOrMeterSpec
	UsesOneshot         bool
	WeightIDCollision   bool
	Size                int64
	ExactMatchCount     int
}

// RequiresPriority reports whether the table contains any TERNARY, OPTIONAL,
// or RANGE match field, in which case entries must carry a positive
// priority.
func (t *Table) RequiresPriority() bool {
	for _, mf := range t.MatchFieldsByID {
		switch mf.MatchType {
		case Ternary, Optional, Range:
			return true
		}
	}
	return false
}

// PacketMetadata is the built, validated form of a packet-in/out metadata
// field.
type PacketMetadata struct {
	ID       uint32
	Name     string
	Bitwidth int
	Format   irvalue.Format
}

// Manager is the immutable, indexed schema built from a RawP4Info. All
// lookups are id- or name-keyed map accesses; there is no mutation after
// New returns successfully.
type Manager struct {
	TablesByID    map[uint32]*Table
	TablesByName  map[string]*Table
	ActionsByID   map[uint32]*Action
	ActionsByName map[string]*Action

	PacketInByID     map[uint32]*PacketMetadata
	PacketInByName   map[string]*PacketMetadata
	PacketOutByID    map[uint32]*PacketMetadata
	PacketOutByName  map[string]*PacketMetadata

	ForeignKeys []ForeignKey
}

func buildActions(raws []RawAction) (map[uint32]*Action, map[string]*Action, error) {
	byID := make(map[uint32]*Action, len(raws))
	byName := make(map[string]*Action, len(raws))
	for _, ra := range raws {
		if _, dup := byID[ra.Preamble.ID]; dup {
			return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate action id %d", ra.Preamble.ID)
		}
		if _, dup := byName[ra.Preamble.Alias]; dup {
			return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate action name %q", ra.Preamble.Alias)
		}
		paramsByID := make(map[uint32]*ActionParam, len(ra.Params))
		paramsByName := make(map[string]*ActionParam, len(ra.Params))
		order := make([]*ActionParam, 0, len(ra.Params))
		for _, rp := range ra.Params {
			fieldDesc := fmt.Sprintf("action %q param %q", ra.Preamble.Alias, rp.Name)
			format, err := deriveFormat(fieldDesc, rp.Annotations, rp.Bitwidth, rp.TypeName)
			if err != nil {
				return nil, nil, err
			}
			if _, dup := paramsByID[rp.ID]; dup {
				return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate param id %d in %s", rp.ID, fieldDesc)
			}
			if _, dup := paramsByName[rp.Name]; dup {
				return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate param name in %s", fieldDesc)
			}
			ap := &ActionParam{ID: rp.ID, Name: rp.Name, Bitwidth: rp.Bitwidth, Format: format}
			paramsByID[rp.ID] = ap
			paramsByName[rp.Name] = ap
			order = append(order, ap)
		}
		a := &Action{
			ID:           ra.Preamble.ID,
			Name:         ra.Preamble.Alias,
			ParamsByID:   paramsByID,
			ParamsByName: paramsByName,
			ParamOrder:   order,
		}
		byID[a.ID] = a
		byName[a.Name] = a
	}
	return byID, byName, nil
}

func buildTables(raws []RawTable, actionsByID map[uint32]*Action) (map[uint32]*Table, map[string]*Table, error) {
	byID := make(map[uint32]*Table, len(raws))
	byName := make(map[string]*Table, len(raws))
	for _, rt := range raws {
		if _, dup := byID[rt.Preamble.ID]; dup {
			return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate table id %d", rt.Preamble.ID)
		}
		if _, dup := byName[rt.Preamble.Alias]; dup {
			return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate table name %q", rt.Preamble.Alias)
		}

		mfByID := make(map[uint32]*MatchField, len(rt.MatchFields))
		mfByName := make(map[string]*MatchField, len(rt.MatchFields))
		exactCount := 0
		for _, rmf := range rt.MatchFields {
			fieldDesc := fmt.Sprintf("table %q match field %q", rt.Preamble.Alias, rmf.Name)
			format, err := deriveFormat(fieldDesc, rmf.Annotations, rmf.Bitwidth, rmf.TypeName)
			if err != nil {
				return nil, nil, err
			}
			if _, dup := mfByID[rmf.ID]; dup {
				return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate match field id %d in %s", rmf.ID, fieldDesc)
			}
			if _, dup := mfByName[rmf.Name]; dup {
				return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate match field name in %s", fieldDesc)
			}
			mf := &MatchField{ID: rmf.ID, Name: rmf.Name, Bitwidth: rmf.Bitwidth, MatchType: rmf.MatchType, Format: format}
			mfByID[mf.ID] = mf
			mfByName[mf.Name] = mf
			if mf.MatchType == Exact {
				exactCount++
			}
		}

		allowed := make(map[uint32]bool, len(rt.ActionRefs))
		weightCollision := false
		for _, ref := range rt.ActionRefs {
			act, ok := actionsByID[ref.ActionID]
			if !ok {
				return nil, nil, p4err.New(p4err.InvalidArgument,
					"table %q references undefined action id %d", rt.Preamble.Alias, ref.ActionID)
			}
			allowed[ref.ActionID] = true
			if rt.UsesOneshot && act.ID == rt.WeightActionProtoID {
				weightCollision = true
			}
		}

		t := &Table{
			ID:                rt.Preamble.ID,
			Name:              rt.Preamble.Alias,
			MatchFieldsByID:   mfByID,
			MatchFieldsByName: mfByName,
			AllowedActionIDs:  allowed,
			Counter:           rt.Counter,
			Meter:             rt.Meter,
			UsesOneshot:       rt.UsesOneshot,
			WeightIDCollision: weightCollision,
			Size:              rt.Size,
			ExactMatchCount:   exactCount,
		}
		byID[t.ID] = t
		byName[t.Name] = t
	}
	return byID, byName, nil
}

func buildPacketMetadata(raws []RawPacketMetadata, direction string) (map[uint32]*PacketMetadata, map[string]*PacketMetadata, error) {
	byID := make(map[uint32]*PacketMetadata, len(raws))
	byName := make(map[string]*PacketMetadata, len(raws))
	for _, rm := range raws {
		fieldDesc := fmt.Sprintf("%s metadata %q", direction, rm.Name)
		format, err := deriveFormat(fieldDesc, rm.Annotations, rm.Bitwidth, rm.TypeName)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := byID[rm.ID]; dup {
			return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate %s metadata id %d", direction, rm.ID)
		}
		if _, dup := byName[rm.Name]; dup {
			return nil, nil, p4err.New(p4err.InvalidArgument, "duplicate %s metadata name %q", direction, rm.Name)
		}
		pm := &PacketMetadata{ID: rm.ID, Name: rm.Name, Bitwidth: rm.Bitwidth, Format: format}
		byID[pm.ID] = pm
		byName[pm.Name] = pm
	}
	return byID, byName, nil
}

// New ingests a RawP4Info and builds an indexed, validated Manager.
// Construction fails if any id or name collides within its kind, or if a
// table references an undefined action id.
func New(raw RawP4Info) (*Manager, error) {
	actionsByID, actionsByName, err := buildActions(raw.Actions)
	if err != nil {
		return nil, err
	}
	tablesByID, tablesByName, err := buildTables(raw.Tables, actionsByID)
	if err != nil {
		return nil, err
	}
	packetInByID, packetInByName, err := buildPacketMetadata(raw.PacketIn, "packet-in")
	if err != nil {
		return nil, err
	}
	packetOutByID, packetOutByName, err := buildPacketMetadata(raw.PacketOut, "packet-out")
	if err != nil {
		return nil, err
	}

	return &Manager{
		TablesByID:      tablesByID,
		TablesByName:    tablesByName,
		ActionsByID:     actionsByID,
		ActionsByName:   actionsByName,
		PacketInByID:    packetInByID,
		PacketInByName:  packetInByName,
		PacketOutByID:   packetOutByID,
		PacketOutByName: packetOutByName,
		ForeignKeys:     raw.ForeignKeys,
	}, nil
}

// TableByID looks up a table, returning a NotFound error if absent.
func (m *Manager) TableByID(id uint32) (*Table, error) {
	t, ok := m.TablesByID[id]
	if !ok {
		return nil, p4err.New(p4err.NotFound, "no table with id %d", id)
	}
	return t, nil
}

// TableByName looks up a table by alias, returning a NotFound error if
// absent.
func (m *Manager) TableByName(name string) (*Table, error) {
	t, ok := m.TablesByName[name]
	if !ok {
		return nil, p4err.New(p4err.NotFound, "no table named %q", name)
	}
	return t, nil
}

// ActionByID looks up an action, returning a NotFound error if absent.
func (m *Manager) ActionByID(id uint32) (*Action, error) {
	a, ok := m.ActionsByID[id]
	if !ok {
		return nil, p4err.New(p4err.NotFound, "no action with id %d", id)
	}
	return a, nil
}

// ActionByName looks up an action by alias, returning a NotFound error if
// absent.
func (m *Manager) ActionByName(name string) (*Action, error) {
	a, ok := m.ActionsByName[name]
	if !ok {
		return nil, p4err.New(p4err.NotFound, "no action named %q", name)
	}
	return a, nil
}

// ForeignKeysFor returns the foreign keys declared on the given table's
// match field (ownerKind must be OwnerMatchField).
func (m *Manager) ForeignKeysFor(table, matchField string) []ForeignKey {
	var out []ForeignKey
	for _, fk := range m.ForeignKeys {
		if fk.OwnerKind == OwnerMatchField && fk.Table == table && fk.MatchField == matchField {
			out = append(out, fk)
		}
	}
	return out
}

// ForeignKeysForParam returns the foreign keys declared on the given
// table's action's parameter (ownerKind must be OwnerActionParam).
func (m *Manager) ForeignKeysForParam(table, action, param string) []ForeignKey {
	var out []ForeignKey
	for _, fk := range m.ForeignKeys {
		if fk.OwnerKind == OwnerActionParam && fk.Table == table && fk.ActionName == action && fk.ParamName == param {
			out = append(out, fk)
		}
	}
	return out
}
