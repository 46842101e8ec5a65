package blocks

import (
	"github.com/google/uuid"
)

// LegacyField maps a flat top-level prop from the old layout to the
// child block that carries it now.
type LegacyField struct {
	Prop      string // legacy flat prop name
	ChildType string // kind of the child block that owns the value now
	ChildProp string // prop on that child block
}

// FlatToChildren builds a MigrateFunc for kinds whose old layout kept
// plain string fields at the top level where the current schema expects
// a nested child-block list under childKey.
//
// The migration starts from the kind's modern default children, then
// overlays any legacy values that are still valid. Consumed legacy props
// are removed; everything else is preserved as an override. Props that
// already have the child list are left untouched, which makes the
// migration idempotent.
func FlatToChildren(childKey string, fields []LegacyField, defaults []*Block) MigrateFunc {
	return func(props map[string]interface{}) (map[string]interface{}, bool) {
		if props == nil {
			return props, false
		}

		// already modern
		if _, ok := BlockList(props[childKey]); ok {
			return props, false
		}

		// nothing to migrate from
		legacy := false
		for _, field := range fields {
			if _, ok := props[field.Prop].(string); ok {
				legacy = true
				break
			}
		}
		if !legacy {
			return props, false
		}

		children := make([]*Block, 0, len(defaults))
		for _, def := range defaults {
			child := def.Clone()
			if child.ID == "" {
				child.ID = uuid.New().String()
			}
			children = append(children, child)
		}

		out := make(map[string]interface{}, len(props)+1)
		for key, value := range props {
			out[key] = value
		}

		for _, field := range fields {
			value, ok := out[field.Prop].(string)
			if !ok {
				continue
			}

			for _, child := range children {
				if child.Type == field.ChildType {
					child.Props[field.ChildProp] = value
					break
				}
			}

			delete(out, field.Prop)
		}

		list := make([]interface{}, 0, len(children))
		for _, child := range children {
			list = append(list, child.ToMap())
		}
		out[childKey] = list

		return out, true
	}
}
