package blocks

import (
	"github.com/sirupsen/logrus"
)

// MigrateFunc rewrites a legacy props shape into the current one. It
// must be idempotent: applying it to already-modern props is a no-op
// (changed=false, props returned unchanged).
type MigrateFunc func(props map[string]interface{}) (map[string]interface{}, bool)

// Kind describes a known block kind: its default props and, when an
// older flattened layout of it exists in stored documents, the migration
// that synthesizes the modern shape.
type Kind struct {
	Name     string
	Defaults map[string]interface{}
	Migrate  MigrateFunc
}

// Registry is the closed set of block kinds a document may contain.
// Blocks of unknown kinds are dropped during sanitization.
type Registry struct {
	kinds map[string]*Kind
}

func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]*Kind),
	}
}

// Register adds or replaces a kind. Last registered wins for a name.
func (r *Registry) Register(kind *Kind) {
	r.kinds[kind.Name] = kind
}

func (r *Registry) Lookup(name string) (*Kind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}

// Sanitize validates a block list against the registry: blocks with an
// unknown type or an empty id are dropped, and nested block lists inside
// props are sanitized recursively.
func (r *Registry) Sanitize(list []interface{}) []interface{} {
	out := make([]interface{}, 0, len(list))

	for _, item := range list {
		block, ok := FromMap(item)
		if !ok {
			continue
		}

		if block.ID == "" {
			logrus.Warnf("dropping block of type %q with empty id", block.Type)
			continue
		}

		if _, known := r.Lookup(block.Type); !known {
			logrus.Warnf("dropping block %s of unknown type %q", block.ID, block.Type)
			continue
		}

		for key, value := range block.Props {
			if children, ok := BlockList(value); ok {
				block.Props[key] = r.Sanitize(children)
			}
		}

		out = append(out, block.ToMap())
	}

	return out
}

// MigrateList runs legacy-shape migration over a block list, recursing
// into nested block lists. Modern blocks pass through unchanged.
func (r *Registry) MigrateList(list []interface{}) ([]interface{}, bool) {
	changed := false
	out := make([]interface{}, 0, len(list))

	for _, item := range list {
		block, ok := FromMap(item)
		if !ok {
			out = append(out, item)
			continue
		}

		if kind, known := r.Lookup(block.Type); known && kind.Migrate != nil {
			props, migrated := kind.Migrate(block.Props)
			if migrated {
				block.Props = props
				changed = true
			}
		}

		for key, value := range block.Props {
			if children, ok := BlockList(value); ok {
				migrated, childChanged := r.MigrateList(children)
				if childChanged {
					block.Props[key] = migrated
					changed = true
				}
			}
		}

		out = append(out, block.ToMap())
	}

	return out, changed
}
