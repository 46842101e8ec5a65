package blocks

import (
	"encoding/json"
)

// Block is one node of a visual-editor document: a unique id, a type
// naming a known block kind, and type-specific props. Props may carry
// nested ordered lists of child blocks for slot-like composition.
type Block struct {
	ID    string                 `json:"id"`
	Type  string                 `json:"type"`
	Props map[string]interface{} `json:"props"`
}

// FromMap decodes a generic JSON object into a Block. The second return
// is false when the value does not look like a block at all.
func FromMap(value interface{}) (*Block, bool) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, false
	}

	kind, ok := obj["type"].(string)
	if !ok {
		return nil, false
	}

	block := &Block{Type: kind}
	if id, ok := obj["id"].(string); ok {
		block.ID = id
	}
	if props, ok := obj["props"].(map[string]interface{}); ok {
		block.Props = props
	} else {
		block.Props = make(map[string]interface{})
	}

	return block, true
}

// ToMap converts a Block back into the generic JSON shape stored in page
// documents.
func (b *Block) ToMap() map[string]interface{} {
	props := b.Props
	if props == nil {
		props = make(map[string]interface{})
	}
	return map[string]interface{}{
		"id":    b.ID,
		"type":  b.Type,
		"props": props,
	}
}

// Clone deep copies a block through JSON, so migrations never alias
// default prop values.
func (b *Block) Clone() *Block {
	data, err := json.Marshal(b)
	if err != nil {
		return &Block{ID: b.ID, Type: b.Type, Props: map[string]interface{}{}}
	}

	var clone Block
	if err := json.Unmarshal(data, &clone); err != nil {
		return &Block{ID: b.ID, Type: b.Type, Props: map[string]interface{}{}}
	}
	if clone.Props == nil {
		clone.Props = make(map[string]interface{})
	}
	return &clone
}

// BlockList extracts a list of block-shaped values. It returns false when
// the value is not a list or none of its items are blocks.
func BlockList(value interface{}) ([]interface{}, bool) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, false
	}

	for _, item := range list {
		if _, ok := FromMap(item); ok {
			return list, true
		}
	}

	return nil, false
}
