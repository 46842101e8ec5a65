package schema

import (
	"fmt"
	"strings"
)

// Kind discriminates the schema node variants. Field rendering and
// validation switch over this closed set instead of probing value types
// at runtime.
type Kind string

const (
	KindObject Kind = "object"
	KindArray  Kind = "array"
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindEnum   Kind = "enum"
	KindImage  Kind = "image"
)

// Node describes one schema position. Exactly the fields relevant to its
// Kind are set.
type Node struct {
	Kind     Kind
	Fields   []Field  // KindObject, in declaration order
	Elem     *Node    // KindArray
	Values   []string // KindEnum
	Optional bool
}

type Field struct {
	Name string
	Node *Node
}

func Object(fields ...Field) *Node {
	return &Node{Kind: KindObject, Fields: fields}
}

func Array(elem *Node) *Node {
	return &Node{Kind: KindArray, Elem: elem}
}

func String() *Node {
	return &Node{Kind: KindString}
}

func Number() *Node {
	return &Node{Kind: KindNumber}
}

func Bool() *Node {
	return &Node{Kind: KindBool}
}

func Enum(values ...string) *Node {
	return &Node{Kind: KindEnum, Values: values}
}

// Image is a string holding an image URL. Kept distinct from KindString
// so editor tooling can render an image picker for it.
func Image() *Node {
	return &Node{Kind: KindImage}
}

func (n *Node) AsOptional() *Node {
	clone := *n
	clone.Optional = true
	return &clone
}

func NewField(name string, node *Node) Field {
	return Field{Name: name, Node: node}
}

// ValidationError reports the first schema mismatch found, qualified by
// the path to the offending value.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Message)
}

// Validate checks value against the schema. It is exhaustive over Kind;
// an unknown kind is itself a validation failure.
func (n *Node) Validate(value interface{}) error {
	return n.validate("", value)
}

func (n *Node) validate(path string, value interface{}) error {
	if value == nil {
		if n.Optional {
			return nil
		}
		return &ValidationError{Path: path, Message: "value is required"}
	}

	switch n.Kind {
	case KindObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return &ValidationError{Path: path, Message: "expected an object"}
		}
		for _, field := range n.Fields {
			fieldPath := field.Name
			if path != "" {
				fieldPath = path + "." + field.Name
			}
			child, present := obj[field.Name]
			if !present {
				if field.Node.Optional {
					continue
				}
				return &ValidationError{Path: fieldPath, Message: "missing field"}
			}
			if err := field.Node.validate(fieldPath, child); err != nil {
				return err
			}
		}
		return nil

	case KindArray:
		list, ok := value.([]interface{})
		if !ok {
			return &ValidationError{Path: path, Message: "expected an array"}
		}
		for i, item := range list {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if err := n.Elem.validate(itemPath, item); err != nil {
				return err
			}
		}
		return nil

	case KindString, KindImage:
		if _, ok := value.(string); !ok {
			return &ValidationError{Path: path, Message: "expected a string"}
		}
		return nil

	case KindNumber:
		switch value.(type) {
		case float64, float32, int, int64:
			return nil
		}
		return &ValidationError{Path: path, Message: "expected a number"}

	case KindBool:
		if _, ok := value.(bool); !ok {
			return &ValidationError{Path: path, Message: "expected a boolean"}
		}
		return nil

	case KindEnum:
		s, ok := value.(string)
		if !ok {
			return &ValidationError{Path: path, Message: "expected an enum string"}
		}
		for _, v := range n.Values {
			if v == s {
				return nil
			}
		}
		return &ValidationError{Path: path, Message: fmt.Sprintf("%q is not one of [%s]", s, strings.Join(n.Values, ", "))}
	}

	return &ValidationError{Path: path, Message: fmt.Sprintf("unknown schema kind %q", n.Kind)}
}
