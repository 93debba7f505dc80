package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/kholles/internal/apperr"
)

// fieldType is the YAML shape a front matter key must have. Values are
// never coerced: 1.5 is not an integer and 2024 is not a string.
type fieldType int

const (
	typeInt fieldType = iota + 1
	typeString
	typeStringList
	typeIntList
)

func (t fieldType) String() string {
	switch t {
	case typeInt:
		return "an integer"
	case typeString:
		return "a string"
	case typeStringList:
		return "a list of strings"
	case typeIntList:
		return "a list of integers"
	default:
		return "unknown"
	}
}

// fieldTypes maps a key to its required shape. Keys not listed are not
// checked; dates are left to models.Date.
type fieldTypes map[string]fieldType

var (
	proofFieldTypes = fieldTypes{
		"pid":     typeInt,
		"title":   typeString,
		"note":    typeString,
		"authors": typeStringList,
		"tags":    typeStringList,
	}
	weekFieldTypes = fieldTypes{
		"description": typeString,
		"proofs":      typeIntList,
	}
)

const (
	tagNull = "!!null"
	tagInt  = "!!int"
	tagStr  = "!!str"
)

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// check reports the first key of root whose value has the wrong shape.
// A null value passes so that presence rules stay with validation.
func (ft fieldTypes) check(root *yaml.Node) error {
	if root.Kind != yaml.MappingNode {
		return apperr.Kind(apperr.ErrSchema, fmt.Errorf("front matter must be a mapping"))
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := resolveAlias(root.Content[i])
		want, ok := ft[key.Value]
		if !ok {
			continue
		}
		if !want.matches(resolveAlias(root.Content[i+1])) {
			return apperr.Kind(apperr.ErrSchema,
				fmt.Errorf("field %q: must be %s (line %d)", key.Value, want, key.Line))
		}
	}
	return nil
}

func (t fieldType) matches(v *yaml.Node) bool {
	if v.Kind == yaml.ScalarNode && v.ShortTag() == tagNull {
		return true
	}
	switch t {
	case typeInt:
		return isScalar(v, tagInt)
	case typeString:
		return isScalar(v, tagStr)
	case typeStringList:
		return isSequenceOf(v, tagStr)
	case typeIntList:
		return isSequenceOf(v, tagInt)
	}
	return false
}

func isScalar(v *yaml.Node, tag string) bool {
	return v.Kind == yaml.ScalarNode && v.ShortTag() == tag
}

func isSequenceOf(v *yaml.Node, tag string) bool {
	if v.Kind != yaml.SequenceNode {
		return false
	}
	for _, item := range v.Content {
		if !isScalar(resolveAlias(item), tag) {
			return false
		}
	}
	return true
}
