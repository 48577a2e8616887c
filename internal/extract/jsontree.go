package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind enumerates the variants a JSON node can take.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Node is one value of a parsed JSON document. Only the field matching
// Kind is meaningful. Object fields keep document order; a repeated key
// keeps its first position and its last value.
type Node struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	Str    string
	Items  []Node
	Fields []Field
}

type Field struct {
	Key   string
	Value Node
}

// Get returns the value stored under key on an object node.
func (n Node) Get(key string) (Node, bool) {
	if n.Kind != Object {
		return Node{}, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Node{}, false
}

// Has reports whether an object node carries key, whatever its value.
func (n Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// StringValue returns the string held by a String node.
func (n Node) StringValue() (string, bool) {
	if n.Kind != String {
		return "", false
	}
	return n.Str, true
}

var errTrailingData = errors.New("jsontree: unexpected data after top-level value")

// ParseJSON decodes exactly one JSON document. Surrounding whitespace is
// allowed, anything else after the value is an error.
func ParseJSON(data string) (Node, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	n, err := decodeNode(dec)
	if err != nil {
		return Node{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Node{}, errTrailingData
	}
	return n, nil
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Node{}, io.ErrUnexpectedEOF
		}
		return Node{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return Node{}, fmt.Errorf("jsontree: unexpected delimiter %q", rune(t))
	case string:
		return Node{Kind: String, Str: t}, nil
	case json.Number:
		return Node{Kind: Number, Number: t}, nil
	case bool:
		return Node{Kind: Bool, Bool: t}, nil
	case nil:
		return Node{Kind: Null}, nil
	}
	return Node{}, fmt.Errorf("jsontree: unexpected token %T", tok)
}

func decodeObject(dec *json.Decoder) (Node, error) {
	n := Node{Kind: Object}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Node{}, fmt.Errorf("jsontree: object key is %T", tok)
		}
		val, err := decodeNode(dec)
		if err != nil {
			return Node{}, err
		}
		if i, dup := index[key]; dup {
			n.Fields[i].Value = val
			continue
		}
		index[key] = len(n.Fields)
		n.Fields = append(n.Fields, Field{Key: key, Value: val})
	}
	if err := closing(dec, '}'); err != nil {
		return Node{}, err
	}
	return n, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	n := Node{Kind: Array, Items: []Node{}}
	for dec.More() {
		val, err := decodeNode(dec)
		if err != nil {
			return Node{}, err
		}
		n.Items = append(n.Items, val)
	}
	if err := closing(dec, ']'); err != nil {
		return Node{}, err
	}
	return n, nil
}

func closing(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("jsontree: expected %q, got %v", rune(want), tok)
	}
	return nil
}
