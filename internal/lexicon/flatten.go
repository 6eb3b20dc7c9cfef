package lexicon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyData is returned when no term data was supplied
	ErrEmptyData = errors.New("term data is empty")
	// ErrNotStructured is returned when the data is a bare scalar
	ErrNotStructured = errors.New("term data must be a list or an object")
)

// Flatten parses structured term data and returns every leaf value in
// document order, however deeply lists and objects are nested. JSON is tried
// first; anything that is not valid JSON is parsed as YAML. Object keys are
// ignored, strings and numbers are leaves, booleans and nulls are dropped.
func Flatten(data []byte) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyData
	}

	leaves, err := flattenJSON(data)
	if err == nil || errors.Is(err, ErrNotStructured) {
		return leaves, err
	}

	var doc yaml.Node
	if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
		return nil, fmt.Errorf("failed to parse term data: json: %w, %w", err, yerr)
	}
	return flattenYAML(&doc)
}

type jsonFrame struct {
	object    bool
	expectKey bool
}

func flattenJSON(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	open, ok := tok.(json.Delim)
	if !ok {
		if _, err := dec.Token(); err != io.EOF {
			return nil, fmt.Errorf("unexpected data after top-level value")
		}
		return nil, ErrNotStructured
	}

	leaves := []string{}
	stack := []jsonFrame{{object: open == '{', expectKey: open == '{'}}
	for len(stack) > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		top := &stack[len(stack)-1]

		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '[', '{':
				if top.object {
					top.expectKey = true
				}
				stack = append(stack, jsonFrame{object: delim == '{', expectKey: delim == '{'})
			default:
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if top.object {
			if top.expectKey {
				top.expectKey = false
				continue
			}
			top.expectKey = true
		}

		switch v := tok.(type) {
		case string:
			leaves = append(leaves, v)
		case json.Number:
			leaves = append(leaves, v.String())
		}
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return leaves, nil
}

func flattenYAML(doc *yaml.Node) ([]string, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, ErrEmptyData
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode && root.Kind != yaml.MappingNode {
		return nil, ErrNotStructured
	}

	leaves := []string{}
	stack := []*yaml.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Kind {
		case yaml.ScalarNode:
			switch n.ShortTag() {
			case "!!str", "!!int", "!!float":
				leaves = append(leaves, n.Value)
			}
		case yaml.SequenceNode:
			for i := len(n.Content) - 1; i >= 0; i-- {
				stack = append(stack, n.Content[i])
			}
		case yaml.MappingNode:
			for i := len(n.Content) - 1; i > 0; i -= 2 {
				stack = append(stack, n.Content[i])
			}
		}
	}
	return leaves, nil
}
