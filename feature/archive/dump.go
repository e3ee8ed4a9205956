package archive

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ixp-tracker/feature/registry"
)

// Dump is a full registry snapshot split into the three sections the importer replays.
type Dump struct {
	IX       []registry.Record
	Net      []registry.Record
	NetIXLan []registry.Record
}

// Parse decodes a dump as JSON and falls back to the Python literal syntax
// when the JSON decoder rejects it. Missing sections are empty.
func Parse(raw []byte) (*Dump, error) {
	doc, err := decodeJSON(raw)
	if err != nil {
		literal, litErr := parseLiteral(raw)
		if litErr != nil {
			return nil, fmt.Errorf("dump is neither JSON (%v) nor a literal structure: %w", err, litErr)
		}
		var ok bool
		if doc, ok = literal.(map[string]any); !ok {
			return nil, fmt.Errorf("dump top level is %T, expected a mapping", literal)
		}
	}

	return &Dump{
		IX:       section(doc, registry.EndpointIX),
		Net:      section(doc, registry.EndpointNet),
		NetIXLan: section(doc, registry.EndpointNetIXLan),
	}, nil
}

func decodeJSON(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func section(doc map[string]any, key string) []registry.Record {
	wrapper, ok := doc[key].(map[string]any)
	if !ok {
		return []registry.Record{}
	}
	items, ok := wrapper["data"].([]any)
	if !ok {
		return []registry.Record{}
	}
	records := make([]registry.Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, registry.Record(m))
		}
	}
	return records
}
