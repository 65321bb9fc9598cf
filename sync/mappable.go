package sync

import (
	"sort"

	"github.com/tidwall/sjson"
)

// Mappable provides a common interface for payloads built from field mappings.
type Mappable interface {
	GetFields() map[string]interface{}
	SetField(key string, value interface{})
	DeleteField(key string)
}

// Payload is a request body under construction. Keys are sjson paths,
// so "address.city" produces a nested object.
type Payload struct {
	Fields map[string]interface{}
}

func NewPayload() *Payload {
	return &Payload{Fields: make(map[string]interface{})}
}

// GetFields returns the payload's field map.
func (p *Payload) GetFields() map[string]interface{} { return p.Fields }

// SetField sets a field on the payload.
func (p *Payload) SetField(key string, value interface{}) { p.Fields[key] = value }

// DeleteField deletes a field from the payload.
func (p *Payload) DeleteField(key string) { delete(p.Fields, key) }

// SetRef attaches a remote record under "<entity>_slug" or "<entity>_id".
// The preferred identifier kind is used when present, otherwise the other one.
func (p *Payload) SetRef(entity string, ref RemoteRef, identifier string) {
	key, value := ref.Field(entity, identifier)
	if key != "" {
		p.SetField(key, value)
	}
}

// JSON renders the payload. Keys are applied in sorted order so output is stable.
func (p *Payload) JSON() ([]byte, error) {
	keys := FieldMapsKeysAny(p.Fields)
	sort.Strings(keys)
	result := []byte(`{}`)
	var err error
	for _, k := range keys {
		result, err = sjson.SetBytes(result, k, p.Fields[k])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func FieldMapsKeysAny(m map[string]interface{}) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}

// MapFields maps fields from a source to a destination using the provided mappings.
// Missing or empty source values are left out of the destination.
func MapFields(mappings FieldMappings, source Source, destination Mappable) {
	if mappings.Strings != nil {
		for field, path := range mappings.Strings {
			// handle static strings as well as dynamic paths
			// escaping the value in backticks allows us to distinguish between the two
			if len(path) >= 2 && path[0] == '`' && path[len(path)-1] == '`' {
				destination.SetField(field, path[1:len(path)-1])
				continue
			}
			if result, exists := source.StringForPath(path); exists && result != "" {
				destination.SetField(field, result)
			}
		}
	}
	if mappings.Integers != nil {
		for field, path := range mappings.Integers {
			if result, exists := source.IntForPath(path); exists {
				destination.SetField(field, result)
			}
		}
	}
	if mappings.Booleans != nil {
		for field, path := range mappings.Booleans {
			if result, exists := source.BoolForPath(path); exists {
				destination.SetField(field, result)
			}
		}
	}
}
