package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// TypeRegistry maps named Go types to their JSON encodings so journaled
// cell values survive a replay as their original types instead of
// degrading to generic maps. Values of unregistered types still round
// trip, they just come back as whatever encoding/json produces.
type TypeRegistry struct {
	mu           sync.RWMutex
	nameToType   map[string]reflect.Type
	typeToName   map[reflect.Type]string
	marshalers   map[reflect.Type]func(any) ([]byte, error)
	unmarshalers map[string]func([]byte) (any, error)
}

// globalTypeRegistry is the singleton instance of TypeRegistry
var globalTypeRegistry = NewTypeRegistry()

// NewTypeRegistry creates an empty registry. Most callers want the global
// one through the package-level functions instead.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		nameToType:   make(map[string]reflect.Type),
		typeToName:   make(map[reflect.Type]string),
		marshalers:   make(map[reflect.Type]func(any) ([]byte, error)),
		unmarshalers: make(map[string]func([]byte) (any, error)),
	}
}

// GlobalTypeRegistry returns the global type registry instance.
func GlobalTypeRegistry() *TypeRegistry {
	return globalTypeRegistry
}

// RegisterValueType registers the type of value under typeName in the
// global registry. Structs and pointers to structs are accepted.
//
// Example usage:
//
//	type Task struct {
//		Title string `json:"title"`
//		Done  bool   `json:"done"`
//	}
//
//	store.RegisterValueType(Task{}, "task")
func RegisterValueType(value any, typeName string) error {
	return globalTypeRegistry.Register(reflect.TypeOf(value), typeName)
}

// RegisterValueCodec registers a type with custom JSON marshal and
// unmarshal functions in the global registry.
func RegisterValueCodec(value any, typeName string, marshal func(any) ([]byte, error), unmarshal func([]byte) (any, error)) error {
	return globalTypeRegistry.RegisterCodec(reflect.TypeOf(value), typeName, marshal, unmarshal)
}

// MarshalValue encodes a value using the global registry.
func MarshalValue(value any) ([]byte, error) {
	return globalTypeRegistry.Marshal(value)
}

// UnmarshalValue decodes data produced by MarshalValue using the global
// registry.
func UnmarshalValue(data []byte) (any, error) {
	return globalTypeRegistry.Unmarshal(data)
}

// Register adds a type under typeName.
func (r *TypeRegistry) Register(t reflect.Type, typeName string) error {
	if t == nil {
		return fmt.Errorf("store: cannot register nil type as %q", typeName)
	}
	if t.Kind() != reflect.Struct && !(t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct) {
		return fmt.Errorf("store: type %s must be a struct or pointer to struct", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.typeToName[t]; ok && existing != typeName {
		return fmt.Errorf("store: type %s already registered as %q", t, existing)
	}
	if existing, ok := r.nameToType[typeName]; ok && existing != t {
		return fmt.Errorf("store: name %q already registered for %s", typeName, existing)
	}

	r.nameToType[typeName] = t
	r.typeToName[t] = typeName
	return nil
}

// RegisterCodec adds a type under typeName with custom JSON functions.
func (r *TypeRegistry) RegisterCodec(t reflect.Type, typeName string, marshal func(any) ([]byte, error), unmarshal func([]byte) (any, error)) error {
	if err := r.Register(t, typeName); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if marshal != nil {
		r.marshalers[t] = marshal
	}
	if unmarshal != nil {
		r.unmarshalers[typeName] = unmarshal
	}
	return nil
}

// TypeName returns the registered name for the type of value.
func (r *TypeRegistry) TypeName(value any) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.typeToName[reflect.TypeOf(value)]
	return name, ok
}

// valueEnvelope wraps a registered value with its type name.
type valueEnvelope struct {
	Type  string          `json:"_type"`
	Value json.RawMessage `json:"_value"`
}

// Marshal encodes value, wrapping it with type information when its type
// is registered. Unregistered values use plain JSON.
func (r *TypeRegistry) Marshal(value any) ([]byte, error) {
	if value == nil {
		return json.Marshal(nil)
	}

	t := reflect.TypeOf(value)
	r.mu.RLock()
	typeName, registered := r.typeToName[t]
	marshal := r.marshalers[t]
	r.mu.RUnlock()

	if !registered {
		return json.Marshal(value)
	}

	var data []byte
	var err error
	if marshal != nil {
		data, err = marshal(value)
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return nil, fmt.Errorf("store: marshaling %q value: %w", typeName, err)
	}

	return json.Marshal(valueEnvelope{Type: typeName, Value: data})
}

// Unmarshal decodes data produced by Marshal. Typed envelopes come back
// as the registered type; everything else decodes generically.
func (r *TypeRegistry) Unmarshal(data []byte) (any, error) {
	var envelope valueEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Type != "" {
		return r.unmarshalTyped(envelope)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("store: unmarshaling value: %w", err)
	}
	return value, nil
}

func (r *TypeRegistry) unmarshalTyped(envelope valueEnvelope) (any, error) {
	r.mu.RLock()
	t, known := r.nameToType[envelope.Type]
	unmarshal := r.unmarshalers[envelope.Type]
	r.mu.RUnlock()

	if unmarshal != nil {
		return unmarshal(envelope.Value)
	}
	if !known {
		return nil, fmt.Errorf("store: value type %q not registered", envelope.Type)
	}

	// Decode into a fresh pointer and hand back the same shape the caller
	// registered: a value for struct types, a pointer for pointer types.
	if t.Kind() == reflect.Ptr {
		ptr := reflect.New(t.Elem())
		if err := json.Unmarshal(envelope.Value, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("store: unmarshaling %q value: %w", envelope.Type, err)
		}
		return ptr.Interface(), nil
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(envelope.Value, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("store: unmarshaling %q value: %w", envelope.Type, err)
	}
	return ptr.Elem().Interface(), nil
}
