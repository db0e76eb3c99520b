// Package rpc holds helpers for the JSON-shaped gRPC services, whose messages
// are google.protobuf.Struct values mirroring the HTTP payloads.
package rpc

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts any JSON-serialisable value into a Struct.
func ToStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("response is not an object: %w", err)
	}
	return structpb.NewStruct(m)
}

// String reads a trimmed string field; missing or non-string fields read as "".
func String(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	if sv, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		return strings.TrimSpace(sv.StringValue)
	}
	return ""
}

// Object returns the nested object under key as a plain map.
func Object(s *structpb.Struct, key string) map[string]interface{} {
	if s == nil {
		return nil
	}
	v, ok := s.GetFields()[key]
	if !ok || v.GetStructValue() == nil {
		return nil
	}
	return v.GetStructValue().AsMap()
}
