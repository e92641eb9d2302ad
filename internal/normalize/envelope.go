// Package normalize turns raw backend payloads into view models. Decoders in
// this file are the only place that knows about the backend's inconsistent
// list envelopes; mappers elsewhere in the package work on typed DTOs.
package normalize

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"
)

// envelopeKeys are checked after the caller's resource-specific keys.
var envelopeKeys = []string{"data", "items", "results", "rows"}

const maxEnvelopeDepth = 3

// DecodeList extracts the item array from a list response. It accepts a bare
// array, {"data": [...]}, {"<key>": [...]} for any of keys, and those shapes
// nested one level under "data". Unknown shapes decode to nil.
func DecodeList(body []byte, keys ...string) []json.RawMessage {
	return decodeList(bytes.TrimSpace(body), keys, 0)
}

func decodeList(body []byte, keys []string, depth int) []json.RawMessage {
	if len(body) == 0 || depth > maxEnvelopeDepth {
		return nil
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil
		}
		return items
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil
		}
		for _, key := range append(append([]string{}, keys...), envelopeKeys...) {
			inner, ok := envelope[key]
			if !ok {
				continue
			}
			inner = bytes.TrimSpace(inner)
			if len(inner) == 0 || inner[0] == 'n' {
				continue
			}
			if items := decodeList(inner, keys, depth+1); items != nil {
				return items
			}
		}
	}
	return nil
}

// DecodeObject extracts a single object from a detail response, unwrapping
// {"data": {...}} or {"<key>": {...}} when present.
func DecodeObject(body []byte, keys ...string) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	for _, key := range append(append([]string{}, keys...), "data") {
		if inner, ok := envelope[key]; ok {
			inner = bytes.TrimSpace(inner)
			if len(inner) > 0 && inner[0] == '{' {
				return inner
			}
		}
	}
	return body
}

// decodeItem decodes one raw item keeping numbers as json.Number so the
// coerce package sees the original digits.
func decodeItem[T any](raw json.RawMessage) (T, error) {
	var item T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	err := dec.Decode(&item)
	return item, err
}

// decodeItems decodes every raw item, skipping the ones that do not fit T.
func decodeItems[T any](resource string, raw []json.RawMessage) []T {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		item, err := decodeItem[T](r)
		if err != nil {
			zap.L().Warn("Skipping malformed item",
				zap.String("resource", resource),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

// decodeSingle decodes a detail payload into T, returning ok=false when the
// payload holds no object.
func decodeSingle[T any](resource string, body []byte, keys ...string) (T, bool) {
	var zero T
	raw := DecodeObject(body, keys...)
	if raw == nil {
		return zero, false
	}
	item, err := decodeItem[T](raw)
	if err != nil {
		zap.L().Warn("Malformed object payload",
			zap.String("resource", resource),
			zap.Error(err))
		return zero, false
	}
	return item, true
}
