package services

import (
	"bytes"
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"cmsadmin/pkg/models"
)

// Item list field names, canonical first. The rest are shapes older
// backend versions returned.
var (
	contentListFields = []string{"items", "contenidos", "contents", "data"}
	noteListFields    = []string{"items", "notas", "notes", "data"}
)

// normalizeList turns any list payload into the canonical envelope. It
// never fails: a body it cannot make sense of becomes the empty envelope.
//
//   - a bare JSON array is taken as the items, with total = len(items)
//   - an object contributes the first of fields that is present; when that
//     field is missing or not an array the whole result is the empty envelope
//   - total, limit and offset default when absent or not non-negative numbers
//     (total to len(items), limit to models.DefaultLimit, offset to 0)
//   - individual items that fail to decode are skipped
func normalizeList[T any](body []byte, fields []string, logger *zap.Logger) models.Envelope[T] {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return models.EmptyEnvelope[T]()
	}

	var bare []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &bare); err != nil {
			logger.Debug("list payload is an invalid array", zap.Error(err))
			return models.EmptyEnvelope[T]()
		}
		items := decodeItems[T](bare, logger)
		return models.Envelope[T]{
			Total: len(items),
			Limit: models.DefaultLimit,
			Items: items,
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		logger.Debug("list payload is not an object", zap.ByteString("body", truncateBody(body)))
		return models.EmptyEnvelope[T]()
	}

	var raw []json.RawMessage
	found := false
	for _, field := range fields {
		value, ok := obj[field]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, &raw); err == nil && raw != nil {
			found = true
		}
		break
	}
	if !found {
		logger.Debug("list payload carries no item array", zap.Strings("fields", fields))
		return models.EmptyEnvelope[T]()
	}

	items := decodeItems[T](raw, logger)
	env := models.Envelope[T]{
		Total:  len(items),
		Limit:  models.DefaultLimit,
		Offset: 0,
		Items:  items,
	}
	if n, ok := nonNegativeInt(obj["total"]); ok {
		env.Total = n
	}
	if n, ok := nonNegativeInt(obj["limit"]); ok && n > 0 {
		env.Limit = n
	}
	if n, ok := nonNegativeInt(obj["offset"]); ok {
		env.Offset = n
	}
	return env
}

func decodeItems[T any](raw []json.RawMessage, logger *zap.Logger) []T {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		if string(bytes.TrimSpace(r)) == "null" {
			continue
		}
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			logger.Debug("skipping undecodable item", zap.Int("index", i), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

func nonNegativeInt(raw json.RawMessage) (int, bool) {
	if raw == nil {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func truncateBody(body []byte) []byte {
	const max = 256
	if len(body) > max {
		return body[:max]
	}
	return body
}
