package api

import (
	"encoding/json"
	"strings"
)

// ErrorMessage extracts a human readable message from an error body. It
// understands FastAPI style "detail" (a string, a list of {msg} objects or
// any other JSON value) and a plain "message" field. It returns "" when the
// body is not a JSON object or carries neither field.
func ErrorMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if raw, ok := payload["detail"]; ok && !isNull(raw) {
		return detailMessage(raw)
	}
	if raw, ok := payload["message"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			return msg
		}
	}
	return ""
}

func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			var entry struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(item, &entry); err == nil && entry.Msg != "" {
				parts = append(parts, entry.Msg)
				continue
			}
			parts = append(parts, string(item))
		}
		return strings.Join(parts, ", ")
	}

	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
