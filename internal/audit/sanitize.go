// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"github.com/goccy/go-json"
)

// sensitiveFields lists the JSON field names redacted from AuditLog.OldValue
// and NewValue before a record is persisted. The audit log is append-only
// and never purged, so secrets written to it would live forever.
var sensitiveFields = map[string]bool{
	"password":     true,
	"passwordHash": true,
	"qrToken":      true,
	"accessToken":  true,
}

const redactedPlaceholder = "[REDACTED]"

// SanitizeValue redacts sensitive fields from a JSON-encoded entity
// snapshot. Invalid JSON is returned unmodified: callers only ever pass
// values produced by json.Marshal, so the error path exists only to be
// defensive against a future caller mistake.
func SanitizeValue(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return raw
	}

	redactRecursive(asMap)

	out, err := json.Marshal(asMap)
	if err != nil {
		return raw
	}
	return out
}

func redactRecursive(m map[string]interface{}) {
	for k, v := range m {
		if sensitiveFields[k] {
			m[k] = redactedPlaceholder
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			redactRecursive(nested)
		}
	}
}
