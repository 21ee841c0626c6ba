package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// Queue triggers, also used as the queue message trigger and metric label.
const (
	TriggerPDFAdded      = "pdf_added"
	TriggerStatusPending = "status_changed"
	TriggerNewRecord     = "new_record"
	TriggerManual        = "manual"
)

// SignatureHeader carries the HMAC of the webhook body.
const SignatureHeader = "X-Airtable-Content-MAC"

const signaturePrefix = "hmac-sha256="

type changePayload struct {
	Payloads []struct {
		Action            string `json:"action"`
		ChangedTablesByID map[string]struct {
			ChangedRecordsByID map[string]recordChange `json:"changedRecordsById"`
		} `json:"changedTablesById"`
	} `json:"payloads"`
}

type recordChange struct {
	Current  recordState `json:"current"`
	Previous recordState `json:"previous"`
}

type recordState struct {
	Fields map[string]any `json:"fields"`
}

// queueRequest is one record a change payload asks to evaluate.
type queueRequest struct {
	RecordID    string
	StartupName string
	Trigger     string
}

// requestsFrom walks create and update payloads and keeps records whose deck
// was added, whose status moved to Pending, or that were created with a deck.
// Records are returned sorted by id within each payload.
func requestsFrom(p changePayload) []queueRequest {
	var out []queueRequest
	for _, pl := range p.Payloads {
		if pl.Action != "create" && pl.Action != "update" {
			continue
		}
		for _, table := range pl.ChangedTablesByID {
			ids := make([]string, 0, len(table.ChangedRecordsByID))
			for id := range table.ChangedRecordsByID {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				trigger := triggerFor(pl.Action, table.ChangedRecordsByID[id])
				if trigger == "" {
					continue
				}
				name, _ := table.ChangedRecordsByID[id].Current.Fields[domain.FieldStartupName].(string)
				if strings.TrimSpace(name) == "" {
					name = "Unknown"
				}
				out = append(out, queueRequest{RecordID: id, StartupName: name, Trigger: trigger})
			}
		}
	}
	return out
}

func triggerFor(action string, c recordChange) string {
	cur, prev := c.Current.Fields, c.Previous.Fields
	hasDeck := present(cur[domain.FieldPitchDeck])
	switch {
	case hasDeck && !present(prev[domain.FieldPitchDeck]):
		return TriggerPDFAdded
	case cur[domain.FieldStatus] == string(domain.StatusPending) && prev[domain.FieldStatus] != string(domain.StatusPending):
		return TriggerStatusPending
	case action == "create" && hasDeck:
		return TriggerNewRecord
	default:
		return ""
	}
}

// present reports whether a decoded JSON value is non-empty.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

// validSignature checks header against the HMAC-SHA256 of body.
func validSignature(secret, header string, body []byte) bool {
	return hmac.Equal([]byte(strings.ToLower(strings.TrimSpace(header))), []byte(sign(secret, body)))
}

// sign returns the signature header value for body. The secret is base64 as
// issued by the record store; a secret that does not decode is used as raw
// bytes.
func sign(secret string, body []byte) string {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key = []byte(secret)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
