package webhook

import (
	"encoding/json"

	"github.com/securityexcellence/lwsync/internal/domain"
	"github.com/securityexcellence/lwsync/internal/productmap"
)

// Action statuses reported per processed line item.
const (
	ActionUnenrolled = "unenrolled"
	ActionUnmapped   = "unmapped"
	ActionFailed     = "failed"
)

// Action is the per-line-item outcome record. Exactly one is produced per
// processed line item, in input order.
type Action struct {
	Status   string            `json:"status"`
	Item     domain.LineItem   `json:"item"`
	LW       *productmap.Entry `json:"lw,omitempty"`
	Response json.RawMessage   `json:"response,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Response is the webhook endpoint's JSON envelope.
type Response struct {
	OK      bool     `json:"ok"`
	Topic   string   `json:"topic,omitempty"`
	Email   string   `json:"email,omitempty"`
	Actions []Action `json:"actions,omitempty"`
	Ignored string   `json:"ignored,omitempty"`
	Skipped string   `json:"skipped,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func unenrolled(item domain.LineItem, lw productmap.Entry, resp json.RawMessage) Action {
	return Action{Status: ActionUnenrolled, Item: item, LW: &lw, Response: resp}
}

func unmapped(item domain.LineItem) Action {
	return Action{Status: ActionUnmapped, Item: item, Reason: "no_mapping"}
}

func failed(item domain.LineItem, lw productmap.Entry, err error) Action {
	return Action{Status: ActionFailed, Item: item, LW: &lw, Error: err.Error()}
}
