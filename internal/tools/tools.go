// Package tools is the conversational-agent boundary. Each tool call arrives
// as raw JSON naming a tool and its arguments; the handler decodes it into
// the matching typed argument struct, validates, and dispatches to session
// operations. The result is always a human-readable string for the agent to
// relay. Malformed input produces a descriptive string, never an error, so
// the conversation is not interrupted.
package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"tradeboard/internal/metrics"
	"tradeboard/internal/model"
	"tradeboard/internal/session"
)

// Tool names accepted by the handler.
const (
	ToolAddIndicator  = "add_indicator"
	ToolRemove        = "remove_indicator"
	ToolModify        = "modify_indicator"
	ToolList          = "list_indicators"
	ToolSetVisibility = "set_indicator_visibility"
)

// Call is the raw wire shape of one tool call.
type Call struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type addArgs struct {
	Kind   string           `json:"kind"`
	Params model.Parameters `json:"params"`
}

type queryArgs struct {
	Query string `json:"query"`
}

type modifyArgs struct {
	Query  string           `json:"query"`
	Params model.Parameters `json:"params"`
}

type visibilityArgs struct {
	Query   string `json:"query"`
	Visible *bool  `json:"visible"`
}

// Handler dispatches decoded tool calls onto a session.
type Handler struct {
	sess *session.Session
	log  *slog.Logger
	met  *metrics.Metrics
}

// NewHandler creates a Handler. met may be nil.
func NewHandler(sess *session.Session, logger *slog.Logger, met *metrics.Metrics) *Handler {
	return &Handler{sess: sess, log: logger, met: met}
}

// Handle decodes and executes one raw tool call.
func (h *Handler) Handle(raw []byte) string {
	var call Call
	if err := json.Unmarshal(raw, &call); err != nil {
		return fmt.Sprintf("Could not parse the tool call: %v.", err)
	}
	return h.Dispatch(call)
}

// Dispatch executes an already-decoded call.
func (h *Handler) Dispatch(call Call) string {
	if h.met != nil {
		h.met.ToolCallsTotal.WithLabelValues(call.Name).Inc()
	}
	h.log.Info("tool call", "tool", call.Name)

	switch call.Name {
	case ToolAddIndicator:
		var args addArgs
		if msg, ok := decodeArgs(call.Args, &args); !ok {
			return msg
		}
		if strings.TrimSpace(args.Kind) == "" {
			return `The add_indicator tool requires a "kind" argument.`
		}
		return h.sess.AddIndicator(args.Kind, args.Params)

	case ToolRemove:
		var args queryArgs
		if msg, ok := decodeArgs(call.Args, &args); !ok {
			return msg
		}
		if strings.TrimSpace(args.Query) == "" {
			return `The remove_indicator tool requires a "query" argument.`
		}
		return h.sess.RemoveIndicator(args.Query)

	case ToolModify:
		var args modifyArgs
		if msg, ok := decodeArgs(call.Args, &args); !ok {
			return msg
		}
		if strings.TrimSpace(args.Query) == "" {
			return `The modify_indicator tool requires a "query" argument.`
		}
		if len(args.Params) == 0 {
			return `The modify_indicator tool requires a non-empty "params" argument.`
		}
		return h.sess.ModifyIndicator(args.Query, args.Params)

	case ToolSetVisibility:
		var args visibilityArgs
		if msg, ok := decodeArgs(call.Args, &args); !ok {
			return msg
		}
		if strings.TrimSpace(args.Query) == "" {
			return `The set_indicator_visibility tool requires a "query" argument.`
		}
		if args.Visible == nil {
			return `The set_indicator_visibility tool requires a boolean "visible" argument.`
		}
		return h.sess.SetVisible(args.Query, *args.Visible)

	case ToolList:
		return formatList(h.sess.ListIndicators())

	default:
		return fmt.Sprintf("Unknown tool %q. Available tools: %s.", call.Name,
			strings.Join([]string{ToolAddIndicator, ToolRemove, ToolModify, ToolList, ToolSetVisibility}, ", "))
	}
}

// decodeArgs unmarshals args into dst. An absent args object is allowed and
// leaves dst zero-valued; the per-tool validation decides what is required.
func decodeArgs(raw json.RawMessage, dst any) (string, bool) {
	if len(raw) == 0 {
		return "", true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Sprintf("Could not parse the tool arguments: %v.", err), false
	}
	return "", true
}

func formatList(list []model.IndicatorInstance) string {
	if len(list) == 0 {
		return "No indicators are configured."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d indicator(s):\n", len(list))
	for _, inst := range list {
		vis := "visible"
		if !inst.Visible {
			vis = "hidden"
		}
		fmt.Fprintf(&b, "- %s: %s %s (%s)\n", inst.ID, inst.DisplayName, formatOverrides(inst.Parameters), vis)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatOverrides(p model.Parameters) string {
	if len(p) == 0 {
		return "[defaults]"
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "[defaults]"
	}
	return string(data)
}
