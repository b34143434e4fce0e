// Package command parses control requests and formats responses.
//
// Two request encodings share one channel: a JSON object with an
// "action" key, and a legacy uppercase text form (RECORD, STOP,
// PLAY 3, ...) kept for interactive MQTT clients. Responses mirror
// the request encoding.
package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/rf433d/internal/store"
)

// MQTT topics for the command channel.
const (
	TopicCommands  = "rf433/commands"
	TopicResponses = "rf433/responses"
)

// Request is a parsed control request.
type Request struct {
	Action  string
	Slot    int
	HasSlot bool
	BadSlot bool // slot argument present but not an integer
	Name    string

	// Legacy marks text-form requests, which get text responses.
	Legacy bool
}

type jsonRequest struct {
	Action string `json:"action"`
	Slot   *int   `json:"slot"`
	Name   string `json:"name"`
}

// Parse decodes a raw payload. JSON objects with an "action" key take
// priority; anything else is treated as a legacy text command.
func Parse(payload string) Request {
	payload = strings.TrimSpace(payload)

	var jr jsonRequest
	if err := json.Unmarshal([]byte(payload), &jr); err == nil && jr.Action != "" {
		req := Request{Action: jr.Action, Name: jr.Name}
		if jr.Slot != nil {
			req.Slot = *jr.Slot
			req.HasSlot = true
		}
		return req
	}

	return parseLegacy(strings.ToUpper(payload))
}

var legacyActions = map[string]string{
	"RECORD": "record",
	"STOP":   "stop",
	"PLAY":   "play",
	"SAVE":   "save",
	"LIST":   "get_slots",
	"DELETE": "delete",
	"STATUS": "status",
}

func parseLegacy(cmd string) Request {
	parts := strings.Fields(cmd)
	verb := ""
	if len(parts) > 0 {
		verb = parts[0]
	}

	req := Request{Legacy: true}
	action, ok := legacyActions[verb]
	if !ok {
		req.Action = verb
		return req
	}
	req.Action = action

	if len(parts) > 1 {
		slot, err := strconv.Atoi(parts[1])
		if err != nil {
			req.BadSlot = true
		} else {
			req.Slot = slot
			req.HasSlot = true
		}
	}
	if action == "save" && len(parts) > 2 {
		req.Name = parts[2]
	}
	return req
}

// Response is a control response. Encode renders it as JSON or as
// legacy text lines depending on the request form.
type Response struct {
	Status     string           `json:"status"`
	Action     string           `json:"action"`
	Message    string           `json:"message,omitempty"`
	Slot       int              `json:"slot,omitempty"`
	Name       string           `json:"name,omitempty"`
	PulseCount int              `json:"pulse_count,omitempty"`
	Protocol   string           `json:"protocol,omitempty"`
	State      string           `json:"state,omitempty"`
	MQTT       *bool            `json:"mqtt,omitempty"`
	Signals    *int             `json:"signals,omitempty"`
	Slots      *[]store.Summary `json:"slots,omitempty"`
}

// OK builds a success response for the given action.
func OK(action string) Response {
	return Response{Status: "ok", Action: action}
}

// Err builds an error response for the given action.
func Err(action, message string) Response {
	return Response{Status: "error", Action: action, Message: message}
}

// Encode renders the response in the encoding matching the request.
func (r Response) Encode(legacy bool) []byte {
	if legacy {
		return []byte(r.Text())
	}
	data, _ := json.Marshal(r)
	return data
}

const commandsHint = "Commands: RECORD STOP PLAY SAVE LIST DELETE STATUS"

// Text renders the legacy text form. Multi-line output uses \n.
func (r Response) Text() string {
	if r.Status == "error" {
		// A stop with no captured signal is a warning, not a failure.
		if r.Action == "stop" && r.Message == "No signal detected" {
			return "WARN No signal detected"
		}
		if strings.HasPrefix(r.Message, "Unknown command:") {
			return "ERR " + r.Message + "\n" + commandsHint
		}
		return "ERR " + r.Message
	}

	switch r.Action {
	case "record":
		return "OK Recording started"
	case "stop":
		return fmt.Sprintf("OK Captured %d pulses (%s)", r.PulseCount, r.Protocol)
	case "play":
		if r.Message == "Playback complete" {
			return "OK Playback complete"
		}
		return fmt.Sprintf("OK Playing slot %d (%s)", r.Slot, r.Name)
	case "save":
		return fmt.Sprintf("OK Saved to slot %d as '%s'", r.Slot, r.Name)
	case "delete":
		return fmt.Sprintf("OK Deleted slot %d", r.Slot)
	case "get_slots":
		if r.Slots == nil || len(*r.Slots) == 0 {
			return "No saved signals"
		}
		var b strings.Builder
		for i, s := range *r.Slots {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "  %d: %s (%d pulses, %s)", s.Slot, s.Name, s.PulseCount, s.Protocol)
		}
		return b.String()
	case "status":
		mqtt := "Disconnected"
		if r.MQTT != nil && *r.MQTT {
			mqtt = "Connected"
		}
		signals := 0
		if r.Signals != nil {
			signals = *r.Signals
		}
		return fmt.Sprintf("State: %s\nMQTT: %s\nSignals: %d",
			titleState(r.State), mqtt, signals)
	}
	return "OK"
}

func titleState(state string) string {
	if state == "" {
		return "?"
	}
	return strings.ToUpper(state[:1]) + state[1:]
}

// Channel is the transport the daemon receives requests on and sends
// responses to.
type Channel interface {
	// Requests returns the stream of raw request payloads.
	Requests() <-chan string

	// Publish sends a response payload.
	Publish(payload []byte) error

	// IsConnected reports whether the transport is currently up.
	IsConnected() bool

	// Close shuts the transport down.
	Close() error
}
