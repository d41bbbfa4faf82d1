package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ent0n29/talentscout/internal/generation"
	"github.com/ent0n29/talentscout/internal/intake"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientAction MessageType = "client_action"
	TypeScreenView   MessageType = "screen_view"
	TypeSystemEvent  MessageType = "system_event"
	TypeErrorEvent   MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientAction carries one flow action from the widget.
type ClientAction struct {
	Type      MessageType               `json:"type"`
	SessionID string                    `json:"session_id"`
	Action    intake.Action             `json:"action"`
	Intake    *intake.IntakeForm        `json:"intake,omitempty"`
	TechStack string                    `json:"tech_stack,omitempty"`
	Settings  *generation.SettingsPatch `json:"settings,omitempty"`
}

func (a ClientAction) Command() intake.Command {
	return intake.Command{
		Action:    a.Action,
		Intake:    a.Intake,
		TechStack: a.TechStack,
		Settings:  a.Settings,
	}
}

type ScreenView struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	View      intake.View `json:"view"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType  `json:"type"`
	SessionID string       `json:"session_id"`
	Code      string       `json:"code"`
	Source    string       `json:"source"`
	Retryable bool         `json:"retryable"`
	Detail    string       `json:"detail"`
	Fields    []string     `json:"fields,omitempty"`
	View      *intake.View `json:"view,omitempty"`
}

func NewScreenView(v intake.View) ScreenView {
	return ScreenView{Type: TypeScreenView, SessionID: v.SessionID, View: v}
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientAction:
		var msg ClientAction
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || !msg.Action.Valid() {
			return nil, errors.New("invalid client_action")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
