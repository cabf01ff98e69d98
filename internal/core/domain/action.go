package domain

import (
	"encoding/json"
	"fmt"
)

// Action is one decoded control message. Each variant declares the capability
// gating it; dispatch happens through a single exhaustive type switch so no
// action can reach a handler without passing the capability check first.
type Action interface {
	Type() string
	Capability() Capability
}

type SetListeningView struct {
	// ViewIdx is nil to stop listening entirely.
	ViewIdx *int `json:"viewIdx"`
}

type SetViewBackgroundListening struct {
	ViewIdx   int  `json:"viewIdx"`
	Listening bool `json:"listening"`
}

type SetViewBlurred struct {
	ViewIdx int  `json:"viewIdx"`
	Blurred bool `json:"blurred"`
}

type ReloadView struct {
	ViewIdx int `json:"viewIdx"`
}

type RotateStream struct {
	URL      string `json:"url"`
	Rotation int    `json:"rotation"`
}

type Browse struct {
	URL string `json:"url"`
}

type DevTools struct {
	ViewIdx int `json:"viewIdx"`
}

type UpdateCustomStream struct {
	URL  string `json:"url"`
	Data Stream `json:"data"`
}

type DeleteCustomStream struct {
	URL string `json:"url"`
}

type SetStreamCensored struct {
	IsCensored bool `json:"isCensored"`
}

type SetStreamRunning struct {
	IsStreamRunning bool `json:"isStreamRunning"`
}

type CreateInvite struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type DeleteToken struct {
	TokenID string `json:"tokenId"`
}

func (SetListeningView) Type() string           { return "set-listening-view" }
func (SetListeningView) Capability() Capability { return CapSetListeningView }

func (SetViewBackgroundListening) Type() string { return "set-view-background-listening" }
func (SetViewBackgroundListening) Capability() Capability {
	return CapSetViewBackgroundListening
}

func (SetViewBlurred) Type() string           { return "set-view-blurred" }
func (SetViewBlurred) Capability() Capability { return CapSetViewBlurred }

func (ReloadView) Type() string           { return "reload-view" }
func (ReloadView) Capability() Capability { return CapReloadView }

func (RotateStream) Type() string           { return "rotate-stream" }
func (RotateStream) Capability() Capability { return CapRotateStream }

func (Browse) Type() string           { return "browse" }
func (Browse) Capability() Capability { return CapBrowse }

func (DevTools) Type() string           { return "dev-tools" }
func (DevTools) Capability() Capability { return CapDevTools }

func (UpdateCustomStream) Type() string           { return "update-custom-stream" }
func (UpdateCustomStream) Capability() Capability { return CapUpdateCustomStream }

func (DeleteCustomStream) Type() string           { return "delete-custom-stream" }
func (DeleteCustomStream) Capability() Capability { return CapDeleteCustomStream }

func (SetStreamCensored) Type() string           { return "set-stream-censored" }
func (SetStreamCensored) Capability() Capability { return CapSetStreamCensored }

func (SetStreamRunning) Type() string           { return "set-stream-running" }
func (SetStreamRunning) Capability() Capability { return CapSetStreamRunning }

func (CreateInvite) Type() string           { return "create-invite" }
func (CreateInvite) Capability() Capability { return CapCreateInvite }

func (DeleteToken) Type() string           { return "delete-token" }
func (DeleteToken) Capability() Capability { return CapDeleteToken }

// ActionEnvelope carries the fields common to every control message. The id
// is kept raw so responses can echo it byte for byte.
type ActionEnvelope struct {
	MsgType string          `json:"type"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// ParseAction decodes a JSON control frame into its envelope and typed
// action. Unknown types return ErrUnknownAction; the envelope is still
// populated so the error response can be correlated.
func ParseAction(raw []byte) (ActionEnvelope, Action, error) {
	var env ActionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ActionEnvelope{}, nil, fmt.Errorf("failed to decode action envelope: %w", err)
	}

	var act Action
	switch env.MsgType {
	case "set-listening-view":
		act = &SetListeningView{}
	case "set-view-background-listening":
		act = &SetViewBackgroundListening{}
	case "set-view-blurred":
		act = &SetViewBlurred{}
	case "reload-view":
		act = &ReloadView{}
	case "rotate-stream":
		act = &RotateStream{}
	case "browse":
		act = &Browse{}
	case "dev-tools":
		act = &DevTools{}
	case "update-custom-stream":
		act = &UpdateCustomStream{}
	case "delete-custom-stream":
		act = &DeleteCustomStream{}
	case "set-stream-censored":
		act = &SetStreamCensored{}
	case "set-stream-running":
		act = &SetStreamRunning{}
	case "create-invite":
		act = &CreateInvite{}
	case "delete-token":
		act = &DeleteToken{}
	default:
		return env, nil, ErrUnknownAction
	}

	if err := json.Unmarshal(raw, act); err != nil {
		return env, nil, fmt.Errorf("failed to decode %s payload: %w", env.MsgType, err)
	}
	return env, act, nil
}
