package domain

// Capability is a named permission a role may or may not hold. Action
// capabilities use the same names as the wire message types they gate.
type Capability string

const (
	CapMutateStateDoc             Capability = "mutate-state-doc"
	CapSetListeningView           Capability = "set-listening-view"
	CapSetViewBackgroundListening Capability = "set-view-background-listening"
	CapSetViewBlurred             Capability = "set-view-blurred"
	CapReloadView                 Capability = "reload-view"
	CapRotateStream               Capability = "rotate-stream"
	CapBrowse                     Capability = "browse"
	CapDevTools                   Capability = "dev-tools"
	CapUpdateCustomStream         Capability = "update-custom-stream"
	CapDeleteCustomStream         Capability = "delete-custom-stream"
	CapSetStreamCensored          Capability = "set-stream-censored"
	CapSetStreamRunning           Capability = "set-stream-running"
	CapCreateInvite               Capability = "create-invite"
	CapDeleteToken                Capability = "delete-token"
	CapEditTokens                 Capability = "edit-tokens"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapMutateStateDoc:             true,
		CapSetListeningView:           true,
		CapSetViewBackgroundListening: true,
		CapSetViewBlurred:             true,
		CapReloadView:                 true,
		CapRotateStream:               true,
		CapBrowse:                     true,
		CapDevTools:                   true,
		CapUpdateCustomStream:         true,
		CapDeleteCustomStream:         true,
		CapSetStreamCensored:          true,
		CapSetStreamRunning:           true,
		CapCreateInvite:               true,
		CapDeleteToken:                true,
		CapEditTokens:                 true,
	},
	RoleOperator: {
		CapMutateStateDoc:             true,
		CapSetListeningView:           true,
		CapSetViewBackgroundListening: true,
		CapSetViewBlurred:             true,
		CapReloadView:                 true,
		CapRotateStream:               true,
		CapBrowse:                     true,
		CapUpdateCustomStream:         true,
		CapDeleteCustomStream:         true,
		CapSetStreamCensored:          true,
		CapCreateInvite:               true,
	},
	RoleMonitor: {
		CapSetListeningView: true,
		CapSetViewBlurred:   true,
		CapSetStreamCensored: true,
	},
}

// RoleCan reports whether role holds the capability. Roles and capabilities
// without an entry are denied.
func RoleCan(role Role, cap Capability) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	return caps[cap]
}
