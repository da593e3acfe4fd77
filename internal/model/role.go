package model

// Role is the local network role of an actor.
type Role int8

const (
	RoleNone Role = iota
	RoleSimulatedProxy
	RoleAutonomousProxy
	RoleAuthority
)

func (r Role) String() string {
	switch r {
	case RoleSimulatedProxy:
		return "SimulatedProxy"
	case RoleAutonomousProxy:
		return "AutonomousProxy"
	case RoleAuthority:
		return "Authority"
	default:
		return "None"
	}
}

// NetExecutionPolicy decides where an ability runs.
type NetExecutionPolicy int8

const (
	PolicyLocalPredicted NetExecutionPolicy = iota
	PolicyLocalOnly
	PolicyServerInitiated
	PolicyServerOnly
)

// ExecutionContext bundles the replication facts every coordinator needs.
// It is built once per activation and passed down instead of re-querying roles.
type ExecutionContext struct {
	Role              Role
	Policy            NetExecutionPolicy
	LocallyControlled bool
}

// HasAuthority returns true on the authoritative peer.
func (c ExecutionContext) HasAuthority() bool {
	return c.Role == RoleAuthority
}

// ShouldObserveTargeting returns true on the peers that trace and listen for
// confirm/cancel: the locally controlling peer and the authority.
func (c ExecutionContext) ShouldObserveTargeting() bool {
	return c.LocallyControlled || c.HasAuthority()
}

// CanScaleRootMotion returns true when this peer may touch the avatar root motion scale.
func (c ExecutionContext) CanScaleRootMotion() bool {
	if c.Role == RoleAuthority {
		return true
	}
	return c.Role == RoleAutonomousProxy && c.Policy == PolicyLocalPredicted
}

// CanApplyOwnerEffects mirrors "authority or valid prediction key": the authority
// always applies, predicting clients apply when they hold a key.
func (c ExecutionContext) CanApplyOwnerEffects(key PredictionKey) bool {
	if c.HasAuthority() {
		return true
	}
	return key.IsValid() && c.Policy == PolicyLocalPredicted
}

// PredictionKey correlates a client-predicted action with its authoritative resolution.
type PredictionKey int32

// IsValid returns true for keys issued by an ability-system component.
func (k PredictionKey) IsValid() bool {
	return k > 0
}
