package model

import (
	"sync"

	"github.com/google/uuid"
)

// ObjectType is the collision object type used by cursor traces.
type ObjectType string

const (
	ObjectPawn        ObjectType = "Pawn"
	ObjectWorldStatic ObjectType = "WorldStatic"
	ObjectProjectile  ObjectType = "Projectile"
)

// Actor is the base for every object placed in the world.
// Transform fields are guarded so the fog-of-war timer can sample them.
type Actor struct {
	id         uuid.UUID
	name       string
	objectType ObjectType
	faction    string
	radius     float64

	mu              sync.RWMutex
	location        Vector
	rotation        Rotator
	role            Role
	rootMotionScale float64
	pendingKill     bool

	// Data holds the owning gameplay object (unit, projectile).
	Data any
}

// NewActor creates a new actor with a fresh id.
func NewActor(name string, objectType ObjectType, loc Vector) *Actor {
	return &Actor{
		id:              uuid.New(),
		name:            name,
		objectType:      objectType,
		location:        loc,
		role:            RoleAuthority,
		rootMotionScale: 1,
		radius:          34,
	}
}

// ID returns the unique actor id (immutable).
func (a *Actor) ID() uuid.UUID {
	return a.id
}

// Name returns the actor name.
func (a *Actor) Name() string {
	return a.name
}

// ObjectType returns the collision object type.
func (a *Actor) ObjectType() ObjectType {
	return a.objectType
}

// Faction returns the faction name used by fog of war and hostility checks.
func (a *Actor) Faction() string {
	return a.faction
}

// SetFaction sets the faction. Only call before the actor is shared.
func (a *Actor) SetFaction(f string) {
	a.faction = f
}

// Radius returns the collision radius.
func (a *Actor) Radius() float64 {
	return a.radius
}

// SetRadius sets the collision radius. Only call before the actor is shared.
func (a *Actor) SetRadius(r float64) {
	a.radius = r
}

// Location returns a copy of the actor location.
func (a *Actor) Location() Vector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.location
}

// SetLocation moves the actor.
func (a *Actor) SetLocation(loc Vector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.location = loc
}

// Rotation returns the actor rotation.
func (a *Actor) Rotation() Rotator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rotation
}

// SetRotation sets the actor rotation.
func (a *Actor) SetRotation(r Rotator) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rotation = r
}

// SetLocationAndRotation sets both under a single lock.
func (a *Actor) SetLocationAndRotation(loc Vector, r Rotator) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.location = loc
	a.rotation = r
}

// Forward returns the unit forward vector.
func (a *Actor) Forward() Vector {
	return a.Rotation().Vector()
}

// Role returns the local network role.
func (a *Actor) Role() Role {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.role
}

// SetRole sets the local network role.
func (a *Actor) SetRole(r Role) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.role = r
}

// RootMotionScale returns the animation root motion translation scale.
func (a *Actor) RootMotionScale() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rootMotionScale
}

// SetRootMotionScale sets the animation root motion translation scale.
func (a *Actor) SetRootMotionScale(s float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rootMotionScale = s
}

// Destroy marks the actor for removal on the next world tick.
func (a *Actor) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingKill = true
}

// IsPendingKill returns true once Destroy was called.
func (a *Actor) IsPendingKill() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pendingKill
}
