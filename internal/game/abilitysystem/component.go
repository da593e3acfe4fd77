// Package abilitysystem implements the per-unit ability-system component:
// granted ability specs, attributes and active effects, gameplay events,
// confirm/cancel input routing, the montage slot and prediction keys.
package abilitysystem

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/anim"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/effect"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// Component is the ability-system component of one unit.
//
// Not safe for concurrent use: every method runs on the world tick goroutine.
type Component struct {
	avatar            *model.Actor
	persistentID      uuid.UUID
	anim              *anim.Instance
	attrs             *attribute.Set
	effects           *effect.Container
	looseTags         tag.Container
	locallyControlled bool

	specs      []*Spec
	nextHandle SpecHandle

	predictionKey model.PredictionKey

	events         []*eventListener
	nextListenerID uint64

	localConfirm callbackList
	localCancel  callbackList
	replicated   map[replicatedKey]*replicatedEntry

	animating   Ability
	montage     *data.Montage
	montageInst *anim.MontageInstance

	targetActors       map[string]TargetActor
	targetActorFactory TargetActorFactory

	// Signals exposed to abilities and UI.
	AbilityActivated    event.Signal[*Spec]
	AbilityEnded        event.Signal[EndedEvent]
	AbilityLevelChanged event.Signal[*Spec]
	ActivationFailed    event.Signal[FailureEvent]
}

// New creates a component for avatar playing montages on animInst.
// animInst may be nil for units without animation.
func New(avatar *model.Actor, animInst *anim.Instance) *Component {
	attrs := attribute.NewSet()
	c := &Component{
		avatar:       avatar,
		anim:         animInst,
		attrs:        attrs,
		effects:      effect.NewContainer(attrs),
		replicated:   make(map[replicatedKey]*replicatedEntry),
		targetActors: make(map[string]TargetActor),
	}
	if animInst != nil {
		animInst.SetNotifyHandler(c.onAnimNotify)
	}
	return c
}

// Avatar returns the actor this component acts for.
func (c *Component) Avatar() *model.Actor {
	return c.avatar
}

// SetPersistentID keys durable state of the unit, such as recorded
// cooldowns, by id instead of the per-process avatar id.
func (c *Component) SetPersistentID(id uuid.UUID) {
	c.persistentID = id
}

// PersistentID returns the id set by SetPersistentID, the avatar id otherwise.
func (c *Component) PersistentID() uuid.UUID {
	if c.persistentID != uuid.Nil {
		return c.persistentID
	}
	if c.avatar != nil {
		return c.avatar.ID()
	}
	return uuid.Nil
}

// Anim returns the animation instance, nil when the unit has none.
func (c *Component) Anim() *anim.Instance {
	return c.anim
}

// Attributes returns the unit attribute set.
func (c *Component) Attributes() *attribute.Set {
	return c.attrs
}

// Effects returns the active effect container.
func (c *Component) Effects() *effect.Container {
	return c.effects
}

// SetLocallyControlled marks the unit as controlled by this peer.
func (c *Component) SetLocallyControlled(v bool) {
	c.locallyControlled = v
}

// IsLocallyControlled returns true if this peer controls the unit.
func (c *Component) IsLocallyControlled() bool {
	return c.locallyControlled
}

// ExecutionContext builds the replication context for an ability with policy.
func (c *Component) ExecutionContext(policy model.NetExecutionPolicy) model.ExecutionContext {
	role := model.RoleNone
	if c.avatar != nil {
		role = c.avatar.Role()
	}
	return model.ExecutionContext{
		Role:              role,
		Policy:            policy,
		LocallyControlled: c.locallyControlled,
	}
}

// ApplyEffectToSelf applies spec with this unit as instigator.
func (c *Component) ApplyEffectToSelf(spec *effect.Spec) effect.ActiveHandle {
	if spec.Instigator == nil {
		spec.Instigator = c.avatar
	}
	return c.effects.Apply(spec)
}

// ApplyEffectToTarget applies spec on target.
func (c *Component) ApplyEffectToTarget(spec *effect.Spec, target *Component) effect.ActiveHandle {
	if target == nil {
		return effect.ActiveHandle{}
	}
	if spec.Instigator == nil {
		spec.Instigator = c.avatar
	}
	return target.effects.Apply(spec)
}

// AddLooseTag adds a tag not owned by any effect (State.Dead).
func (c *Component) AddLooseTag(t tag.Tag) {
	c.looseTags.Add(t)
}

// RemoveLooseTag removes a loose tag.
func (c *Component) RemoveLooseTag(t tag.Tag) {
	c.looseTags.Remove(t)
}

// HasMatchingTag checks loose tags and tags granted by active effects.
func (c *Component) HasMatchingTag(t tag.Tag) bool {
	return c.looseTags.HasTag(t) || c.effects.HasTag(t)
}

// HasAnyMatchingTag returns true if any tag of query matches.
func (c *Component) HasAnyMatchingTag(query tag.Container) bool {
	for _, t := range query.Tags() {
		if c.HasMatchingTag(t) {
			return true
		}
	}
	return false
}

// NewPredictionKey issues the next prediction key of this component.
func (c *Component) NewPredictionKey() model.PredictionKey {
	c.predictionKey++
	return c.predictionKey
}

// Tick advances the montage player and active effects by dt seconds.
func (c *Component) Tick(dt float64) {
	if c.anim != nil {
		c.anim.Tick(dt)
	}
	c.effects.Tick(dt)
}

func (c *Component) onAnimNotify(inst *anim.MontageInstance, n data.Notify) {
	t := tag.Tag(n.EventTag)
	if !t.IsValid() && n.Kind == data.NotifyCastPoint {
		t = tag.EventCastPoint
	}
	if !t.IsValid() {
		return
	}
	slog.Debug("montage notify",
		"montage", inst.Montage.Name,
		"notify", n.Name,
		"tag", t)
	c.HandleGameplayEvent(EventData{
		Tag:        t,
		Instigator: c.avatar,
		Target:     c.avatar,
	})
}

// Owner is implemented by gameplay objects carrying an ability-system component.
type Owner interface {
	AbilitySystem() *Component
}

// AbilitySystem implements Owner.
func (c *Component) AbilitySystem() *Component {
	return c
}

// FromActor returns the component of the object owning actor, or nil.
func FromActor(a *model.Actor) *Component {
	if a == nil {
		return nil
	}
	if o, ok := a.Data.(Owner); ok {
		return o.AbilitySystem()
	}
	return nil
}
