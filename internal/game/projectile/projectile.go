// Package projectile moves ability projectiles and applies their effect
// container when they reach a target.
package projectile

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/ability"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// HitRadius is the collision radius of every projectile.
const HitRadius = 32

// Overlapper finds actors around a point.
type Overlapper interface {
	// ActorsInRadius returns actors whose collision circle intersects the
	// circle of radius around center, nearest first.
	ActorsInRadius(center model.Vector, radius float64) []*model.Actor
}

// Projectile is a spawned ability projectile.
//
// Not safe for concurrent use: ticked by the world.
type Projectile struct {
	actor     *model.Actor
	req       ability.ProjectileRequest
	world     Overlapper
	direction model.Vector
	travelled float64
	done      bool

	// Hit fires once with the actor the effects were applied to.
	Hit event.Signal[*model.Actor]
}

// New creates a projectile for req. The actor is not registered in any world.
func New(req ability.ProjectileRequest, world Overlapper) *Projectile {
	p := &Projectile{
		actor:     model.NewActor(req.Static.Class, model.ObjectProjectile, req.Location),
		req:       req,
		world:     world,
		direction: req.Direction,
	}
	p.actor.SetRotation(req.Rotation)
	p.actor.SetRadius(HitRadius)
	if src := p.sourceActor(); src != nil {
		p.actor.SetFaction(src.Faction())
	}
	p.actor.Data = p
	return p
}

// Actor returns the world actor of the projectile.
func (p *Projectile) Actor() *model.Actor {
	return p.actor
}

// Target returns the homing target, nil for directional projectiles.
func (p *Projectile) Target() *model.Actor {
	return p.req.Target
}

// Behavior returns how the projectile finds its target.
func (p *Projectile) Behavior() data.ProjectileBehavior {
	if p.req.Target != nil {
		return data.ProjectileTargeted
	}
	return p.req.Static.Behavior
}

// Travelled returns the distance covered so far.
func (p *Projectile) Travelled() float64 {
	return p.travelled
}

// IsDone returns true once the projectile hit something or ran out of range.
func (p *Projectile) IsDone() bool {
	return p.done
}

// Tick moves the projectile by dt seconds.
func (p *Projectile) Tick(dt float64) {
	if p.done || dt <= 0 {
		return
	}

	step := p.req.Static.Speed * dt
	if step <= 0 {
		p.destroy()
		return
	}

	if p.Behavior() == data.ProjectileTargeted {
		p.tickTargeted(step)
	} else {
		p.tickDirectional(step)
	}

	if !p.done && p.req.Static.Range > 0 && p.travelled >= p.req.Static.Range {
		slog.Debug("projectile out of range",
			"projectile", p.req.Static.Class,
			"travelled", p.travelled)
		p.destroy()
	}
}

func (p *Projectile) tickTargeted(step float64) {
	target := p.req.Target
	if target == nil || target.IsPendingKill() {
		p.destroy()
		return
	}

	loc := p.actor.Location()
	toTarget := target.Location().Sub(loc)
	dist := toTarget.Length()
	reach := dist - target.Radius() - HitRadius
	if step >= reach {
		p.actor.SetLocation(target.Location())
		p.travelled += max(reach, 0)
		p.hit(target)
		return
	}

	p.direction = toTarget.Normal()
	p.actor.SetLocationAndRotation(loc.Add(p.direction.Scale(step)), model.RotatorFromDirection(p.direction))
	p.travelled += step
}

func (p *Projectile) tickDirectional(step float64) {
	if p.req.Static.Range > 0 {
		step = min(step, p.req.Static.Range-p.travelled)
	}
	p.actor.SetLocation(p.actor.Location().Add(p.direction.Scale(step)))
	p.travelled += step

	if p.world == nil {
		return
	}
	for _, other := range p.world.ActorsInRadius(p.actor.Location(), HitRadius) {
		if p.isEnemy(other) {
			p.hit(other)
			return
		}
	}
}

// isEnemy returns true for live actors of another faction carrying an
// ability-system component.
func (p *Projectile) isEnemy(other *model.Actor) bool {
	if other == nil || other == p.actor || other.IsPendingKill() {
		return false
	}
	if src := p.sourceActor(); src != nil && (other == src || other.Faction() == src.Faction()) {
		return false
	}
	return abilitysystem.FromActor(other) != nil
}

// hit applies the effect container to target only and destroys the projectile.
func (p *Projectile) hit(target *model.Actor) {
	td := model.NewTargetDataFromActors(target)

	effects := p.req.Effects
	effects.TargetData = td
	handles := effects.Apply()

	if p.req.Source != nil {
		p.req.Source.HandleGameplayEvent(abilitysystem.EventData{
			Tag:        tag.EventProjectileHit,
			Instigator: p.sourceActor(),
			Target:     target,
			TargetData: td,
		})
	}

	slog.Debug("projectile hit",
		"projectile", p.req.Static.Class,
		"ability", p.req.Ability,
		"target", target.Name(),
		"effects", len(handles))

	p.Hit.Emit(target)
	p.destroy()
}

func (p *Projectile) destroy() {
	if p.done {
		return
	}
	p.done = true
	p.actor.Destroy()
	p.Hit.Clear()
}

func (p *Projectile) sourceActor() *model.Actor {
	if p.req.Source == nil {
		return nil
	}
	return p.req.Source.Avatar()
}
