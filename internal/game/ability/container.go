package ability

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/effect"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// EffectContainer is a set of effects applied together to one kind of target.
type EffectContainer struct {
	TargetType data.EffectTargetType
	Effects    []*effect.Def
}

// EffectContainerSpec is an EffectContainer resolved for one activation:
// effect specs at the ability level and their targets.
type EffectContainerSpec struct {
	Source     *abilitysystem.Component
	TargetData model.TargetDataHandle
	Specs      []*effect.Spec
}

// HasValidEffects returns true if the spec would apply anything.
func (s *EffectContainerSpec) HasValidEffects() bool {
	return len(s.Specs) > 0
}

// AddTargets appends actors to the target data.
func (s *EffectContainerSpec) AddTargets(actors ...*model.Actor) {
	s.TargetData = s.TargetData.Append(model.NewTargetDataFromActors(actors...))
}

// Apply applies every effect spec to every target actor carrying an
// ability-system component.
func (s *EffectContainerSpec) Apply() []effect.ActiveHandle {
	if s.Source == nil {
		return nil
	}
	var handles []effect.ActiveHandle
	for _, actor := range s.TargetData.Actors() {
		target := abilitysystem.FromActor(actor)
		if target == nil {
			continue
		}
		for _, spec := range s.Specs {
			applied := *spec
			applied.TargetData = s.TargetData
			if h := s.Source.ApplyEffectToTarget(&applied, target); h.IsValid() {
				handles = append(handles, h)
			}
		}
	}
	return handles
}

func (a *Ability) buildContainers(row *data.AbilityStatic) map[tag.Tag]EffectContainer {
	out := make(map[tag.Tag]EffectContainer, len(row.EffectContainers))
	for _, def := range row.EffectContainers {
		c := EffectContainer{TargetType: def.TargetType}
		for _, ed := range def.Effects {
			e, err := effect.FromData(ed, row.Name, a.deps.Curves)
			if err != nil {
				slog.Warn("skipping invalid effect", "ability", row.Name, "error", err)
				continue
			}
			c.Effects = append(c.Effects, e)
		}
		out[tag.Tag(def.Tag)] = c
	}
	return out
}

// EffectContainer returns the container registered under t.
func (a *Ability) EffectContainer(t tag.Tag) (EffectContainer, bool) {
	a.Static()
	c, ok := a.containers[t]
	return c, ok
}

// MakeEffectContainerSpec resolves the container registered under t for ev
// at level. An unknown tag yields an empty spec.
func (a *Ability) MakeEffectContainerSpec(t tag.Tag, ev abilitysystem.EventData, level int) EffectContainerSpec {
	c, ok := a.EffectContainer(t)
	if !ok {
		return EffectContainerSpec{}
	}

	spec := EffectContainerSpec{Source: a.asc}
	switch c.TargetType {
	case data.EffectTargetSelf:
		spec.AddTargets(a.asc.Avatar())
	case data.EffectTargetEventTargets:
		spec.TargetData = ev.TargetData
	}

	for _, def := range c.Effects {
		s := effect.NewSpec(def, level)
		s.Instigator = a.asc.Avatar()
		spec.Specs = append(spec.Specs, s)
	}
	return spec
}

// ApplyEffectContainer resolves and applies the container registered under t.
func (a *Ability) ApplyEffectContainer(t tag.Tag, ev abilitysystem.EventData, level int) []effect.ActiveHandle {
	spec := a.MakeEffectContainerSpec(t, ev, level)
	return spec.Apply()
}

// ProjectileRequest describes a projectile spawned at the cast point.
type ProjectileRequest struct {
	Ability   string
	Static    data.ProjectileStatic
	Source    *abilitysystem.Component
	Location  model.Vector
	Rotation  model.Rotator
	Direction model.Vector
	// Target is the homing target of targeted projectiles.
	Target  *model.Actor
	Level   int
	Effects EffectContainerSpec
}

// ProjectileSpawner places projectiles in the world.
type ProjectileSpawner interface {
	SpawnProjectile(req ProjectileRequest) error
}

// projectileOffset is the distance in front of the avatar where projectiles spawn.
const projectileOffset = 64

func (a *Ability) spawnProjectile(ev abilitysystem.EventData, level int) {
	row := a.Static()
	if row == nil || row.Projectile.Class == "" {
		return
	}
	if a.deps.Projectiles == nil {
		slog.Warn("cannot spawn projectile",
			"ability", a.row,
			"error", ErrMissingComponent)
		return
	}

	avatar := a.asc.Avatar()
	loc := avatar.Location().Add(avatar.Forward().Scale(projectileOffset))
	req := ProjectileRequest{
		Ability:   a.row,
		Static:    row.Projectile,
		Source:    a.asc,
		Location:  loc,
		Rotation:  avatar.Rotation(),
		Direction: avatar.Forward(),
		Level:     level,
		Effects:   a.MakeEffectContainerSpec(tag.EventProjectileHit, ev, level),
	}

	if actors := ev.TargetData.Actors(); len(actors) > 0 {
		req.Target = actors[0]
	}
	if point, ok := targetPoint(ev.TargetData, req.Target); ok {
		dir := point.Sub(loc)
		dir.Z = 0
		if dir.Length() > 0 {
			req.Direction = dir.Normal()
			req.Rotation = model.RotatorFromDirection(req.Direction)
		}
	}

	if err := a.deps.Projectiles.SpawnProjectile(req); err != nil {
		slog.Error("failed to spawn projectile",
			"ability", a.row,
			"projectile", row.Projectile.Class,
			"error", err)
	}
}

// targetPoint returns the location aimed at by the target data.
func targetPoint(td model.TargetDataHandle, target *model.Actor) (model.Vector, bool) {
	if target != nil {
		return target.Location(), true
	}
	for _, d := range td.Data {
		if d.Hit != nil {
			return d.Hit.EndPoint(), true
		}
	}
	return model.Vector{}, false
}
