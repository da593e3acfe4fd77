package data

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/gamekit/internal/model"
)

// AbilityBehavior selects how an ability is activated.
type AbilityBehavior int8

const (
	BehaviorHidden      AbilityBehavior = iota // Not shown, does nothing on activation
	BehaviorPassive                            // Always on, does nothing on activation
	BehaviorNoTarget                           // Casts immediately
	BehaviorActorTarget                        // Requires picking an actor
	BehaviorPointTarget                        // Requires picking a point on the ground
	BehaviorToggle                             // On/off
)

var behaviorNames = map[AbilityBehavior]string{
	BehaviorHidden:      "Hidden",
	BehaviorPassive:     "Passive",
	BehaviorNoTarget:    "NoTarget",
	BehaviorActorTarget: "ActorTarget",
	BehaviorPointTarget: "PointTarget",
	BehaviorToggle:      "Toggle",
}

func (b AbilityBehavior) String() string {
	if s, ok := behaviorNames[b]; ok {
		return s
	}
	return fmt.Sprintf("AbilityBehavior(%d)", int8(b))
}

// ParseAbilityBehavior converts a table string into an AbilityBehavior.
func ParseAbilityBehavior(s string) (AbilityBehavior, error) {
	for b, name := range behaviorNames {
		if name == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown ability behavior %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *AbilityBehavior) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseAbilityBehavior(value.Value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// AbilityAnimation is the animation category an ability plays.
type AbilityAnimation int8

const (
	AnimationHidden AbilityAnimation = iota
	AnimationChannel
	AnimationAttack
	AnimationCast
)

var animationNames = map[AbilityAnimation]string{
	AnimationHidden:  "Hidden",
	AnimationChannel: "Channel",
	AnimationAttack:  "Attack",
	AnimationCast:    "Cast",
}

func (a AbilityAnimation) String() string {
	if s, ok := animationNames[a]; ok {
		return s
	}
	return fmt.Sprintf("AbilityAnimation(%d)", int8(a))
}

// ParseAbilityAnimation converts a table string into an AbilityAnimation.
func ParseAbilityAnimation(s string) (AbilityAnimation, error) {
	for a, name := range animationNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown ability animation %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AbilityAnimation) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseAbilityAnimation(value.Value)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ProjectileBehavior decides how a projectile finds its target.
type ProjectileBehavior int8

const (
	ProjectileDirectional ProjectileBehavior = iota // Flies straight, hits the first enemy
	ProjectileTargeted                              // Homes on the target actor
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *ProjectileBehavior) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "Directional", "":
		*p = ProjectileDirectional
	case "Targeted":
		*p = ProjectileTargeted
	default:
		return fmt.Errorf("unknown projectile behavior %q", value.Value)
	}
	return nil
}

// AbilityCost is the resource an ability consumes, per level.
type AbilityCost struct {
	Attribute string    `yaml:"attribute"`
	Value     []float64 `yaml:"value"`
}

// ProjectileStatic configures the projectile an ability spawns at its cast point.
type ProjectileStatic struct {
	Class    string             `yaml:"class"`
	Speed    float64            `yaml:"speed"`
	Range    float64            `yaml:"range"`
	Behavior ProjectileBehavior `yaml:"behavior"`
}

// EffectTargetType selects who receives the effects of a container.
type EffectTargetType string

const (
	EffectTargetSelf         EffectTargetType = "Self"
	EffectTargetEventTargets EffectTargetType = "EventTargets"
)

// EffectDef describes one gameplay effect inside an effect container.
// Magnitude is per level, same layout as Cooldown.
type EffectDef struct {
	Name      string    `yaml:"name"`
	Attribute string    `yaml:"attribute"`
	Magnitude []float64 `yaml:"magnitude"`
	Duration  float64   `yaml:"duration"` // seconds, 0 = instant
	Period    float64   `yaml:"period"`   // seconds, 0 = not periodic
	GrantTags []string  `yaml:"grant_tags"`
}

// EffectContainerDef maps a gameplay event tag to the effects applied when it fires.
type EffectContainerDef struct {
	Tag        string           `yaml:"tag"`
	TargetType EffectTargetType `yaml:"target_type"`
	Effects    []EffectDef      `yaml:"effects"`
}

// AbilityStatic is the immutable per-ability configuration row.
// Shared across all ability instances, do not modify after loading.
type AbilityStatic struct {
	Name              string               `yaml:"name"`
	Behavior          AbilityBehavior      `yaml:"behavior"`
	CastTime          float64              `yaml:"cast_time"` // seconds until the cast point
	CastMinRange      float64              `yaml:"cast_min_range"`
	CastMaxRange      float64              `yaml:"cast_max_range"`
	AreaOfEffect      float64              `yaml:"area_of_effect"`
	TargetObjectTypes []model.ObjectType   `yaml:"target_object_types"`
	Cooldown          []float64            `yaml:"cooldown"` // seconds per level
	Cost              AbilityCost          `yaml:"cost"`
	TargetActorClass  string               `yaml:"target_actor_class"`
	Projectile        ProjectileStatic     `yaml:"projectile"`
	Animation         AbilityAnimation     `yaml:"animation"`
	EffectContainers  []EffectContainerDef `yaml:"effect_containers"`
}

// RowName implements Row.
func (a AbilityStatic) RowName() string {
	return a.Name
}

// MaxLevel returns the number of configured levels (at least 1).
func (a AbilityStatic) MaxLevel() int {
	n := max(len(a.Cooldown), len(a.Cost.Value), 1)
	return n
}
