package data

// UnitStatic is the immutable per-unit configuration row.
type UnitStatic struct {
	Name         string   `yaml:"name"`
	Health       float64  `yaml:"health"`
	Mana         float64  `yaml:"mana"`
	HealthRegen  float64  `yaml:"health_regen"` // per second
	ManaRegen    float64  `yaml:"mana_regen"`   // per second
	Abilities    []string `yaml:"abilities"`    // AbilityStatic row names, granted at level 0
	AnimationSet string   `yaml:"animation_set"`
	Faction      string   `yaml:"faction"`
	SightRadius  float64  `yaml:"sight_radius"`
}

// RowName implements Row.
func (u UnitStatic) RowName() string {
	return u.Name
}
