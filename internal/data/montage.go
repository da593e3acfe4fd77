package data

import (
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

// NotifyKind is the type of a timed montage marker.
type NotifyKind int8

const (
	NotifyEvent     NotifyKind = iota // Sends EventTag as a gameplay event
	NotifyCastPoint                   // Marks the ability cast point
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *NotifyKind) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "Event", "":
		*k = NotifyEvent
	case "CastPoint":
		*k = NotifyCastPoint
	default:
		return fmt.Errorf("unknown notify kind %q", value.Value)
	}
	return nil
}

// Notify is a timed marker on a montage.
type Notify struct {
	Name        string     `yaml:"name"`
	Kind        NotifyKind `yaml:"kind"`
	TriggerTime float64    `yaml:"trigger_time"` // seconds from montage start at rate 1
	EventTag    string     `yaml:"event_tag"`
}

// Section is a named start position inside a montage.
type Section struct {
	Name  string  `yaml:"name"`
	Start float64 `yaml:"start"`
}

// Montage is an animation asset with sections and timed notifies.
type Montage struct {
	Name         string    `yaml:"name"`
	Length       float64   `yaml:"length"`   // seconds at rate 1
	BlendOutTime float64   `yaml:"blend_out"` // seconds
	Sections     []Section `yaml:"sections"`
	Notifies     []Notify  `yaml:"notifies"`
}

// RowName implements Row.
func (m Montage) RowName() string {
	return m.Name
}

// SectionStart returns the start time of the named section, 0 when not found.
func (m *Montage) SectionStart(name string) float64 {
	for _, s := range m.Sections {
		if s.Name == name {
			return s.Start
		}
	}
	return 0
}

// NotifiesBetween returns notifies with trigger time in [from, to).
func (m *Montage) NotifiesBetween(from, to float64) []Notify {
	var out []Notify
	for _, n := range m.Notifies {
		if n.TriggerTime >= from && n.TriggerTime < to {
			out = append(out, n)
		}
	}
	return out
}

// AnimationArray is a pool of interchangeable montages.
type AnimationArray []string

// Sample returns a random montage name, "" when the pool is empty.
func (a AnimationArray) Sample() string {
	if len(a) == 0 {
		return ""
	}
	return a[rand.IntN(len(a))]
}

// AnimationSet lists the montages a skeleton supports per animation category.
type AnimationSet struct {
	Name       string                    `yaml:"name"`
	Animations map[string]AnimationArray `yaml:"animations"` // key: AbilityAnimation name
	Default    AnimationArray            `yaml:"default"`
}

// RowName implements Row.
func (s AnimationSet) RowName() string {
	return s.Name
}

// Get returns the montages for kind, falling back to Default.
func (s *AnimationSet) Get(kind AbilityAnimation) AnimationArray {
	if arr, ok := s.Animations[kind.String()]; ok && len(arr) > 0 {
		return arr
	}
	return s.Default
}
