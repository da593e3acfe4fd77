package abilitysystem

import (
	"errors"
	"fmt"
)

// TargetActor is a reusable targeting actor, cached per class on a component.
type TargetActor interface {
	Class() string
	Destroy()
}

// TargetActorFactory creates the targeting actor of class for c.
type TargetActorFactory func(c *Component, class string) (TargetActor, error)

// ErrNoTargetActorFactory is returned when no factory is installed.
var ErrNoTargetActorFactory = errors.New("no target actor factory")

// SetTargetActorFactory installs the factory used by AbilityTargetActor.
func (c *Component) SetTargetActorFactory(f TargetActorFactory) {
	c.targetActorFactory = f
}

// AbilityTargetActor returns the cached targeting actor of class, creating it
// on first use.
func (c *Component) AbilityTargetActor(class string) (TargetActor, error) {
	if ta, ok := c.targetActors[class]; ok {
		return ta, nil
	}
	if c.targetActorFactory == nil {
		return nil, ErrNoTargetActorFactory
	}
	ta, err := c.targetActorFactory(c, class)
	if err != nil {
		return nil, fmt.Errorf("creating target actor %q: %w", class, err)
	}
	c.targetActors[class] = ta
	return ta, nil
}

// DestroyTargetActors destroys every cached targeting actor.
func (c *Component) DestroyTargetActors() {
	for class, ta := range c.targetActors {
		ta.Destroy()
		delete(c.targetActors, class)
	}
}
