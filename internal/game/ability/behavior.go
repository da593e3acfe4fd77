package ability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/targeting"
	"github.com/udisondev/gamekit/internal/model"
)

// behavior is an activation strategy. The set is closed: one implementation
// per data.AbilityBehavior.
type behavior interface {
	kind() data.AbilityBehavior
	activate(a *Ability, row *data.AbilityStatic)
}

type (
	hiddenBehavior      struct{}
	passiveBehavior     struct{}
	noTargetBehavior    struct{}
	actorTargetBehavior struct{}
	pointTargetBehavior struct{}
	toggleBehavior      struct{}
)

func behaviorFor(kind data.AbilityBehavior) (behavior, bool) {
	switch kind {
	case data.BehaviorHidden:
		return hiddenBehavior{}, true
	case data.BehaviorPassive:
		return passiveBehavior{}, true
	case data.BehaviorNoTarget:
		return noTargetBehavior{}, true
	case data.BehaviorActorTarget:
		return actorTargetBehavior{}, true
	case data.BehaviorPointTarget:
		return pointTargetBehavior{}, true
	case data.BehaviorToggle:
		return toggleBehavior{}, true
	}
	return nil, false
}

func (a *Ability) dispatch(row *data.AbilityStatic) {
	b, ok := behaviorFor(row.Behavior)
	if !ok {
		slog.Warn("unknown ability behavior", "ability", a.row, "behavior", int(row.Behavior))
		a.EndAbility()
		return
	}

	_, span := a.deps.Tracer.Start(context.Background(), "ability.dispatch",
		trace.WithAttributes(
			attribute.String("ability", a.row),
			attribute.String("behavior", b.kind().String()),
			attribute.String("role", a.exec.Role.String()),
			attribute.Int("prediction_key", int(a.info.PredictionKey)),
		))
	defer span.End()

	b.activate(a, row)
}

func (hiddenBehavior) kind() data.AbilityBehavior { return data.BehaviorHidden }

func (hiddenBehavior) activate(*Ability, *data.AbilityStatic) {}

func (passiveBehavior) kind() data.AbilityBehavior { return data.BehaviorPassive }

func (passiveBehavior) activate(*Ability, *data.AbilityStatic) {}

func (noTargetBehavior) kind() data.AbilityBehavior { return data.BehaviorNoTarget }

func (noTargetBehavior) activate(a *Ability, _ *data.AbilityStatic) {
	a.onTargetAcquired(model.TargetDataHandle{})
}

func (actorTargetBehavior) kind() data.AbilityBehavior { return data.BehaviorActorTarget }

func (actorTargetBehavior) activate(a *Ability, row *data.AbilityStatic) {
	a.startTargeting(row, false)
}

func (pointTargetBehavior) kind() data.AbilityBehavior { return data.BehaviorPointTarget }

func (pointTargetBehavior) activate(a *Ability, row *data.AbilityStatic) {
	a.startTargeting(row, true)
}

func (toggleBehavior) kind() data.AbilityBehavior { return data.BehaviorToggle }

func (toggleBehavior) activate(a *Ability, _ *data.AbilityStatic) {
	if a.toggledOn {
		// no animation when switching off
		a.toggledOn = false
		a.EndAbility()
		return
	}
	a.toggledOn = true
	a.onTargetAcquired(model.TargetDataHandle{})
}

// startTargeting runs the row's targeting actor until the user confirms or cancels.
func (a *Ability) startTargeting(row *data.AbilityStatic, broadcastStart bool) {
	if row.TargetActorClass == "" {
		slog.Warn("ability has no target actor class",
			"ability", a.row,
			"error", ErrMissingConfiguration)
		a.Cancel()
		return
	}

	ta, err := a.asc.AbilityTargetActor(row.TargetActorClass)
	if err != nil {
		slog.Warn("failed to get target actor",
			"ability", a.row,
			"class", row.TargetActorClass,
			"error", err)
		a.Cancel()
		return
	}
	actor, ok := ta.(*targeting.TraceActor)
	if !ok {
		slog.Warn("target actor is not a trace actor",
			"ability", a.row,
			"class", row.TargetActorClass,
			"error", ErrMissingComponent)
		a.Cancel()
		return
	}
	actor.InitializeFromStatic(row)

	task := targeting.NewWaitTargetData(actor)
	task.ValidData.Subscribe(a.onTargetAcquired)
	task.Cancelled.Subscribe(a.onTargetingCancelled)
	a.targetTask = task

	if broadcastStart {
		a.TargetingStart.Emit(struct{}{})
	}

	task.Activate(targeting.Activation{
		ASC:           a.asc,
		Handle:        a.info.Handle,
		PredictionKey: a.info.PredictionKey,
		Exec:          a.exec,
	})
}
