package model

// HitResult is the outcome of a trace.
type HitResult struct {
	Actor       *Actor
	ImpactPoint Vector
	TraceStart  Vector
	TraceEnd    Vector
	// BlockingHit is true when the trace hit a component; ImpactPoint is only
	// meaningful in that case.
	BlockingHit bool
}

// EndPoint returns the impact point when something was hit, else the trace end.
func (h HitResult) EndPoint() Vector {
	if h.BlockingHit {
		return h.ImpactPoint
	}
	return h.TraceEnd
}

// TargetData is one resolved target: a hit result and the actors it selects.
type TargetData struct {
	Hit    *HitResult
	Actors []*Actor
}

// TargetDataHandle bundles target results produced by targeting.
// The zero value is an empty handle.
type TargetDataHandle struct {
	Data []TargetData
}

// NewTargetDataFromHit wraps a single hit result.
func NewTargetDataFromHit(hit HitResult) TargetDataHandle {
	h := hit
	td := TargetData{Hit: &h}
	if hit.Actor != nil {
		td.Actors = []*Actor{hit.Actor}
	}
	return TargetDataHandle{Data: []TargetData{td}}
}

// NewTargetDataFromActors wraps a set of actors without a hit result.
func NewTargetDataFromActors(actors ...*Actor) TargetDataHandle {
	if len(actors) == 0 {
		return TargetDataHandle{}
	}
	return TargetDataHandle{Data: []TargetData{{Actors: actors}}}
}

// Num returns the number of target entries.
func (h TargetDataHandle) Num() int {
	return len(h.Data)
}

// Get returns entry i or nil when out of range.
func (h TargetDataHandle) Get(i int) *TargetData {
	if i < 0 || i >= len(h.Data) {
		return nil
	}
	return &h.Data[i]
}

// Append adds the entries of other to h.
func (h TargetDataHandle) Append(other TargetDataHandle) TargetDataHandle {
	h.Data = append(h.Data, other.Data...)
	return h
}

// Actors returns every actor referenced by the handle, in order, without duplicates.
func (h TargetDataHandle) Actors() []*Actor {
	var out []*Actor
	seen := make(map[*Actor]struct{})
	for _, td := range h.Data {
		for _, a := range td.Actors {
			if a == nil {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
