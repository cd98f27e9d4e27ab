package models

// ScopeFull requests every registered model
const ScopeFull = "full"

// AnalysisRequest asks the orchestrator for an advisory
type AnalysisRequest struct {
	LocationID  string      `json:"location_id"`
	HorizonDays int         `json:"horizon_days"`
	Scope       []ModelKind `json:"scope,omitempty"` // empty means full
}

// ResolveScope expands the request scope into a kind set.
// An empty scope or the literal "full" covers all kinds.
func (r *AnalysisRequest) ResolveScope() map[ModelKind]bool {
	scope := make(map[ModelKind]bool)
	if len(r.Scope) == 0 {
		for _, k := range AllKinds() {
			scope[k] = true
		}
		return scope
	}
	for _, k := range r.Scope {
		if string(k) == ScopeFull {
			for _, all := range AllKinds() {
				scope[all] = true
			}
			return scope
		}
		scope[k] = true
	}
	return scope
}
