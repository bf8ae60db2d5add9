package triage

import "github.com/nhle/inbox-triage/internal/model"

// ComputeStats counts the whole set. Callers pass the full store content,
// never a filtered view, so the numbers describe the entire inbox.
func ComputeStats(set []model.EmailRecord) model.Stats {
	stats := model.Stats{Total: len(set)}
	for _, r := range set {
		if r.AIUrgency == model.UrgencyHigh {
			stats.Urgent++
		}
		if r.ActionRequired {
			stats.Actionable++
		}
	}
	return stats
}
