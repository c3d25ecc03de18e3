package retrieval

import "github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"

// Validate decides whether generation may run for category given outcome.
//
//	general, no outcome          -> proceed
//	data category, records > 0   -> proceed
//	data category, no records    -> insufficient (empty)
//	data category, error message -> insufficient (error)
func Validate(category domain.Category, outcome *domain.RetrievalOutcome) domain.ContextDecision {
	if !category.DataBacked() {
		return domain.ContextDecision{Verdict: domain.VerdictProceed}
	}
	switch {
	case outcome == nil:
		return domain.ContextDecision{Verdict: domain.VerdictInsufficient, Reason: domain.ReasonError}
	case outcome.Failed():
		return domain.ContextDecision{Verdict: domain.VerdictInsufficient, Reason: domain.ReasonError}
	case outcome.RecordCount > 0:
		return domain.ContextDecision{Verdict: domain.VerdictProceed}
	default:
		return domain.ContextDecision{Verdict: domain.VerdictInsufficient, Reason: domain.ReasonEmpty}
	}
}
