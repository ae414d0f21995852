package engine

import (
	"github.com/jakco/support-router/internal/session"
)

// Flow values recorded in session state. The zero value is a fresh session.
const (
	FlowInitial           = ""
	FlowAwaitingFacts     = "awaiting_facts"
	FlowFactsComplete     = "facts_complete"
	FlowPresented         = "flow_presented"
	FlowEscalationOffered = "escalation_offered"
	FlowEscalated         = "escalated"
)

// Flow ids qualifying FlowPresented / FlowEscalationOffered.
const (
	flowPayment    = "payment"
	flowFormation  = "formation"
	flowReviewGate = "cpf_review_gate"
)

// Thresholds are the payment escalation limits. Durations are flattened to
// day-equivalents (days + weeks*7 + months*30) for direct and typeA
// financing, and month-equivalents (months + weeks*4/12 + days/30) for
// typeB.
type Thresholds struct {
	DirectEscalationDays  int
	TypeBEscalationMonths float64
	TypeAReviewGateDays   int
}

// Policy turns (category, facts, session state) into a Decision and applies
// the resulting state transition. It runs inside the session's lock, so it
// mutates the state it is handed directly.
type Policy struct {
	catalog    *Catalog
	thresholds Thresholds
}

func NewPolicy(catalog *Catalog, thresholds Thresholds) *Policy {
	return &Policy{catalog: catalog, thresholds: thresholds}
}

func (p *Policy) Evaluate(text string, category Category, facts ExtractedFacts, s *session.State) Decision {
	// Legal has no state dependency: a withdrawal or fraud request gets the
	// fixed redirect even mid-flow, before any pending question is resumed.
	if category == CategoryLegal {
		return p.legal(facts)
	}

	if d, ok := p.continueFlow(text, facts, s); ok {
		return d
	}

	switch category {
	case CategoryDefinition:
		return p.definition(text, facts)
	case CategoryPayment:
		return p.payment(facts.Merge(factsFromPending(s.Pending)), s)
	case CategoryAmbassador:
		return p.ambassador(text, facts, s)
	case CategoryContact:
		s.MarkPresented(BlockContactTransmission)
		return Decision{
			Category:     CategoryContact,
			SearchQuery:  "contact list transmission form",
			Priority:     PriorityMedium,
			BlockHints:   []string{BlockContactTransmission},
			Instructions: "Explain how to submit the contact list and what happens next.",
			Facts:        facts,
		}
	case CategoryFormation:
		return p.formation(text, facts, s)
	case CategoryHuman:
		s.SetFlow(FlowEscalated, "")
		return Decision{
			Category:     CategoryHuman,
			SearchQuery:  "human advisor handoff",
			Escalate:     true,
			Priority:     PriorityHigh,
			BlockHints:   []string{BlockEscalationSales},
			Instructions: "The customer asked for a person. Confirm the handoff and stop answering in their place.",
			Facts:        facts,
		}
	case CategoryFundingAcc:
		s.MarkPresented(BlockFundingAccountInfo)
		return Decision{
			Category:     CategoryFundingAcc,
			SearchQuery:  "training account how it works",
			Priority:     PriorityMedium,
			BlockHints:   []string{BlockFundingAccountInfo},
			Instructions: "Answer with the training-account explainer. Do not discuss withdrawals.",
			Facts:        facts,
		}
	case CategoryProspect:
		s.MarkPresented(BlockProspectPitch)
		return Decision{
			Category:     CategoryProspect,
			SearchQuery:  "offer pricing pitch",
			Priority:     PriorityMedium,
			BlockHints:   []string{BlockProspectPitch},
			Instructions: "Present the offer and invite the prospect to leave contact details.",
			Facts:        facts,
		}
	case CategoryDelay:
		return p.delay(facts, s)
	case CategoryHostility:
		s.MarkPresented(BlockDeescalation)
		return Decision{
			Category:     CategoryHostility,
			SearchQuery:  "de-escalation calm response",
			Priority:     PriorityHigh,
			BlockHints:   []string{BlockDeescalation},
			Instructions: "Stay calm and factual, acknowledge the frustration, restate what can be done. Never escalate on tone alone.",
			Facts:        facts,
		}
	default:
		return p.general(text, facts, s)
	}
}

// continueFlow handles answers to a question the policy itself asked on an
// earlier turn. These take precedence over whatever the classifier made of
// the bare reply, since "yes" on its own classifies as nothing useful.
func (p *Policy) continueFlow(text string, facts ExtractedFacts, s *session.State) (Decision, bool) {
	switch {
	case s.Flow == FlowPresented && s.FlowID == flowReviewGate:
		if p.catalog.Affirmation.MatchesToken(text) && !p.catalog.Negation.MatchesToken(text) {
			s.SetFlow(FlowFactsComplete, "")
			s.MarkPresented(BlockReviewGateResolved)
			return Decision{
				Category:     CategoryPayment,
				SearchQuery:  "cpf file under review payment timeline",
				Priority:     PriorityHigh,
				BlockHints:   []string{BlockReviewGateResolved},
				Instructions: "The file is in the known review queue. Explain the review delay and the expected payment window.",
				Facts:        facts.Merge(factsFromPending(s.Pending)),
			}, true
		}
		if p.catalog.Negation.MatchesToken(text) {
			s.SetFlow(FlowEscalated, "")
			return Decision{
				Category:     CategoryPayment,
				SearchQuery:  "cpf payment overdue unexplained",
				Escalate:     true,
				Priority:     PriorityCritical,
				BlockHints:   []string{BlockEscalationAdmin},
				Instructions: "Delay exceeds the review window with no known cause. Hand the file to the admin team.",
				Facts:        facts.Merge(factsFromPending(s.Pending)),
			}, true
		}
		return Decision{}, false

	case s.Flow == FlowEscalationOffered && s.FlowID == flowFormation:
		if p.catalog.Affirmation.MatchesToken(text) && !p.catalog.Negation.MatchesToken(text) {
			s.SetFlow(FlowEscalated, "")
			return Decision{
				Category:     CategoryFormation,
				SearchQuery:  "course enrollment sales contact",
				Escalate:     true,
				Priority:     PriorityHigh,
				BlockHints:   []string{BlockEscalationSales},
				Instructions: "The customer confirmed interest. Pass the conversation to the sales team with the course they named.",
				Facts:        facts,
			}, true
		}
		return Decision{}, false

	case s.Flow == FlowPresented && s.FlowID == flowFormation:
		// Course names rarely carry a catalog keyword; interest after the
		// catalog is a formation follow-up no matter how it classifies.
		if p.catalog.CourseInterest.Matches(text) || p.catalog.CourseTopics.Matches(text) {
			return p.formation(text, facts, s), true
		}
		return Decision{}, false

	case s.Flow == FlowAwaitingFacts && (facts.HasFinancing() || facts.HasDuration()):
		return p.payment(facts.Merge(factsFromPending(s.Pending)), s), true
	}
	return Decision{}, false
}

func (p *Policy) definition(text string, facts ExtractedFacts) Decision {
	block := BlockDefinition
	query := "glossary definition"
	if p.catalog.Ambassador.Matches(text) {
		block = BlockAmbassadorWhat
		query = "ambassador program definition"
	}
	return Decision{
		Category:     CategoryDefinition,
		SearchQuery:  query,
		Priority:     PriorityMedium,
		BlockHints:   []string{block},
		Instructions: "Answer the definition question plainly, then offer the next step.",
		Facts:        facts,
	}
}

// legal is a fixed redirect. It never escalates and ignores session state:
// the answer to a withdrawal or fraud question is the same on turn one and
// turn ten.
func (p *Policy) legal(facts ExtractedFacts) Decision {
	return Decision{
		Category:     CategoryLegal,
		SearchQuery:  "training account rules funds not withdrawable",
		Priority:     PriorityHigh,
		BlockHints:   []string{BlockLegalRedirect},
		Instructions: "State that training funds cannot be paid out in cash and point at the official rules. Do not improvise.",
		Facts:        facts,
	}
}

func (p *Policy) payment(facts ExtractedFacts, s *session.State) Decision {
	s.Pending = pendingFromFacts(facts)

	if !facts.HasFinancing() && !facts.HasDuration() {
		s.SetFlow(FlowAwaitingFacts, flowPayment)
		s.MarkPresented(BlockPaymentAskFacts)
		return Decision{
			Category:     CategoryPayment,
			SearchQuery:  "payment delay missing details",
			Priority:     PriorityHigh,
			BlockHints:   []string{BlockPaymentAskFacts},
			Instructions: "Ask how the training was financed and how long ago it ended. Both are needed before anything else.",
			Facts:        facts,
		}
	}

	switch facts.Financing {
	case FinancingDirect:
		if facts.DayEquivalents() > p.thresholds.DirectEscalationDays {
			s.SetFlow(FlowEscalated, "")
			return Decision{
				Category:     CategoryPayment,
				SearchQuery:  "direct payment overdue",
				Escalate:     true,
				Priority:     PriorityCritical,
				BlockHints:   []string{BlockPaymentDirectLate, BlockEscalationAdmin},
				Instructions: "Self-funded payment is past the normal window. Escalate to the admin team with the stated delay.",
				Facts:        facts,
			}
		}
		return p.paymentStatus(facts, s, "direct payment processing time")

	case FinancingTypeB:
		if facts.MonthEquivalents() > p.thresholds.TypeBEscalationMonths {
			s.SetFlow(FlowEscalated, "")
			return Decision{
				Category:     CategoryPayment,
				SearchQuery:  "opco payment overdue",
				Escalate:     true,
				Priority:     PriorityCritical,
				BlockHints:   []string{BlockEscalationAdmin},
				Instructions: "Skills-operator funding is past the normal window. Escalate to the admin team with the stated delay.",
				Facts:        facts,
			}
		}
		return p.paymentStatus(facts, s, "opco payment processing time")

	case FinancingTypeA:
		if facts.DayEquivalents() > p.thresholds.TypeAReviewGateDays {
			s.SetFlow(FlowPresented, flowReviewGate)
			s.MarkPresented(BlockReviewGateQuestion)
			return Decision{
				Category:     CategoryPayment,
				SearchQuery:  "cpf file review status",
				Priority:     PriorityCritical,
				BlockHints:   []string{BlockReviewGateQuestion},
				Instructions: "Before anything else, ask whether the customer was told their file is under review. The answer decides the next step.",
				Facts:        facts,
			}
		}
		return p.paymentStatus(facts, s, "cpf payment processing time")

	default:
		// Duration without financing: thresholds cannot run yet, ask for
		// the missing half and keep what was already collected.
		s.SetFlow(FlowAwaitingFacts, flowPayment)
		s.MarkPresented(BlockPaymentAskFacts)
		return Decision{
			Category:     CategoryPayment,
			SearchQuery:  "payment delay financing type",
			Priority:     PriorityHigh,
			BlockHints:   []string{BlockPaymentAskFacts},
			Instructions: "Ask how the training was financed; the delay is already known.",
			Facts:        facts,
		}
	}
}

func (p *Policy) paymentStatus(facts ExtractedFacts, s *session.State, query string) Decision {
	s.SetFlow(FlowFactsComplete, "")
	s.MarkPresented(BlockPaymentStatus)
	return Decision{
		Category:     CategoryPayment,
		SearchQuery:  query,
		Priority:     PriorityMedium,
		BlockHints:   []string{BlockPaymentStatus},
		Instructions: "The delay is within the normal window. Reassure with the standard processing timeline.",
		Facts:        facts,
	}
}

func (p *Policy) ambassador(text string, facts ExtractedFacts, s *session.State) Decision {
	if s.HasPresented(BlockAmbassadorProgram) && p.catalog.AmbassadorFollowUp.Matches(text) {
		s.MarkPresented(BlockAmbassadorProcess)
		return Decision{
			Category:     CategoryAmbassador,
			SearchQuery:  "ambassador onboarding steps",
			Priority:     PriorityMedium,
			BlockHints:   []string{BlockAmbassadorProcess},
			Instructions: "The program was already introduced. Walk through the concrete steps only.",
			Facts:        facts,
		}
	}
	s.MarkPresented(BlockAmbassadorProgram)
	return Decision{
		Category:     CategoryAmbassador,
		SearchQuery:  "ambassador program commission",
		Priority:     PriorityMedium,
		BlockHints:   []string{BlockAmbassadorProgram},
		Instructions: "Introduce the ambassador program and the commission terms.",
		Facts:        facts,
	}
}

func (p *Policy) formation(text string, facts ExtractedFacts, s *session.State) Decision {
	if !s.HasPresented(BlockFormationCatalog) {
		s.SetFlow(FlowPresented, flowFormation)
		s.MarkPresented(BlockFormationCatalog)
		return Decision{
			Category:     CategoryFormation,
			SearchQuery:  "course catalog domains",
			Priority:     PriorityMedium,
			BlockHints:   []string{BlockFormationCatalog},
			Instructions: "Present the catalog once and ask which domain interests the customer.",
			Facts:        facts,
		}
	}

	interested := p.catalog.CourseInterest.Matches(text) || p.catalog.CourseTopics.Matches(text)
	s.MarkPresented(BlockFormationOffer)
	if interested {
		s.SetFlow(FlowEscalationOffered, flowFormation)
		return Decision{
			Category:     CategoryFormation,
			SearchQuery:  "course enrollment next step",
			Priority:     PriorityHigh,
			BlockHints:   []string{BlockFormationOffer},
			Instructions: "The customer named a course. Offer to put them in touch with the sales team and wait for a clear yes.",
			Facts:        facts,
		}
	}
	return Decision{
		Category:     CategoryFormation,
		SearchQuery:  "course catalog follow-up",
		Priority:     PriorityMedium,
		BlockHints:   []string{BlockFormationOffer},
		Instructions: "The catalog was already shown; do not repeat it. Help narrow down a domain instead.",
		Facts:        facts,
	}
}

func (p *Policy) delay(facts ExtractedFacts, s *session.State) Decision {
	if facts.HasFinancing() {
		return p.payment(facts.Merge(factsFromPending(s.Pending)), s)
	}
	s.SetFlow(FlowAwaitingFacts, flowPayment)
	s.Pending = pendingFromFacts(facts)
	s.MarkPresented(BlockDelayAskFinancing)
	return Decision{
		Category:     CategoryDelay,
		SearchQuery:  "processing time by financing type",
		Priority:     PriorityMedium,
		BlockHints:   []string{BlockDelayAskFinancing},
		Instructions: "Timelines depend on the financing type; ask which one applies.",
		Facts:        facts,
	}
}

// general is the fallback, with the legal and payment checks re-applied as a
// safety net for text that reached here through a flow edge.
func (p *Policy) general(text string, facts ExtractedFacts, s *session.State) Decision {
	if p.catalog.Legal.Matches(text) {
		return p.legal(facts)
	}
	if p.catalog.Payment.Matches(text) {
		return p.payment(facts.Merge(factsFromPending(s.Pending)), s)
	}
	return Decision{
		Category:     CategoryGeneral,
		SearchQuery:  "general support welcome",
		Priority:     PriorityLow,
		BlockHints:   []string{BlockGeneralWelcome},
		Instructions: "Greet, and ask what the customer needs help with.",
		Facts:        facts,
	}
}

func pendingFromFacts(f ExtractedFacts) session.Facts {
	return session.Facts{
		Financing: string(f.Financing),
		Days:      f.DurationDays,
		Weeks:     f.DurationWeeks,
		Months:    f.DurationMonths,
	}
}

func factsFromPending(p session.Facts) ExtractedFacts {
	f := ExtractedFacts{
		Financing:      FinancingType(p.Financing),
		DurationDays:   p.Days,
		DurationWeeks:  p.Weeks,
		DurationMonths: p.Months,
	}
	if f.Financing == "" {
		f.Financing = FinancingUnknown
	}
	return f
}
