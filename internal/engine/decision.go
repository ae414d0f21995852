package engine

// Priority grades how urgently a human should look at the conversation when
// a Decision escalates, and how prominently the answer should be delivered
// when it does not.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Category is the single intent label the classifier assigns per message.
type Category string

const (
	CategoryDefinition  Category = "definition"
	CategoryLegal       Category = "legal"
	CategoryPayment     Category = "payment"
	CategoryAmbassador  Category = "ambassador"
	CategoryContact     Category = "contact"
	CategoryFormation   Category = "formation"
	CategoryHuman       Category = "human_handoff"
	CategoryFundingAcc  Category = "funding_account"
	CategoryProspect    Category = "prospect"
	CategoryDelay       Category = "delay"
	CategoryHostility   Category = "hostility"
	CategoryGeneral     Category = "general"
	CategoryError       Category = "error"
)

// Stable ids of the curated response blocks the policy can point at. The
// content store is seeded with one markdown document per id.
const (
	BlockGeneralWelcome      = "general.welcome"
	BlockDefinition          = "general.definition"
	BlockLegalRedirect       = "legal.redirect"
	BlockPaymentAskFacts     = "payment.ask_facts"
	BlockPaymentStatus       = "payment.status"
	BlockPaymentDirectLate   = "payment.direct_delayed"
	BlockReviewGateQuestion  = "payment.cpf_review_gate"
	BlockReviewGateResolved  = "payment.cpf_blocked_info"
	BlockAmbassadorWhat      = "ambassador.definition"
	BlockAmbassadorProgram   = "ambassador.program"
	BlockAmbassadorProcess   = "ambassador.process"
	BlockContactTransmission = "contact.transmission"
	BlockFormationCatalog    = "formation.catalog"
	BlockFormationOffer      = "formation.sales_offer"
	BlockFundingAccountInfo  = "funding.account_info"
	BlockProspectPitch       = "prospect.pitch"
	BlockDelayAskFinancing   = "delay.ask_financing"
	BlockDeescalation        = "tone.deescalation"
	BlockEscalationAdmin     = "escalation.admin"
	BlockEscalationSales     = "escalation.sales"
	BlockErrorFallback       = "error.fallback"
)

// Decision is the engine's sole output: what the conversation is about,
// whether a human takes over, and which curated content should shape the
// reply when one does not.
type Decision struct {
	Category     Category       `json:"category"`
	SearchQuery  string         `json:"search_query"`
	Escalate     bool           `json:"escalate"`
	Priority     Priority       `json:"priority"`
	BlockHints   []string       `json:"block_hints"`
	Instructions string         `json:"instructions"`
	Facts        ExtractedFacts `json:"facts"`
}
