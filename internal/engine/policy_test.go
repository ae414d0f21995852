package engine

import (
	"testing"

	"github.com/jakco/support-router/internal/session"
)

type policyHarness struct {
	policy     *Policy
	classifier *Classifier
	extractor  *Extractor
}

func newPolicyHarness() *policyHarness {
	catalog := DefaultCatalog()
	return &policyHarness{
		policy:     NewPolicy(catalog, Thresholds{DirectEscalationDays: 7, TypeBEscalationMonths: 2, TypeAReviewGateDays: 45}),
		classifier: NewClassifier(catalog),
		extractor:  NewExtractor(catalog),
	}
}

func (h *policyHarness) route(s *session.State, message string) Decision {
	text := Normalize(message)
	return h.policy.Evaluate(text, h.classifier.Classify(text), h.extractor.Extract(text), s)
}

func TestPaymentWithoutFactsAsksForThem(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	d := h.route(s, "I haven't been paid yet")
	if d.Category != CategoryPayment || d.Escalate {
		t.Fatalf("expected non-escalating payment ask, got %+v", d)
	}
	if d.BlockHints[0] != BlockPaymentAskFacts {
		t.Fatalf("expected ask-facts block, got %v", d.BlockHints)
	}
	if s.Flow != FlowAwaitingFacts {
		t.Fatalf("expected awaiting-facts flow, got %q", s.Flow)
	}
}

func TestDirectFinancingThresholdBoundary(t *testing.T) {
	h := newPolicyHarness()

	s := &session.State{ID: "s1"}
	d := h.route(s, "I paid it myself and the training ended 7 days ago")
	if d.Escalate {
		t.Fatalf("7 days must stay within the window: %+v", d)
	}
	if d.BlockHints[0] != BlockPaymentStatus {
		t.Fatalf("expected status block, got %v", d.BlockHints)
	}

	s = &session.State{ID: "s2"}
	d = h.route(s, "I financed it myself and the training ended 8 days ago")
	if !d.Escalate || d.Priority != PriorityCritical {
		t.Fatalf("8 days must escalate critical: %+v", d)
	}
	if s.Flow != FlowEscalated {
		t.Fatalf("expected escalated flow, got %q", s.Flow)
	}
}

func TestTypeBConvertsToMonthEquivalents(t *testing.T) {
	h := newPolicyHarness()

	// 18 days is 0.6 month-equivalents, inside the 2-month window.
	s := &session.State{ID: "s1"}
	d := h.route(s, "I was paid through opco funding, training ended 18 days ago")
	if d.Escalate {
		t.Fatalf("0.6 month-equivalents must not escalate: %+v", d)
	}

	s = &session.State{ID: "s2"}
	d = h.route(s, "the opco payment is now 3 months late")
	if !d.Escalate {
		t.Fatalf("3 months must escalate: %+v", d)
	}
}

func TestTypeAReviewGateTwoStep(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	h.route(s, "I still haven't been paid")
	d := h.route(s, "it was financed through my cpf, training ended 2 months ago")
	if d.Escalate {
		t.Fatalf("review gate must come before any escalation: %+v", d)
	}
	if d.BlockHints[0] != BlockReviewGateQuestion {
		t.Fatalf("expected review-gate question, got %v", d.BlockHints)
	}
	if !s.HasPresented(BlockReviewGateQuestion) {
		t.Fatal("gate must be recorded before an escalation is possible")
	}

	d = h.route(s, "yes, they told me it was under review")
	if d.Escalate || d.BlockHints[0] != BlockReviewGateResolved {
		t.Fatalf("affirmative answer must resolve without escalation: %+v", d)
	}
}

func TestTypeAReviewGateNegativeEscalates(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	h.route(s, "I still haven't been paid")
	h.route(s, "cpf financing, it ended 60 days ago")
	d := h.route(s, "no, nobody told me anything")
	if !d.Escalate || d.Priority != PriorityCritical {
		t.Fatalf("negative answer must escalate: %+v", d)
	}
	if s.Flow != FlowEscalated {
		t.Fatalf("expected escalated flow, got %q", s.Flow)
	}
}

func TestTypeAUnderGateReassures(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	d := h.route(s, "my cpf payment is late, the training ended 30 days ago")
	if d.Escalate || d.BlockHints[0] != BlockPaymentStatus {
		t.Fatalf("30 days is within the cpf window: %+v", d)
	}
}

func TestLegalNeverEscalatesRegardlessOfState(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1", Flow: FlowEscalated}

	d := h.route(s, "comment décaisser le cpf pour récupérer mon argent ?")
	if d.Category != CategoryLegal || d.Escalate {
		t.Fatalf("legal must redirect without escalating: %+v", d)
	}
	if d.BlockHints[0] != BlockLegalRedirect {
		t.Fatalf("expected legal redirect block, got %v", d.BlockHints)
	}
}

func TestLegalOverridesActiveFlows(t *testing.T) {
	h := newPolicyHarness()

	cases := []struct {
		name    string
		prime   []string
		message string
	}{
		{
			name:    "awaiting payment facts",
			prime:   []string{"I still haven't been paid"},
			message: "I want to withdraw the money from my cpf",
		},
		{
			name:    "formation catalog presented",
			prime:   []string{"what training courses do you offer?"},
			message: "je veux récupérer mon argent",
		},
		{
			name:    "formation escalation offered",
			prime:   []string{"what training courses do you offer?", "I am interested in the accounting course"},
			message: "actually, how do I get the money out of my account?",
		},
		{
			name:    "cpf review gate pending",
			prime:   []string{"I still haven't been paid", "cpf financing, it ended 60 days ago"},
			message: "non, je veux récupérer mon argent",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &session.State{ID: "s1"}
			for _, msg := range tc.prime {
				h.route(s, msg)
			}

			d := h.route(s, tc.message)
			if d.Category != CategoryLegal || d.Escalate {
				t.Fatalf("legal must win over the active flow, got %+v", d)
			}
			if d.BlockHints[0] != BlockLegalRedirect {
				t.Fatalf("expected legal redirect block, got %v", d.BlockHints)
			}
		})
	}
}

func TestFormationSequence(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	d := h.route(s, "what training courses do you offer?")
	if d.BlockHints[0] != BlockFormationCatalog {
		t.Fatalf("expected catalog first, got %v", d.BlockHints)
	}

	// Catalog is never presented twice.
	d = h.route(s, "what training courses do you offer?")
	if d.BlockHints[0] == BlockFormationCatalog {
		t.Fatalf("catalog repeated: %v", d.BlockHints)
	}

	d = h.route(s, "I am interested in the accounting course")
	if d.Escalate || d.BlockHints[0] != BlockFormationOffer {
		t.Fatalf("expected non-escalating sales offer, got %+v", d)
	}
	if s.Flow != FlowEscalationOffered {
		t.Fatalf("expected escalation-offered flow, got %q", s.Flow)
	}

	d = h.route(s, "yes, please do")
	if !d.Escalate || d.BlockHints[0] != BlockEscalationSales {
		t.Fatalf("expected confirmed sales escalation, got %+v", d)
	}
}

func TestHostilityDeescalatesWithoutEscalation(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	d := h.route(s, "you are useless, this is a joke")
	if d.Category != CategoryHostility || d.Escalate {
		t.Fatalf("hostility must de-escalate, got %+v", d)
	}
}

func TestHumanHandoffEscalates(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	d := h.route(s, "I want to speak to a human")
	if !d.Escalate || d.Category != CategoryHuman {
		t.Fatalf("handoff request must escalate, got %+v", d)
	}
}

func TestAmbassadorFollowUpAfterProgram(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	d := h.route(s, "je veux devenir ambassadeur")
	if d.BlockHints[0] != BlockAmbassadorProgram {
		t.Fatalf("expected program intro, got %v", d.BlockHints)
	}

	d = h.route(s, "ok, comment faire pour devenir ambassadeur ?")
	if d.BlockHints[0] != BlockAmbassadorProcess {
		t.Fatalf("expected process steps on follow-up, got %v", d.BlockHints)
	}
}

func TestGeneralSafetyNetCatchesLegalText(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	text := Normalize("je veux récupérer mon argent")
	d := h.policy.Evaluate(text, CategoryGeneral, h.extractor.Extract(text), s)
	if d.Category != CategoryLegal {
		t.Fatalf("safety net should re-route to legal, got %+v", d)
	}
}

func TestGeneralFallback(t *testing.T) {
	h := newPolicyHarness()
	s := &session.State{ID: "s1"}

	d := h.route(s, "bonjour")
	if d.Category != CategoryGeneral || d.Escalate || d.Priority != PriorityLow {
		t.Fatalf("expected low-priority welcome, got %+v", d)
	}
}
