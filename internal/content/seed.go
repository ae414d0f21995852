package content

import "github.com/jakco/support-router/internal/engine"

// DefaultBlocks is the fallback corpus used when no authored blocks exist on
// disk. Bodies are intentionally short; production deployments override them
// with markdown files in the blocks directory.
func DefaultBlocks() []engine.Block {
	return []engine.Block{
		{ID: engine.BlockGeneralWelcome, Category: "general", Title: "Welcome",
			Body: "Bonjour ! Je peux vous aider sur les paiements, les formations et le programme ambassadeur. / Hello! I can help with payments, courses and the ambassador program."},
		{ID: engine.BlockDefinition, Category: "general", Title: "Definitions",
			Body: "Answer the question with the glossary entry, then ask what the customer wants to do next."},
		{ID: engine.BlockLegalRedirect, Category: "legal", Title: "Training funds rules",
			Body: "Training account funds can only pay for training. They can never be withdrawn or converted to cash; official rules: moncompteformation.gouv.fr."},
		{ID: engine.BlockPaymentAskFacts, Category: "payment", Title: "Payment details needed",
			Body: "To check the payment, two details are needed: how the training was financed (self-funded, OPCO or CPF) and when it ended."},
		{ID: engine.BlockPaymentStatus, Category: "payment", Title: "Payment within window",
			Body: "The payment is within the normal processing window. Self-funded transfers take up to 7 days, CPF up to 45 days, OPCO up to 2 months."},
		{ID: engine.BlockPaymentDirectLate, Category: "payment", Title: "Direct payment overdue",
			Body: "A self-funded payment past 7 days is not normal. The file goes to the administrative team today."},
		{ID: engine.BlockReviewGateQuestion, Category: "payment", Title: "Review check",
			Body: "One question first: were you told that your file is under review (dossier bloqué / contrôle) by the funding body?"},
		{ID: engine.BlockReviewGateResolved, Category: "payment", Title: "File under review",
			Body: "Files under review are paid once the check completes, usually within a few weeks. No action is needed on your side."},
		{ID: engine.BlockAmbassadorWhat, Category: "ambassador", Title: "What an ambassador is",
			Body: "An ambassador recommends our trainings around them and earns a commission for each enrolled contact."},
		{ID: engine.BlockAmbassadorProgram, Category: "ambassador", Title: "Ambassador program",
			Body: "The ambassador program pays a commission per validated enrollment. Joining is free and takes a few minutes."},
		{ID: engine.BlockAmbassadorProcess, Category: "ambassador", Title: "Ambassador steps",
			Body: "1. Fill the sign-up form. 2. Share your contacts or referral link. 3. Commissions are paid monthly."},
		{ID: engine.BlockContactTransmission, Category: "contact", Title: "Sending contacts",
			Body: "Send your contact list through the ambassador form; each contact is called within 48h and you are credited automatically."},
		{ID: engine.BlockFormationCatalog, Category: "formation", Title: "Catalog",
			Body: "Domains: languages, accounting, marketing, IT and web, sales, office tools, 3D, skills assessments. Which one interests you?"},
		{ID: engine.BlockFormationOffer, Category: "formation", Title: "Course next step",
			Body: "Good choice. Shall I put you in touch with the team to set up the enrollment?"},
		{ID: engine.BlockFundingAccountInfo, Category: "funding", Title: "Training account",
			Body: "Your training account accrues rights every year; the balance is visible on the official portal and pays for eligible courses."},
		{ID: engine.BlockProspectPitch, Category: "prospect", Title: "Offer",
			Body: "Our certified trainings are fully covered by training funds in most cases. Leave your details and an advisor calls you back."},
		{ID: engine.BlockDelayAskFinancing, Category: "delay", Title: "Timelines by financing",
			Body: "Timelines depend on the financing: self-funded up to 7 days, CPF up to 45 days, OPCO up to 2 months. Which applies to you?"},
		{ID: engine.BlockDeescalation, Category: "tone", Title: "De-escalation",
			Body: "I understand the frustration and I want to get this sorted. Here is what I can do right now."},
		{ID: engine.BlockEscalationAdmin, Category: "escalation", Title: "Admin escalation",
			Body: "Your file is being handed to the administrative team; they come back to you within one business day."},
		{ID: engine.BlockEscalationSales, Category: "escalation", Title: "Team handoff",
			Body: "I am passing you to the team right away; someone takes over this conversation shortly."},
		{ID: engine.BlockErrorFallback, Category: "error", Title: "Fallback",
			Body: "Sorry, something went wrong on our side. A team member takes over this conversation."},
	}
}
