package engine

import "strings"

// classifierRule pairs a category with its trigger test. Rules run in
// declaration order and the first hit wins, so a message mentioning both a
// payment and a course still lands on payment.
type classifierRule struct {
	category Category
	match    func(text string) bool
}

// Classifier assigns exactly one Category per message. It is a total
// function: text that triggers nothing is "general", never an error.
type Classifier struct {
	rules []classifierRule
}

func NewClassifier(catalog *Catalog) *Classifier {
	return &Classifier{rules: []classifierRule{
		// Definition questions outrank everything except legal phrasing:
		// "what is the money in my account for" must stay on the legal rail.
		{CategoryDefinition, func(text string) bool {
			return catalog.Definition.Matches(text) && !catalog.Legal.Matches(text)
		}},
		{CategoryLegal, catalog.Legal.Matches},
		{CategoryPayment, catalog.Payment.Matches},
		{CategoryAmbassador, catalog.Ambassador.Matches},
		{CategoryContact, catalog.Contact.Matches},
		{CategoryFormation, catalog.Formation.Matches},
		{CategoryHuman, catalog.Human.Matches},
		{CategoryFundingAcc, catalog.FundingAcc.Matches},
		{CategoryProspect, catalog.Prospect.Matches},
		{CategoryDelay, catalog.Delay.Matches},
		{CategoryHostility, catalog.Hostility.Matches},
	}}
}

func (c *Classifier) Classify(text string) Category {
	for _, rule := range c.rules {
		if rule.match(text) {
			return rule.category
		}
	}
	return CategoryGeneral
}

// Normalize lowercases and collapses whitespace. Every keyword test and the
// cache key operate on this form, never on the raw message.
func Normalize(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}
