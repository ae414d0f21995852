package engine

import "strings"

// KeywordSet is an immutable named set of trigger phrases. Matching is a
// plain substring test against normalized text; there is no stemming or
// fuzzy logic anywhere in the engine.
type KeywordSet struct {
	Name    string
	Phrases []string
}

func (k KeywordSet) Matches(text string) bool {
	for _, phrase := range k.Phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// MatchesToken is the strict variant used for yes/no style answers:
// single-word phrases must appear as a whole token ("no" must not fire on
// "know"), multi-word phrases match as substrings like Matches.
func (k KeywordSet) MatchesToken(text string) bool {
	var tokens []string
	for _, phrase := range k.Phrases {
		if strings.ContainsRune(phrase, ' ') {
			if strings.Contains(text, phrase) {
				return true
			}
			continue
		}
		if tokens == nil {
			tokens = strings.FieldsFunc(text, func(r rune) bool {
				return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?' || r == ';' || r == ':'
			})
		}
		for _, token := range tokens {
			if token == phrase {
				return true
			}
		}
	}
	return false
}

// Catalog holds every keyword set the classifier and policy consult. It is
// built once at startup and shared read-only across requests.
type Catalog struct {
	Definition KeywordSet
	Legal      KeywordSet
	Payment    KeywordSet
	Ambassador KeywordSet
	Contact    KeywordSet
	Formation  KeywordSet
	Human      KeywordSet
	FundingAcc KeywordSet
	Prospect   KeywordSet
	Delay      KeywordSet
	Hostility  KeywordSet

	DirectFinancing KeywordSet
	TypeBFinancing  KeywordSet
	TypeAToken      string

	AmbassadorFollowUp KeywordSet
	CourseInterest     KeywordSet
	CourseTopics       KeywordSet
	Affirmation        KeywordSet
	Negation           KeywordSet
}

// DefaultCatalog carries the production trigger phrases. The support channel
// historically ran in French; English equivalents are included because the
// channel accepts both.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Definition: KeywordSet{Name: "definition", Phrases: []string{
			"c'est quoi", "qu'est-ce que", "qu'est ce que", "définition", "définir", "expliquer",
			"what is a", "what is an", "what does", "meaning of", "explain what",
		}},
		Legal: KeywordSet{Name: "legal", Phrases: []string{
			"décaisser le cpf", "récupérer mon argent", "récupérer l'argent", "prendre l'argent",
			"argent du cpf", "sortir l'argent", "toucher l'argent", "retirer l'argent",
			"récupérer cpf", "récupérer mon cpf", "décaisser cpf",
			"je veux l'argent de mon cpf", "je veux récupérer mon argent",
			"frauder", "arnaquer", "contourner", "bidouiller",
			"cash out my cpf", "withdraw the money", "get the money out",
			"get my training money back", "defraud", "scam the", "work around the rules",
		}},
		Payment: KeywordSet{Name: "payment", Phrases: []string{
			"paiement", "payé", "payée", "payer", "virement", "remboursement", "rémunération",
			"argent", "sous", "commission",
			"pas encore reçu", "pas encore payé", "pas encore touché",
			"toujours pas reçu", "toujours pas payé", "toujours pas été payé", "toujours pas touché",
			"pas reçu", "pas payé", "pas touché",
			"reçois quand", "quand je reçois", "quand je vais recevoir", "quand je serai payé",
			"délai paiement", "délai virement", "délai remboursement",
			"not been paid", "haven't been paid", "havent been paid", "still not paid",
			"not received my money", "waiting for my money", "waiting for payment",
			"was paid through", "paid through", "payment", "bank transfer", "reimbursement",
			"when do i get paid", "when will i be paid",
		}},
		Ambassador: KeywordSet{Name: "ambassador", Phrases: []string{
			"ambassadeur", "ambassadeurs", "ambassadrice", "affiliation", "affilié",
			"programme ambassadeur", "devenir ambassadeur", "parrainage",
			"ambassador", "affiliate", "referral program", "become an ambassador",
		}},
		Contact: KeywordSet{Name: "contact", Phrases: []string{
			"envoyer des contacts", "liste de contacts", "transmettre des contacts",
			"envoyer ma liste", "formulaire contacts", "mes contacts",
			"send contacts", "send my contacts", "list of contacts", "submit contacts",
			"contact list",
		}},
		Formation: KeywordSet{Name: "formation", Phrases: []string{
			"formation", "formations", "se former", "catalogue", "vous proposez quoi",
			"quelles formations", "cours de", "apprendre", "stage", "e-learning",
			"spécialités", "domaines",
			"training course", "training courses", "course catalog", "courses do you offer",
			"enroll", "learn", "which courses",
		}},
		Human: KeywordSet{Name: "human", Phrases: []string{
			"parler à un humain", "parler à quelqu'un", "parler a un humain", "un conseiller",
			"être rappelé", "parler au téléphone", "échange téléphonique", "un responsable",
			"un manager", "une vraie personne",
			"speak to a human", "talk to a human", "talk to someone", "real person",
			"human agent", "speak with an advisor", "call me",
		}},
		FundingAcc: KeywordSet{Name: "funding_account", Phrases: []string{
			"cpf", "compte personnel de formation", "mon compte formation",
			"droit formation", "crédit formation", "heures formation",
			"training account", "training credit",
		}},
		Prospect: KeywordSet{Name: "prospect", Phrases: []string{
			"prospect", "prospection", "client potentiel", "nouveau client", "devis", "tarif",
			"prix", "coût", "offre",
			"pitch", "sales pitch", "pricing", "quote", "how much does it cost",
		}},
		Delay: KeywordSet{Name: "delay", Phrases: []string{
			"délai", "délais", "combien de temps", "dans combien de temps", "durée",
			"attendre", "attente", "ça fait", "depuis",
			"how long", "how much time", "waiting time", "turnaround", "since", "it has been",
			"days ago", "weeks ago", "months ago", "jours", "semaines",
		}},
		Hostility: KeywordSet{Name: "hostility", Phrases: []string{
			"merde", "putain", "connard", "connasse", "salope", "enculé", "nuls", "nulles",
			"incompétents", "incompétent", "débiles", "imbéciles", "va te faire",
			"je vous déteste", "vous me saoulez", "ta gueule",
			"fuck", "shit", "asshole", "bitch", "you are useless", "you're useless",
			"bunch of idiots", "incompetent",
		}},

		DirectFinancing: KeywordSet{Name: "financing_direct", Phrases: []string{
			"j'ai payé", "j'ai financé", "j'ai tout payé", "payé tout seul", "payé directement",
			"c'est moi qui ai payé", "financement direct", "paiement direct", "financement en direct",
			"auto-financement", "de ma poche", "mes propres moyens", "financé moi-même",
			"i paid myself", "paid it myself", "financed it myself", "paid for it myself",
			"self-funded", "out of my own pocket", "paid directly", "own funds",
		}},
		TypeBFinancing: KeywordSet{Name: "financing_opco", Phrases: []string{
			"opco", "opérateur de compétences", "financement opco", "fonds formation",
			"skills operator", "training fund",
		}},
		TypeAToken: "cpf",

		AmbassadorFollowUp: KeywordSet{Name: "ambassador_follow_up", Phrases: []string{
			"comment faire", "comment procéder", "étapes", "processus", "démarrage", "comment ça marche",
			"how do i start", "what are the steps", "how does it work", "next steps",
		}},
		CourseInterest: KeywordSet{Name: "course_interest", Phrases: []string{
			"intéressé par", "intéressée par", "je choisis", "je veux", "je voudrais",
			"m'intéresse", "je prends", "je souhaite",
			"interested in", "i choose", "i want", "i would like", "i'd like", "sign me up",
		}},
		CourseTopics: KeywordSet{Name: "course_topics", Phrases: []string{
			"comptabilité", "marketing", "langues", "anglais", "français", "espagnol",
			"bureautique", "informatique", "vente", "web", "3d", "développement",
			"bilan", "écologie",
			"accounting", "english", "spanish", "languages", "office", "it course",
			"sales", "web design", "marketing",
		}},
		Affirmation: KeywordSet{Name: "affirmation", Phrases: []string{
			"oui", "ouais", "d'accord", "ok", "parfait", "bien sûr", "volontiers",
			"je veux bien", "on m'a informé", "j'ai été informé",
			"yes", "yep", "sure", "of course", "sounds good", "i was informed", "they told me",
		}},
		Negation: KeywordSet{Name: "negation", Phrases: []string{
			"non", "pas du tout", "pas encore", "jamais", "personne ne m'a",
			"no", "not at all", "not yet", "never", "nobody told me", "no one told me",
		}},
	}
}
