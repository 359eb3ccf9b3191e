package discussion

import (
	"math/rand"
	"strings"

	"github.com/nikhilza/focuspanel/internal/model/discussion"
	"github.com/nikhilza/focuspanel/internal/model/persona"
)

// Template banks for the heuristic dialogue engine. Placeholders are
// substituted from the speaking persona and the session topic; the enrichment
// hook is deliberately not involved here so long runs stay cheap and
// deterministic.

var moderatorPrompts = map[discussion.Phase]string{
	discussion.PhaseOpening:     "Welcome everyone, and thanks for joining! Today we're talking about {topic}. Let's go around the room — tell us a little about yourself and your first impressions.",
	discussion.PhaseExploration: "Great introductions. Now let's get into it — what has your recent experience with {topic} actually been like?",
	discussion.PhaseDeepDive:    "Let's go deeper. What really drives your decisions around {topic}, and what frustrates you the most about it?",
	discussion.PhaseComparison:  "Interesting points so far. How do you weigh your alternatives here — what would make you switch, and what keeps you where you are?",
	discussion.PhaseWrapUp:      "We're almost out of time. If you could tell the people behind {topic} one thing, what would it be?",
}

func moderatorPrompt(phase discussion.Phase, topic string) string {
	tpl, ok := moderatorPrompts[phase]
	if !ok {
		tpl = "Let's keep going — what else comes to mind about {topic}?"
	}
	return strings.ReplaceAll(tpl, "{topic}", topic)
}

var statementTemplates = map[persona.PersonalityType]map[discussion.Phase][]string{
	persona.Enthusiastic: {
		discussion.PhaseOpening: {
			"Hi everyone! I'm {name}, {occupation} from {location}, and honestly I'm so excited we're talking about {topic} — I have way too many stories about this!",
			"Oh this is going to be fun! I'm {name} from {location}, and {topic} is basically half my conversations with friends these days.",
		},
		discussion.PhaseExploration: {
			"Okay so last month I had this amazing experience with {topic} — I told literally everyone about it. The whole thing just clicked for me.",
			"My experience has been mostly great! I jump on anything new around {topic} the moment it shows up, and nine times out of ten I love it.",
		},
		discussion.PhaseDeepDive: {
			"What drives me? Honestly the excitement of finding something new around {topic}. What kills it is when the experience doesn't live up to the hype — that genuinely hurts.",
			"For me it's all about how it makes me feel. When {topic} delivers, I'm telling my whole group chat. When it doesn't, I take it personally!",
		},
		discussion.PhaseComparison: {
			"I've tried pretty much every option out there. The one I stick with just has this energy the others don't — but I'd switch in a heartbeat for something more exciting.",
			"Honestly I don't do loyalty, I do enthusiasm. Whoever makes {topic} feel fresh gets my money that month.",
		},
		discussion.PhaseWrapUp: {
			"One thing? Keep surprising us! The brands that win at {topic} are the ones that make it feel like an event, not a chore.",
			"I'd tell them: your biggest fans are free marketing — give us something worth shouting about and we will.",
		},
	},
	persona.Analytical: {
		discussion.PhaseOpening: {
			"Hello, I'm {name}, a {occupation} based in {location}. I tend to research {topic} quite thoroughly before forming an opinion, so I'm curious where this goes.",
			"I'm {name} from {location}. My first impression of {topic} is that most claims about it don't hold up to scrutiny, which is exactly why I'm here.",
		},
		discussion.PhaseExploration: {
			"My experience is mixed. I compared three options on {topic} recently, built a small spreadsheet, and the price-to-value gap between them was striking.",
			"I approach {topic} methodically — reviews first, then specifications, then price history. The pattern I keep seeing is inflated claims and quiet trade-offs.",
		},
		discussion.PhaseDeepDive: {
			"The deciding factor for me is verifiable value. I budget around {budget} monthly for this, and every rupee has to justify itself. What frustrates me is marketing that obscures the actual numbers.",
			"I want to understand why something costs what it costs. With {topic}, the pricing logic is often opaque, and that opacity is itself a signal.",
		},
		discussion.PhaseComparison: {
			"Comparing options, the differences are smaller than the branding suggests. I'd switch for a measurable ten percent improvement — not for a campaign.",
			"I keep a running comparison of the alternatives. What would make me switch is transparent pricing; what keeps me is simply switching costs, not satisfaction.",
		},
		discussion.PhaseWrapUp: {
			"My one message: publish the real numbers. Customers like me reward transparency around {topic} with long-term loyalty.",
			"I'd ask them to stop optimizing for first impressions and start optimizing for the second purchase. The data is in the repeat rate.",
		},
	},
	persona.Trendy: {
		discussion.PhaseOpening: {
			"Hey! {name} here, {occupation} in {location}. My entire feed is {topic} right now, so yes, I have opinions.",
			"Hi all! I'm {name} — if it's trending around {topic}, I've already seen it, probably tried it, and posted about it.",
		},
		discussion.PhaseExploration: {
			"So everyone on my feed is into {topic} right now, and I tried the viral one last week — it's actually as good as the reels make it look, which almost never happens.",
			"My experience follows the algorithm honestly. Whatever's big around {topic} this month, I've tested it. Some of it slaps, some of it is pure filter.",
		},
		discussion.PhaseDeepDive: {
			"What drives me is not missing out. If three creators I follow are on something in {topic}, I need to know if it's real. What frustrates me is when the aesthetic is the whole product.",
			"Honestly? Social proof. If {topic} looks good on camera and my circle rates it, I'm in. Dated packaging is an instant no.",
		},
		discussion.PhaseComparison: {
			"The alternatives all blur together unless one of them owns the moment. I switch constantly — whoever's collaborating with the right people wins that month.",
			"Loyalty is so last year. The comparison that matters is who's current. Legacy options around {topic} feel like my parents' choices.",
		},
		discussion.PhaseWrapUp: {
			"Tell them: work with creators people actually trust. One authentic collab does more for {topic} than a hundred billboards.",
			"My one thing — be where we are. If your {topic} story isn't on my feed, it doesn't exist.",
		},
	},
	persona.Cautious: {
		discussion.PhaseOpening: {
			"Hello, I'm {name} from {location}. I'll be honest — I'm careful with {topic}. I've been burned before, so I stick with what I know works.",
			"I'm {name}, a {occupation}. My first instinct with {topic} is always to wait and watch. New rarely means better in my experience.",
		},
		discussion.PhaseExploration: {
			"I had one bad experience with {topic} two years ago and it still shapes everything I do. Since then I only go with options my family has used for years.",
			"My experience is deliberately limited. I research {topic} for weeks, ask people I trust, and even then I start with the smallest possible commitment.",
		},
		discussion.PhaseDeepDive: {
			"What drives my decisions is avoiding regret. The biggest frustration with {topic} is how hard it is to undo a mistake — returns, refunds, support, all of it.",
			"Trust drives everything. A brand gets one chance with me, and most of what's new in {topic} hasn't earned that chance yet.",
		},
		discussion.PhaseComparison: {
			"I compare on reliability, not features. The tested option wins even if the new one looks better on paper — paper doesn't help when things go wrong.",
			"What would make me switch? Years of consistent reviews from people like me. What keeps me is simple: the current option has never let me down.",
		},
		discussion.PhaseWrapUp: {
			"My message: make it safe to try. Easy returns and honest guarantees would do more for {topic} than any discount.",
			"I'd say: earn trust slowly and keep it. One bad experience with {topic} loses a customer like me for a decade.",
		},
	},
	persona.Expert: {
		discussion.PhaseOpening: {
			"I'm {name}, {occupation} in {location}. I've been close to the {topic} space for years, so I've seen most of these cycles before.",
			"Hello — {name} here. I work around {topic} professionally, so I'll try to keep the shop talk to a minimum. No promises.",
		},
		discussion.PhaseExploration: {
			"From the inside, {topic} has changed more in the last two years than the previous ten. Most consumers only see the surface of that shift.",
			"My experience is a bit different — I know how {topic} gets made and priced, which makes me both harder to impress and easier to convince with the right details.",
		},
		discussion.PhaseDeepDive: {
			"The real driver in {topic} is supply economics, not consumer preference — the margins dictate what you're offered. The frustration is watching good products lose to better-funded mediocre ones.",
			"What most people miss about {topic} is that the quality difference is usually in the parts you can't see. That's where I focus, and that's what frustrates me about how it's sold.",
		},
		discussion.PhaseComparison: {
			"Between the major options, the honest answer is they source from the same three places. The differences people pay for are mostly positioning.",
			"I'd compare on fundamentals: who controls their quality chain for {topic} and who just brands it. Switch for fundamentals, never for packaging.",
		},
		discussion.PhaseWrapUp: {
			"One thing: respect the informed customer. A spec sheet and a straight answer win people like me, and we bring everyone else along.",
			"My advice to them — invest in the unglamorous parts of {topic}. That's where the next decade's winners are being decided.",
		},
	},
	persona.BudgetFocused: {
		discussion.PhaseOpening: {
			"Hi, I'm {name} from {location}. I keep a strict budget of about {budget} a month for things like {topic}, so value is everything for me.",
			"I'm {name}, a {occupation}. First impression of {topic}? Everything costs more than it should, and I can usually prove it.",
		},
		discussion.PhaseExploration: {
			"My experience with {topic} is basically a long hunt for deals. I track prices across apps, wait for sales, and I've saved thousands doing it.",
			"I never pay full price for {topic}. Last time I stacked a bank offer on a festival sale and got it for forty percent off — that's the only way it fits my {budget} budget.",
		},
		discussion.PhaseDeepDive: {
			"Cost per use drives every decision. If {topic} can't justify itself in those terms, it doesn't matter how good it looks. Hidden charges are my biggest frustration — just show me the final price.",
			"What frustrates me most is fake discounts — inflate the MRP, slash it, call it a sale. I know the real price history of everything I buy in {topic}.",
		},
		discussion.PhaseComparison: {
			"I compare everything on landed price. Brand loyalty costs money, so I have none — whoever's cheapest for the same quality wins, every single time.",
			"The alternatives differ by twenty percent in price and two percent in quality. That math decides it for me; switching costs me nothing but an app download.",
		},
		discussion.PhaseWrapUp: {
			"My one message: reward regulars with real prices, not points. A straight honest discount on {topic} beats every loyalty program ever designed.",
			"Tell them: value shoppers aren't cheap, we're careful. Respect the {budget}-a-month customer and we'll stay for years.",
		},
	},
}

// statementFor renders a personality- and phase-conditioned contribution.
func statementFor(rng *rand.Rand, p persona.Persona, phase discussion.Phase, topic string) string {
	byPhase, ok := statementTemplates[p.Personality]
	if !ok {
		byPhase = statementTemplates[persona.Enthusiastic]
	}
	templates := byPhase[phase]
	if len(templates) == 0 {
		templates = []string{"I have mixed feelings about {topic}, honestly — it depends on the day."}
	}
	tpl := templates[rng.Intn(len(templates))]
	return fillPersona(tpl, p, topic)
}

// Interaction templates, grouped by the reacting personality's typical mode:
// agreement, disagreement, curiosity or a request for clarification.
var interactionTemplates = map[persona.PersonalityType][]string{
	persona.Enthusiastic: {
		"Yes! Exactly what {speaker} said — that's been my experience too, almost word for word!",
		"Oh I love that, {speaker} — can you share which one it was? I need to try it!",
	},
	persona.Analytical: {
		"I'd push back on {speaker} a little — do we have anything beyond anecdote for that? My numbers point the other way.",
		"Interesting claim from {speaker}. What was the actual price difference, roughly? The percentages matter here.",
	},
	persona.Trendy: {
		"Wait, {speaker}, I literally saw a reel about this exact thing yesterday — it's everywhere right now.",
		"Okay but {speaker}, is that the one everyone's posting about? Because the hype is real.",
	},
	persona.Cautious: {
		"I'd be careful with what {speaker} suggested — I tried something similar once and it went badly. Did you check the return policy?",
		"That sounds risky to me, {speaker}. How long have you actually been using it without problems?",
	},
	persona.Expert: {
		"To add context to {speaker}'s point — that's actually a known pattern in this space, and it usually comes down to sourcing.",
		"{speaker} is mostly right, though the underlying reason is different from what most people assume.",
	},
	persona.BudgetFocused: {
		"Hold on {speaker} — how much did that cost? Because I've seen the same thing for half the price online.",
		"I agree with {speaker} on the value point, but only if you buy it during a sale. Full price changes the whole equation.",
	},
}

// interactionFor renders a spontaneous reaction to another participant.
func interactionFor(rng *rand.Rand, reactor, speaker persona.Persona) string {
	templates, ok := interactionTemplates[reactor.Personality]
	if !ok || len(templates) == 0 {
		templates = []string{"That's a fair point, {speaker} — I see it a bit differently though."}
	}
	tpl := templates[rng.Intn(len(templates))]
	tpl = strings.ReplaceAll(tpl, "{speaker}", speaker.Name)
	return fillPersona(tpl, reactor, "")
}

func fillPersona(tpl string, p persona.Persona, topic string) string {
	r := strings.NewReplacer(
		"{name}", p.Name,
		"{occupation}", strings.ToLower(p.Occupation),
		"{location}", p.Location,
		"{budget}", p.MonthlyBudget,
		"{income}", p.IncomeRange,
		"{topic}", topic,
	)
	return r.Replace(tpl)
}
