package policy

import (
	"strings"

	"github.com/goliatone/go-responder/core"
)

type intentRule struct {
	intent   string
	keywords []string
}

// intentRules is checked in order, first match wins. Unsubscribe sits
// first: it overrides any other signal present in the same text.
var intentRules = []intentRule{
	{
		intent: core.IntentUnsubscribe,
		keywords: []string{
			"unsubscribe",
			"opt out",
			"opt-out",
			"stop emailing",
			"stop contacting",
			"remove me",
			"take me off",
		},
	},
	{
		intent: core.IntentPricing,
		keywords: []string{
			"pricing",
			"price",
			"cost",
			"how much",
			"quote",
			"plan",
			"tier",
		},
	},
	{
		intent: core.IntentDemo,
		keywords: []string{
			"demo",
			"trial",
			"walkthrough",
			"see it in action",
			"schedule a call",
			"book a call",
		},
	},
	{
		intent: core.IntentSupport,
		keywords: []string{
			"help",
			"support",
			"issue",
			"problem",
			"broken",
			"error",
			"not working",
			"bug",
		},
	},
}

// ClassifyIntent maps message text to an intent by keyword containment.
// Text with no match falls back to the general intent.
func ClassifyIntent(text string) string {
	lowered := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.intent
			}
		}
	}
	return core.IntentGeneral
}
