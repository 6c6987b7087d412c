package core

import (
	"fmt"
	"regexp"
	"strings"
)

type IntentKind string

const (
	IntentKindSetup   IntentKind = "setup_intent"
	IntentKindPayment IntentKind = "payment_intent"
)

var clientSecretPatterns = map[IntentKind]*regexp.Regexp{
	IntentKindSetup:   regexp.MustCompile(`^(seti_\w+?)_secret_\w+$`),
	IntentKindPayment: regexp.MustCompile(`^(pi_\w+?)_secret_\w+$`),
}

// ParseClientSecret recovers the intent id embedded in a client secret and
// checks it belongs to the expected intent kind.
func ParseClientSecret(kind IntentKind, secret string) (string, error) {
	pattern, ok := clientSecretPatterns[kind]
	if !ok {
		return "", newProtocolError(
			fmt.Sprintf("unsupported intent kind %q", kind),
			map[string]any{"intent_kind": string(kind)},
		)
	}
	match := pattern.FindStringSubmatch(strings.TrimSpace(secret))
	if len(match) != 2 {
		return "", newProtocolError(
			fmt.Sprintf("invalid client secret for %s", kind),
			map[string]any{"intent_kind": string(kind)},
		)
	}
	return match[1], nil
}

func FormatClientSecret(intentID string, random string) string {
	return intentID + "_secret_" + random
}
