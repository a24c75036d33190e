// Package safety holds the pre-generation topic gate and the confidence
// scoring policy. Everything here is pure and synchronous; the gate must run
// before any paid AI call.
package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockResult is the gate's verdict for a topic.
type BlockResult struct {
	Blocked bool
	Reason  string
}

// BlockedError is returned by the generation pipeline when the safety gate
// rejects a topic. It carries the fixed human-readable reason for the match.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("Topic blocked: %s", e.Reason)
}

// educationalAllowlist passes topics immediately, before any block rule runs.
// Allowlist wins over blocklist so legitimate science/history topics are not
// over-blocked.
var educationalAllowlist = []string{
	"nuclear physics",
	"history of warfare",
	"world war ii",
	"chemistry",
	"cybersecurity",
	"photosynthesis",
}

type blockRule struct {
	reason  string
	pattern *regexp.Regexp
}

// blockRules are tested in order; the first match wins.
var blockRules = []blockRule{
	{
		reason:  "Detailed instructions for creating weapons or explosives are not allowed.",
		pattern: regexp.MustCompile(`(?i)(?:how\s+to|instructions?\s+for|guide\s+to|steps?\s+to)\s+(?:make|build|create|assemble|synthesize)\s+(?:an?\s+)?(?:bomb|explosive|ied|molotov|grenade|firearm|ghost\s+gun|weapon|poison|nerve\s+agent)`),
	},
	{
		reason:  "Instructions for illegal drug synthesis are not allowed.",
		pattern: regexp.MustCompile(`(?i)(?:how\s+to|instructions?\s+for|guide\s+to|steps?\s+to)?\s*(?:make|cook|synthesize|manufacture|produce)\s+(?:meth(?:amphetamine)?|crystal\s*meth|heroin|fentanyl|mdma|ecstasy|lsd|cocaine)`),
	},
	{
		reason:  "Cyberattacks on specific targets are not allowed.",
		pattern: regexp.MustCompile(`(?i)(?:how\s+to|ways?\s+to|guide\s+to|steps?\s+to)\s+(?:hack|breach|phish|ddos|exploit|crack)\s+(?:into\s+)?(?:a\s+)?(?:bank\s+account|email\s+account|social\s+media\s+account|server|website|wifi|router|someone'?s\s+account|specific\s+target)`),
	},
	{
		reason:  "Content related to child sexual abuse or exploitation is not allowed.",
		pattern: regexp.MustCompile(`(?i)(?:child\s+sexual\s+abuse|csam|child\s+exploitation|sexual\s+content\s+with\s+minors|minor\s+sexual\s+content)`),
	},
	{
		reason:  "Detailed instructions for violence or terrorism are not allowed.",
		pattern: regexp.MustCompile(`(?i)(?:how\s+to|instructions?\s+for|guide\s+to|steps?\s+to)\s+(?:carry\s+out|plan|execute|commit|perform)\s+(?:an?\s+)?(?:terror(?:ist)?\s+attack|mass\s+shooting|assassination|violent\s+attack)`),
	},
}

// Check normalizes the topic and tests it against the educational allowlist,
// then the ordered block rules.
func Check(topic string) BlockResult {
	normalized := strings.ToLower(strings.TrimSpace(topic))

	if normalized == "" {
		return BlockResult{Blocked: false}
	}

	for _, phrase := range educationalAllowlist {
		if strings.Contains(normalized, phrase) {
			return BlockResult{Blocked: false}
		}
	}

	for _, rule := range blockRules {
		if rule.pattern.MatchString(normalized) {
			return BlockResult{Blocked: true, Reason: rule.reason}
		}
	}

	return BlockResult{Blocked: false}
}
