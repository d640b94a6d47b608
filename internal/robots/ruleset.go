package robots

import (
	"encoding/json"
	"strings"
)

// pathRule is a single allow/disallow prefix rule.
type pathRule struct {
	Prefix string `json:"prefix"`
	Allow  bool   `json:"allow"`
}

// ruleSet is the crawler's own-user-agent decision table for one host,
// already resolved from the host's robots.txt groups. A nil/empty Rules
// with Permissive true means "no applicable restriction was found" —
// either the file was empty, absent, or unreadable.
type ruleSet struct {
	Rules      []pathRule `json:"rules"`
	Permissive bool       `json:"permissive"`
}

// permissiveRuleSet is cached whenever fetching or parsing robots.txt
// fails, so that concurrent misses against a flaky host converge on the
// same permissive decision instead of hammering it again.
func permissiveRuleSet() ruleSet {
	return ruleSet{Permissive: true}
}

// Allows reports whether path is permitted under this rule set. The
// longest matching prefix wins; an exact-length tie favors Allow. No
// match at all defaults to allowed, matching robots.txt semantics where
// an unlisted path is implicitly permitted.
func (rs ruleSet) Allows(path string) bool {
	if rs.Permissive {
		return true
	}
	if path == "" {
		path = "/"
	}

	bestLen := -1
	allowed := true
	for _, rule := range rs.Rules {
		if !strings.HasPrefix(path, rule.Prefix) {
			continue
		}
		if len(rule.Prefix) > bestLen || (len(rule.Prefix) == bestLen && rule.Allow) {
			bestLen = len(rule.Prefix)
			allowed = rule.Allow
		}
	}
	return allowed
}

func serializeRuleSet(rs ruleSet) (string, error) {
	data, err := json.Marshal(rs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func deserializeRuleSet(data string) (ruleSet, error) {
	var rs ruleSet
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		return ruleSet{}, err
	}
	return rs, nil
}

// parseRobotsTxt parses robots.txt content into a ruleSet scoped to
// userAgent. Lines are field:value pairs with "#" comments; unrecognized
// fields and malformed lines are skipped rather than rejected, matching
// real-world robots.txt tolerance.
//
// Only the most specific group matching userAgent (exact match, else the
// wildcard "*" group) contributes rules; groups for unrelated agents are
// ignored.
func parseRobotsTxt(content, userAgent string) ruleSet {
	groups := splitGroups(content)

	exact, wildcard := selectGroups(groups, userAgent)
	group := exact
	if group == nil {
		group = wildcard
	}
	if group == nil {
		return permissiveRuleSet()
	}

	rules := make([]pathRule, 0, len(group.allows)+len(group.disallows))
	for _, p := range group.allows {
		rules = append(rules, pathRule{Prefix: normalizeRulePath(p), Allow: true})
	}
	for _, p := range group.disallows {
		rules = append(rules, pathRule{Prefix: normalizeRulePath(p), Allow: false})
	}
	if len(rules) == 0 {
		return permissiveRuleSet()
	}
	return ruleSet{Rules: rules}
}

type uaGroup struct {
	userAgents []string
	allows     []string
	disallows  []string
}

func splitGroups(content string) []uaGroup {
	var groups []uaGroup
	var current *uaGroup

	for _, rawLine := range strings.Split(content, "\n") {
		line := rawLine
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colon := strings.Index(line, ":")
		if colon == -1 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])

		switch field {
		case "user-agent":
			if current == nil || len(current.allows) > 0 || len(current.disallows) > 0 {
				groups = append(groups, uaGroup{})
				current = &groups[len(groups)-1]
			}
			current.userAgents = append(current.userAgents, value)
		case "allow":
			if current != nil {
				current.allows = append(current.allows, value)
			}
		case "disallow":
			if current != nil {
				current.disallows = append(current.disallows, value)
			}
		}
	}

	return groups
}

func selectGroups(groups []uaGroup, userAgent string) (exact, wildcard *uaGroup) {
	target := strings.ToLower(userAgent)
	for i := range groups {
		g := &groups[i]
		for _, ua := range g.userAgents {
			if ua == "*" && wildcard == nil {
				wildcard = g
			}
			if strings.ToLower(ua) == target {
				return g, wildcard
			}
		}
	}
	return nil, wildcard
}

func normalizeRulePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
