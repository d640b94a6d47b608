package robots

import "testing"

func TestRuleSetAllowsLongestPrefixWins(t *testing.T) {
	rs := ruleSet{Rules: []pathRule{
		{Prefix: "/", Allow: true},
		{Prefix: "/private/", Allow: false},
		{Prefix: "/private/public/", Allow: true},
	}}

	cases := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/about", true},
		{"/private/data", false},
		{"/private/public/file", true},
	}
	for _, c := range cases {
		if got := rs.Allows(c.path); got != c.want {
			t.Errorf("Allows(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestRuleSetNoMatchDefaultsAllowed(t *testing.T) {
	rs := ruleSet{Rules: []pathRule{{Prefix: "/admin/", Allow: false}}}
	if !rs.Allows("/public/page") {
		t.Error("expected unlisted path to default to allowed")
	}
}

func TestPermissiveRuleSetAllowsEverything(t *testing.T) {
	rs := permissiveRuleSet()
	if !rs.Allows("/anything/at/all") {
		t.Error("expected permissive rule set to allow everything")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	rs := ruleSet{Rules: []pathRule{{Prefix: "/admin/", Allow: false}}}

	serialized, err := serializeRuleSet(rs)
	if err != nil {
		t.Fatalf("serializeRuleSet failed: %v", err)
	}

	got, err := deserializeRuleSet(serialized)
	if err != nil {
		t.Fatalf("deserializeRuleSet failed: %v", err)
	}
	if !got.Allows("/public") || got.Allows("/admin/page") {
		t.Errorf("round trip changed semantics: %+v", got)
	}
}

func TestDeserializeRuleSetInvalidJSON(t *testing.T) {
	if _, err := deserializeRuleSet("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseRobotsTxtWildcardGroup(t *testing.T) {
	content := `User-agent: *
Disallow: /private/
Allow: /private/public/
`
	rs := parseRobotsTxt(content, "nzcrawl")

	if rs.Allows("/private/secret") {
		t.Error("expected /private/secret to be disallowed")
	}
	if !rs.Allows("/private/public/file") {
		t.Error("expected /private/public/file to be allowed")
	}
	if !rs.Allows("/other") {
		t.Error("expected unlisted path to be allowed")
	}
}

func TestParseRobotsTxtExactAgentPreferredOverWildcard(t *testing.T) {
	content := `User-agent: *
Disallow: /

User-agent: nzcrawl
Disallow: /admin/
`
	rs := parseRobotsTxt(content, "nzcrawl")

	if !rs.Allows("/anything") {
		t.Error("expected exact-agent group to win over the wildcard group")
	}
	if rs.Allows("/admin/panel") {
		t.Error("expected /admin/panel to remain disallowed for the exact agent")
	}
}

func TestParseRobotsTxtIgnoresComments(t *testing.T) {
	content := `# full site block below
User-agent: *
Disallow: /private/ # internal docs
`
	rs := parseRobotsTxt(content, "nzcrawl")
	if rs.Allows("/private/file") {
		t.Error("expected comment-trimmed line to still apply the disallow rule")
	}
}

func TestParseRobotsTxtEmptyContentIsPermissive(t *testing.T) {
	rs := parseRobotsTxt("", "nzcrawl")
	if !rs.Allows("/anything") {
		t.Error("expected empty robots.txt to be permissive")
	}
}

func TestNormalizeRulePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/a":      "/a",
		"a":       "/a",
		"/a/b/c/": "/a/b/c/",
	}
	for in, want := range cases {
		if got := normalizeRulePath(in); got != want {
			t.Errorf("normalizeRulePath(%q) = %q, want %q", in, got, want)
		}
	}
}
