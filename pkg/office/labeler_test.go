package office

import (
	"testing"

	"github.com/coolbeans/tenure/pkg/infobox"
)

func frameOf(kv ...string) infobox.Frame {
	fields := make(map[string]infobox.Field, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = infobox.Field{Text: kv[i+1]}
	}
	return infobox.Frame{Fields: fields}
}

func TestLabelerRules(t *testing.T) {
	tests := []struct {
		name      string
		frame     infobox.Frame
		wantRule  string
		wantLabel string
	}{
		{"ambassador", frameOf("ambassador_from", "United Kingdom", "country", "Japan"), "ambassador", "ambassador to Japan"},
		{"ambassador unknown country", frameOf("ambassador_from", "United Kingdom"), "ambassador", "ambassador to ?"},
		{"constituency mp", frameOf("constituency_mp", "Tongatapu 5", "parliament", "Tongan"), "constituency-mp", "Tongan MP"},
		{"generic mp", frameOf("constituency_mp", "Tongatapu 5"), "generic-mp", "Member of Parliament"},
		{"assembly", frameOf("assembly", "Northern Ireland"), "assembly", "Member of the Northern Ireland Assembly"},
		{"state delegate", frameOf("state_delegate", "Maryland"), "state-delegate", "Member of the Maryland House of Delegates"},
		{"senator", frameOf("jr/sr", "Senior Senator", "state", "Ohio"), "senator", "Senator"},
		{"parliament", frameOf("parliament", "Scottish"), "parliament", "Scottish MP"},
		{"state house", frameOf("state_house", "Ohio"), "state-house", "Ohio State Representative"},
		{"state legislature", frameOf("state_legislature", "Nebraska"), "state-legislature", "Nebraska State Legislator"},
		{"state senate", frameOf("state_senate", "Texas"), "state-senate", "Texas State Senator"},
		{"state assembly", frameOf("state_assembly", "California"), "state-assembly", "California State Assembly Member"},
		{"us house district", frameOf("state", "Maryland", "district", "5th"), "us-house", "Member of the U.S. House of Representatives"},
		{"us house constituency", frameOf("state", "Maryland", "constituency", "5th"), "us-house", "Member of the U.S. House of Representatives"},
		{"raw title", frameOf("office", "Mayor of Springfield"), "title", "Mayor of Springfield"},
		{"state alone", frameOf("state", "Maryland"), "title", "Maryland"},
	}

	labeler := NewLabeler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := labeler.Match(tt.frame)
			if !ok {
				t.Fatal("Match() found no rule")
			}
			if rule.Name != tt.wantRule {
				t.Errorf("Match() rule = %s, want %s", rule.Name, tt.wantRule)
			}
			if got := labeler.Label(tt.frame); got != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", got, tt.wantLabel)
			}
		})
	}
}

func TestLabelerNoMatch(t *testing.T) {
	labeler := NewLabeler()
	frame := frameOf("term_start", "2004", "order", "7th")
	if _, ok := labeler.Match(frame); ok {
		t.Error("Match() should find no rule for a frame without title sources")
	}
	if got := labeler.Label(frame); got != "" {
		t.Errorf("Label() = %q, want empty", got)
	}
}

func TestLabelerRulesAreOrdered(t *testing.T) {
	want := []string{
		"ambassador", "constituency-mp", "generic-mp", "assembly", "state-delegate",
		"senator", "parliament", "state-house", "state-legislature", "state-senate",
		"state-assembly", "us-house", "title",
	}
	rules := NewLabeler().Rules()
	if len(rules) != len(want) {
		t.Fatalf("Rules() = %d rules, want %d", len(rules), len(want))
	}
	for i, rule := range rules {
		if rule.Name != want[i] {
			t.Errorf("Rules()[%d] = %s, want %s", i, rule.Name, want[i])
		}
	}
}

func TestCustomLabeler(t *testing.T) {
	labeler := NewLabeler(LabelRule{
		Name:  "mayor",
		Match: func(f infobox.Frame) bool { return f.Has("city") },
		Label: func(f infobox.Frame) string { return "Mayor of " + f.Text("city") },
	})
	if got := labeler.Label(frameOf("city", "Springfield")); got != "Mayor of Springfield" {
		t.Errorf("Label() = %q", got)
	}
}

func TestDeordinal(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"2nd Presidential Chief of Staff", "Presidential Chief of Staff"},
		{"31st and 33rd Governor of Ohio", "Governor of Ohio"},
		{"10th & 12th Prime Minister", "Prime Minister"},
		{"  Minister   of Defence ", "Minister of Defence"},
		{"Member of the 2nd Dáil", "Member of the 2nd Dáil"},
	}
	for _, tt := range tests {
		if got := Deordinal(tt.input); got != tt.want {
			t.Errorf("Deordinal(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
