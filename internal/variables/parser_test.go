package variables

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []Variable
	}{
		{
			name:     "empty template",
			template: "",
			want:     []Variable{},
		},
		{
			name:     "no placeholders",
			template: "plain text with { single } braces",
			want:     []Variable{},
		},
		{
			name:     "text variables",
			template: "Hello {{Name}}, welcome to {{Place}}.",
			want: []Variable{
				{Name: "Name", Kind: KindText},
				{Name: "Place", Kind: KindText},
			},
		},
		{
			name:     "select variable",
			template: "Write a {{Tone:Professional|Casual}} email.",
			want: []Variable{
				{
					Name:    "Tone",
					Kind:    KindSelect,
					Options: []string{"Professional", "Casual"},
					Default: strPtr("Professional"),
					Value:   "Professional",
				},
			},
		},
		{
			name:     "number variable",
			template: "Max length: {{Length#100}}.",
			want: []Variable{
				{Name: "Length", Kind: KindNumber, Default: strPtr("100"), Value: "100"},
			},
		},
		{
			name:     "number default is not validated",
			template: "{{Count#many}}",
			want: []Variable{
				{Name: "Count", Kind: KindNumber, Default: strPtr("many"), Value: "many"},
			},
		},
		{
			name:     "empty number default",
			template: "{{Count#}}",
			want: []Variable{
				{Name: "Count", Kind: KindNumber, Default: strPtr(""), Value: ""},
			},
		},
		{
			name:     "colon wins over hash",
			template: "{{Size:#1|#2}}",
			want: []Variable{
				{
					Name:    "Size",
					Kind:    KindSelect,
					Options: []string{"#1", "#2"},
					Default: strPtr("#1"),
					Value:   "#1",
				},
			},
		},
		{
			name:     "split on first colon only",
			template: "{{At:10:30|11:00}}",
			want: []Variable{
				{
					Name:    "At",
					Kind:    KindSelect,
					Options: []string{"10:30", "11:00"},
					Default: strPtr("10:30"),
					Value:   "10:30",
				},
			},
		},
		{
			name:     "split on first hash only",
			template: "{{Id#1#2}}",
			want: []Variable{
				{Name: "Id", Kind: KindNumber, Default: strPtr("1#2"), Value: "1#2"},
			},
		},
		{
			name:     "trailing pipe keeps empty option",
			template: "{{Mood:Happy|}}",
			want: []Variable{
				{
					Name:    "Mood",
					Kind:    KindSelect,
					Options: []string{"Happy", ""},
					Default: strPtr("Happy"),
					Value:   "Happy",
				},
			},
		},
		{
			name:     "empty option list",
			template: "{{Mood:}}",
			want: []Variable{
				{
					Name:    "Mood",
					Kind:    KindSelect,
					Options: []string{""},
					Default: strPtr(""),
					Value:   "",
				},
			},
		},
		{
			name:     "empty placeholder",
			template: "before {{}} after",
			want: []Variable{
				{Name: "", Kind: KindText},
			},
		},
		{
			name:     "whitespace is kept verbatim",
			template: "{{ Name }}",
			want: []Variable{
				{Name: " Name ", Kind: KindText},
			},
		},
		{
			name:     "unicode content is opaque",
			template: "寫一篇關於{{主題}}的文章，語氣{{語氣:正式|輕鬆}}",
			want: []Variable{
				{Name: "主題", Kind: KindText},
				{
					Name:    "語氣",
					Kind:    KindSelect,
					Options: []string{"正式", "輕鬆"},
					Default: strPtr("正式"),
					Value:   "正式",
				},
			},
		},
		{
			name:     "nearest closing delimiter ends the placeholder",
			template: "{{a{{b}}c}}",
			want: []Variable{
				{Name: "a{{b", Kind: KindText},
			},
		},
		{
			name:     "placeholders do not span lines",
			template: "{{Multi\nLine}} {{One}}",
			want: []Variable{
				{Name: "One", Kind: KindText},
			},
		},
		{
			name:     "carriage return ends a line",
			template: "{{A\rB}}",
			want:     []Variable{},
		},
		{
			name:     "line separator ends a line",
			template: "{{A\u2028B}}",
			want:     []Variable{},
		},
		{
			name:     "paragraph separator ends a line",
			template: "{{A\u2029B}} {{C}}",
			want: []Variable{
				{Name: "C", Kind: KindText},
			},
		},
		{
			name:     "unterminated placeholder",
			template: "{{Open and {{Closed}}",
			want: []Variable{
				{Name: "Open and {{Closed", Kind: KindText},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.template)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}

func TestParseDeduplicates(t *testing.T) {
	vars := Parse("{{Topic}} is great. I love {{Topic}}.")
	require.Len(t, vars, 1)
	require.Equal(t, "Topic", vars[0].Name)
}

func TestParseFirstDeclarationWins(t *testing.T) {
	vars := Parse("{{Tone}} then {{Tone:Formal|Casual}} then {{Level#3}} and {{Level:a|b}}")

	want := []Variable{
		{Name: "Tone", Kind: KindText},
		{Name: "Level", Kind: KindNumber, Default: strPtr("3"), Value: "3"},
	}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Fatalf("unexpected variables (-want +got):\n%s", diff)
	}
}

func TestParseKeepsFirstOccurrenceOrder(t *testing.T) {
	vars := Parse("{{C}} {{A}} {{C}} {{B}} {{A}} {{D#1}} {{B}}")

	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	require.Equal(t, []string{"C", "A", "B", "D"}, names)
}

func TestParseSelectDefaultIsFirstOption(t *testing.T) {
	for _, v := range Parse("{{A:x|y}} {{B:|z}} {{C:only}}") {
		require.Equal(t, KindSelect, v.Kind)
		require.NotEmpty(t, v.Options)
		def, ok := v.DefaultValue()
		require.True(t, ok)
		require.Equal(t, v.Options[0], def)
		require.Equal(t, def, v.Value)
	}
}

func TestParseReturnsIndependentDescriptors(t *testing.T) {
	tmpl := "{{Tone:A|B}}"
	first := Parse(tmpl)
	first[0].Options[0] = "changed"
	*first[0].Default = "changed"

	second := Parse(tmpl)
	require.Equal(t, []string{"A", "B"}, second[0].Options)
	require.Equal(t, "A", *second[0].Default)
}

func TestReparse(t *testing.T) {
	previous := []Variable{{Name: "Topic", Kind: KindText, Value: "AI"}}

	vars := Reparse("Write about {{Topic}} in {{Year#2024}}.", previous)

	want := []Variable{
		{Name: "Topic", Kind: KindText, Value: "AI"},
		{Name: "Year", Kind: KindNumber, Default: strPtr("2024"), Value: "2024"},
	}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Fatalf("unexpected variables (-want +got):\n%s", diff)
	}
}

func TestReparseOverridesDefaults(t *testing.T) {
	previous := Parse("{{Tone:Professional|Casual}} {{Length#100}}")
	previous[0].Value = "Casual"
	previous[1].Value = ""

	vars := Reparse("{{Length#500}} {{Tone:Professional|Casual|Witty}}", previous)
	require.Len(t, vars, 2)

	require.Equal(t, "Length", vars[0].Name)
	require.Equal(t, "500", *vars[0].Default)
	require.Equal(t, "", vars[0].Value, "carried empty value replaces the default")

	require.Equal(t, "Tone", vars[1].Name)
	require.Equal(t, []string{"Professional", "Casual", "Witty"}, vars[1].Options)
	require.Equal(t, "Casual", vars[1].Value)
}

func TestReparseDropsVanishedNames(t *testing.T) {
	previous := []Variable{
		{Name: "Old", Kind: KindText, Value: "gone"},
		{Name: "Kept", Kind: KindText, Value: "here"},
	}

	vars := Reparse("{{Kept}} {{New}}", previous)
	require.Equal(t, []Variable{
		{Name: "Kept", Kind: KindText, Value: "here"},
		{Name: "New", Kind: KindText, Value: ""},
	}, vars)
}

func TestReparseCarriesValueAcrossKindChange(t *testing.T) {
	previous := []Variable{{Name: "Count", Kind: KindText, Value: "seven"}}

	vars := Reparse("{{Count#10}}", previous)
	require.Len(t, vars, 1)
	require.Equal(t, KindNumber, vars[0].Kind)
	require.Equal(t, "seven", vars[0].Value)
}

func TestReparseDoesNotMutatePrevious(t *testing.T) {
	previous := []Variable{{Name: "Topic", Kind: KindText, Value: "AI"}}
	_ = Reparse("{{Topic:Go|Rust}}", previous)
	require.Equal(t, []Variable{{Name: "Topic", Kind: KindText, Value: "AI"}}, previous)
}

func TestReparseWithoutPrevious(t *testing.T) {
	tmpl := "{{A}} {{B:x|y}} {{C#3}}"
	require.Equal(t, Parse(tmpl), Reparse(tmpl, nil))
}
