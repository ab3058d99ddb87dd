package parse

import "testing"

func TestExtractTranslation(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"clean json", `{"translation": "Hello"}`, "Hello", false},
		{"fenced json", "```json\n{\"translation\": \"Hello\"}\n```", "Hello", false},
		{"json with prose", `Sure! {"translation": "Hello"} Hope this helps.`, "Hello", false},
		{"escaped quotes", `{"translation": "He said \"hi\""}`, `He said "hi"`, false},
		{"recovered escaped quotes", `{"translation": "Il a dit \"oui\"",`, `Il a dit "oui"`, false},
		{"recovered unicode and backslash", `{"translation": "café \\ tab\there"`, "café \\ tab\there", false},
		{"label fallback", "Translation: Hello there", "Hello there", false},
		{"plain text fallback", "Hello there", "Hello there", false},
		{"empty", "", "", true},
		{"broken json no translation", `{"other": "x"}`, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractTranslation(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAbbreviate(t *testing.T) {
	if got := Abbreviate("abcdef", 4); got != "a..." {
		t.Errorf("got %q", got)
	}
	if got := Abbreviate("abc", 4); got != "abc" {
		t.Errorf("got %q", got)
	}
}
