package patch

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii untouched", "func main() {}", "func main() {}"},
		{"smart single quotes", "it’s ‘done’", "it's 'done'"},
		{"smart double quotes", "say “hi” and „bye”", `say "hi" and "bye"`},
		{"dashes", "a – b — c − d", "a - b - c - d"},
		{"non-breaking space", "a b", "a b"},
		{"ellipsis", "wait…", "wait..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		search    string
		want      float64
	}{
		{"identical", "abcd", "abcd", 1.0},
		{"empty search never matches", "anything", "", 0},
		{"empty candidate vs empty search", "", "", 0},
		{"one substitution in four", "abcd", "abce", 0.75},
		{"completely different", "aaaa", "zzzz", 0},
		{"smart quotes fold to identical", "it’s fine", "it's fine", 1.0},
		{"em dash folds to identical", "a — b", "a - b", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.candidate, tt.search)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.candidate, tt.search, got, tt.want)
			}
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"short", "a much longer string entirely"},
		{"", "x"},
		{"x", "y"},
		{"hello world", "hello world"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		if s < 0 || s > 1 {
			t.Errorf("Score(%q, %q) = %v, out of [0,1]", p[0], p[1], s)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func BenchmarkScore(b *testing.B) {
	candidate := "func process(items []Item) error {\n\tfor _, it := range items {\n\t\thandle(it)\n\t}\n\treturn nil\n}"
	search := "func process(items []Item) error {\n\tfor _, item := range items {\n\t\thandle(item)\n\t}\n\treturn nil\n}"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Score(candidate, search)
	}
}
