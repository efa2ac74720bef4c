package security

import "testing"

func TestProfanityFilter_Contains(t *testing.T) {
	f := NewProfanityFilterWithWords([]string{"badword", "worse"})

	tests := []struct {
		name  string
		texts []string
		want  bool
	}{
		{name: "禁止語を含む", texts: []string{"this is a badword here"}, want: true},
		{name: "大文字小文字を区別しない", texts: []string{"This Is A BADWORD"}, want: true},
		{name: "複数テキストのいずれかに含まれる", texts: []string{"clean text", "even worse text"}, want: true},
		{name: "語の一部として含まれる", texts: []string{"badwords everywhere"}, want: true},
		{name: "禁止語を含まない", texts: []string{"perfectly fine text"}, want: false},
		{name: "空テキスト", texts: []string{""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Contains(tt.texts...); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.texts, got, tt.want)
			}
		})
	}
}

func TestNewProfanityFilter_DefaultWords(t *testing.T) {
	f := NewProfanityFilter()

	if !f.Contains("what the fuck") {
		t.Error("default word list must catch common profanity")
	}
	if f.Contains("fence repair in Colville") {
		t.Error("default word list must not flag clean text")
	}
}
