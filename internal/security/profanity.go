package security

import "strings"

// ProfanityFilter は投稿テキストに不適切な表現が含まれるかを判定する。
// 単語リストによる単純な部分一致フィルタで、掲示板の対象地域が
// 英語圏のため英語の語彙のみを対象とする。
type ProfanityFilter struct {
	words []string
}

// defaultProfanityWords はデフォルトの禁止語リスト。
// 部分一致で判定するため、語形変化もある程度カバーされる。
var defaultProfanityWords = []string{
	"fuck", "shit", "bitch", "asshole", "bastard",
	"cunt", "dick", "faggot", "nigger", "whore", "slut",
}

// NewProfanityFilter はデフォルトの禁止語リストでProfanityFilterを生成する。
func NewProfanityFilter() *ProfanityFilter {
	return &ProfanityFilter{words: defaultProfanityWords}
}

// NewProfanityFilterWithWords は指定した禁止語リストでProfanityFilterを生成する。
// テストおよび運用での語彙調整用。
func NewProfanityFilterWithWords(words []string) *ProfanityFilter {
	return &ProfanityFilter{words: words}
}

// Contains はいずれかのテキストに禁止語が含まれる場合にtrueを返す。
// 判定は大文字小文字を区別しない。
func (f *ProfanityFilter) Contains(texts ...string) bool {
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, w := range f.words {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	return false
}
