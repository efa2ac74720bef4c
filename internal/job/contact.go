package job

import "strings"

// NormalizeContact は連絡先文字列を重複判定・検索キー用に正規化する。
// ASCII英数字と@以外の文字をすべて取り除き、小文字に変換する。
// 電話番号のハイフンや空白、メールアドレスの大文字表記の揺れを吸収するため、
// "John@Email.com"・"john@email.com"・"John @ Email . com" はすべて同一キーになる。
// 正規化は書き込み時に行い、保存済みの値に対するクエリ時変換は行わない。
func NormalizeContact(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '@':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}

	return b.String()
}
