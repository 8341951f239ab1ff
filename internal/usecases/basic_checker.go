package usecases

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"hilalbot/internal/entities"
)

// Common ASCII-for-diacritic typos. Matched per word, case preserved for
// the leading letter.
var turkishTypos = map[string]string{
	"cok":         "çok",
	"guzel":       "güzel",
	"gecen":       "geçen",
	"gidiyom":     "gidiyorum",
	"geliyom":     "geliyorum",
	"yapiyom":     "yapıyorum",
	"ogretmen":    "öğretmen",
	"ogrenci":     "öğrenci",
	"yarin":       "yarın",
	"bugun":       "bugün",
	"dun":         "dün",
	"odev":        "ödev",
	"universite":  "üniversite",
	"turkce":      "Türkçe",
	"tesekkur":    "teşekkür",
	"tesekkurler": "teşekkürler",
	"gunaydin":    "günaydın",
	"nasilsin":    "nasılsın",
	"dusunce":     "düşünce",
	"cocuk":       "çocuk",
	"kucuk":       "küçük",
	"buyuk":       "büyük",
}

var koreanTypos = map[string]string{
	"안되":   "안 돼",
	"할수있다": "할 수 있다",
	"할수없다": "할 수 없다",
	"갈께":   "갈게",
	"할께":   "할게",
	"올께":   "올게",
	"됬다":   "됐다",
	"됬어":   "됐어",
	"왠일":   "웬일",
	"멏":    "몇",
	"어떡게":  "어떻게",
	"금새":   "금세",
	"역활":   "역할",
	"바램":   "바람",
}

var (
	multiSpace      = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeMark = regexp.MustCompile(`\s+([.,!?;:])`)
	markNoSpace     = regexp.MustCompile(`([.,!?;:])(\p{L})`)
)

// BasicChecker is the offline fallback at the end of every grammar chain.
// It fixes spacing, punctuation, capitalization and a dictionary of common
// typos. Running it twice over its own output changes nothing.
type BasicChecker struct{}

func NewBasicChecker() *BasicChecker { return &BasicChecker{} }

func (c *BasicChecker) Name() string      { return "Basic" }
func (c *BasicChecker) IsAvailable() bool { return true }

func (c *BasicChecker) CorrectGrammar(_ context.Context, text, language string) (*entities.CorrectionResult, error) {
	corrected := text
	errs := []entities.CorrectionError{}

	record := func(from, to, why string) {
		if from != to {
			errs = append(errs, entities.CorrectionError{Original: from, Corrected: to, Explanation: why})
		}
	}

	// whitespace
	if next := strings.TrimSpace(multiSpace.ReplaceAllString(corrected, " ")); next != corrected {
		record(corrected, next, explainFor(language, "spacing"))
		corrected = next
	}

	// punctuation hugs the previous word, then takes one space
	if next := spaceBeforeMark.ReplaceAllString(corrected, "$1"); next != corrected {
		record(corrected, next, explainFor(language, "punctuation"))
		corrected = next
	}
	if next := markNoSpace.ReplaceAllString(corrected, "$1 $2"); next != corrected {
		record(corrected, next, explainFor(language, "punctuation"))
		corrected = next
	}

	// dictionary pass, word by word
	typos := turkishTypos
	if language == "ko" {
		typos = koreanTypos
	}
	words := strings.Fields(corrected)
	for i, word := range words {
		trimmed := strings.TrimRightFunc(word, func(r rune) bool { return unicode.IsPunct(r) })
		suffix := word[len(trimmed):]
		if fix, ok := typos[strings.ToLower(trimmed)]; ok {
			replacement := matchCase(trimmed, fix)
			if replacement != trimmed {
				record(trimmed, replacement, explainFor(language, "typo"))
				words[i] = replacement + suffix
			}
		}
	}
	corrected = strings.Join(words, " ")

	// sentence starts get a capital (Korean has no case)
	if language != "ko" {
		if next := capitalizeSentences(corrected, language); next != corrected {
			record(corrected, next, explainFor(language, "capitalization"))
			corrected = next
		}
	}

	return &entities.CorrectionResult{
		OriginalText:  text,
		CorrectedText: corrected,
		ErrorsCount:   len(errs),
		Errors:        errs,
	}, nil
}

// matchCase keeps a capitalized first letter through a dictionary fix.
func matchCase(original, fix string) string {
	if original == "" || fix == "" {
		return fix
	}
	first := []rune(original)[0]
	if unicode.IsUpper(first) {
		runes := []rune(fix)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}
	return fix
}

// upperFor handles the Turkish dotted/dotless i pair, which unicode.ToUpper
// gets wrong for Turkish text.
func upperFor(r rune, language string) rune {
	if language == "tr" {
		switch r {
		case 'i':
			return 'İ'
		case 'ı':
			return 'I'
		}
	}
	return unicode.ToUpper(r)
}

func capitalizeSentences(text, language string) string {
	runes := []rune(text)
	capitalizeNext := true
	for i, r := range runes {
		if capitalizeNext && unicode.IsLetter(r) {
			runes[i] = upperFor(r, language)
			capitalizeNext = false
			continue
		}
		switch r {
		case '.', '!', '?':
			capitalizeNext = true
		default:
			if capitalizeNext && !unicode.IsSpace(r) && !unicode.IsLetter(r) {
				capitalizeNext = false
			}
		}
	}
	return string(runes)
}

var explanations = map[string]map[string]string{
	"tr": {
		"spacing":        "Fazla boşluklar kaldırıldı",
		"punctuation":    "Noktalama işareti düzeltildi",
		"typo":           "Yazım hatası düzeltildi",
		"capitalization": "Cümle büyük harfle başlamalı",
	},
	"ko": {
		"spacing":     "불필요한 공백을 제거했습니다",
		"punctuation": "문장 부호를 수정했습니다",
		"typo":        "맞춤법을 수정했습니다",
	},
	"en": {
		"spacing":        "Removed extra whitespace",
		"punctuation":    "Fixed punctuation spacing",
		"typo":           "Fixed a common misspelling",
		"capitalization": "Sentences start with a capital letter",
	},
}

func explainFor(language, kind string) string {
	if m, ok := explanations[language]; ok {
		if s, ok := m[kind]; ok {
			return s
		}
	}
	return explanations["en"][kind]
}
