package sentiment

import (
	"strings"
)

var keywordBuckets = map[Band][]string{
	Positive: {
		"feliz", "contento", "contenta", "alegre", "genial", "excelente", "gracias", "me encanta",
		"bien", "increíble", "maravilloso", "perfecto", "bueno", "buena", "jaja", "amor", "tranquilo",
		"happy", "great", "thanks", "thank you", "love", "awesome", "amazing", "good", "glad",
	},
	Negative: {
		"triste", "mal", "deprimido", "deprimida", "enojado", "enojada", "odio", "horrible", "terrible",
		"ansioso", "ansiosa", "solo", "sola", "cansado", "cansada", "miedo", "llorar", "estresado", "preocupado",
		"sad", "angry", "hate", "awful", "tired", "upset", "depressed", "anxious", "lonely", "worried",
	},
}

const (
	neutralScore = 0.5
	hitWeight    = 0.15
)

// Score 估算单句话的情感分数，范围 [0,1]，0.5 为中性。
// 关键词命中会把分数推向两端，感叹号放大已占优的一侧。
func Score(text string) float64 {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return neutralScore
	}

	hits := make(map[Band]int)
	for band, keywords := range keywordBuckets {
		for _, word := range keywords {
			if containsWord(normalized, word) {
				hits[band]++
			}
		}
	}

	delta := float64(hits[Positive]-hits[Negative]) * hitWeight
	if exclamations := strings.Count(text, "!"); exclamations > 0 && delta != 0 {
		boost := 1 + 0.1*float64(min(exclamations, 3))
		delta *= boost
	}

	return clamp(neutralScore + delta)
}

// Average 返回所有话语分数的均值，没有输入时为中性。
func Average(utterances []string) float64 {
	if len(utterances) == 0 {
		return neutralScore
	}
	var total float64
	for _, u := range utterances {
		total += Score(u)
	}
	return total / float64(len(utterances))
}

// containsWord 按整词匹配，避免 "sola" 命中 "desolado"。
func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos == -1 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		if boundary(text, start-1) && boundary(text, end) {
			return true
		}
		idx = start + 1
		if idx >= len(text) {
			return false
		}
	}
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') && c < 0x80
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
