package sentiment

import (
	"fmt"
	"strconv"
)

// Band 表示由平均分推导出的情感区间。
type Band string

const (
	Positive    Band = "positive"
	Neutral     Band = "neutral"
	Negative    Band = "negative"
	Unavailable Band = "unavailable"
)

const (
	positiveThreshold = 0.7
	neutralThreshold  = 0.4
)

// FailureText 在无法获取平均分时展示。
const FailureText = "No se pudo obtener el análisis de sentimiento. Inténtalo más tarde."

// Classify 将分数映射到对应区间。
func Classify(score float64) Band {
	switch {
	case score >= positiveThreshold:
		return Positive
	case score >= neutralThreshold:
		return Neutral
	default:
		return Negative
	}
}

// Summary 是情感弹窗的展示数据。
type Summary struct {
	Average   float64
	Band      Band
	Text      string
	Available bool
}

// Summarize 根据获取到的平均分生成弹窗内容。
func Summarize(average float64) Summary {
	band := Classify(average)
	return Summary{
		Average:   average,
		Band:      band,
		Text:      describe(band, average),
		Available: true,
	}
}

// Failed 返回获取失败时展示的固定内容。
func Failed() Summary {
	return Summary{Band: Unavailable, Text: FailureText}
}

func describe(band Band, average float64) string {
	value := strconv.FormatFloat(average, 'f', -1, 64)
	switch band {
	case Positive:
		return fmt.Sprintf("¡Tus conversaciones reflejan un sentimiento positivo! 😊 Promedio: %s", value)
	case Neutral:
		return fmt.Sprintf("Tus conversaciones reflejan un sentimiento neutral. 😐 Promedio: %s", value)
	default:
		return fmt.Sprintf("Tus conversaciones reflejan un sentimiento negativo. 😔 Promedio: %s", value)
	}
}
