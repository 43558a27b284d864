// Package sentiment derives lexicon baseline trend predictions with VADER.
package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/trendeval/internal/models"
)

// DefaultThreshold is the compound score magnitude needed to call a trend.
const DefaultThreshold = 0.20

var (
	analyzer = govader.NewSentimentIntensityAnalyzer()

	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	text := html.UnescapeString(tagPattern.ReplaceAllString(string(output), " "))
	return strings.Join(strings.Fields(text), " ")
}

// Score returns the VADER compound score of text in [-1, 1].
func Score(text string) float64 {
	return analyzer.PolarityScores(ConvertMarkdownToText(text)).Compound
}

// TrendFromScore maps a compound score onto the label set.
func TrendFromScore(score, threshold float64) models.Label {
	switch {
	case score >= threshold:
		return models.LabelRise
	case score <= -threshold:
		return models.LabelFall
	default:
		return models.LabelNeutral
	}
}

// Baseline predicts a trend label for each text.
func Baseline(texts []string, threshold float64) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = string(TrendFromScore(Score(text), threshold))
	}
	return out
}
