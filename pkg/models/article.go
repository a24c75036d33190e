package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus is the lifecycle state of a generated article.
// Articles are persisted directly as "completed"; "generating" and "failed"
// exist in the schema for future use and are never written by the pipeline.
type ArticleStatus string

const (
	ArticleStatusGenerating ArticleStatus = "generating"
	ArticleStatusCompleted  ArticleStatus = "completed"
	ArticleStatusFailed     ArticleStatus = "failed"
)

// Source is a research result consulted while writing an article.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Section is one block of article content. Citations holds indices into the
// article's citation list; writer output is not guaranteed to keep them in
// range, so consumers must bounds-check.
type Section struct {
	Heading   string `json:"heading"`
	Content   string `json:"content"`
	Citations []int  `json:"citations"`
}

// Citation is a formatted reference to a consulted source.
type Citation struct {
	Text         string `json:"text"`
	URL          string `json:"url"`
	AccessedDate string `json:"accessedDate"`
}

// Draft is the writer agent's output before citations and scoring.
type Draft struct {
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Sections      []Section `json:"sections"`
	RelatedTopics []string  `json:"relatedTopics"`
}

// Article is the unit of cached knowledge, unique on (topic, locale) and on
// (slug, locale).
type Article struct {
	ID               uuid.UUID     `json:"id"`
	Slug             string        `json:"slug"`
	Topic            string        `json:"topic"`
	Locale           string        `json:"locale"`
	Title            string        `json:"title"`
	Summary          string        `json:"summary"`
	Sections         []Section     `json:"sections"`
	Citations        []Citation    `json:"citations"`
	RelatedTopics    []string      `json:"relatedTopics"`
	ModelUsed        string        `json:"modelUsed"`
	SystemPromptUsed string        `json:"systemPromptUsed"`
	SourcesConsulted []Source      `json:"sourcesConsulted"`
	ConfidenceScore  float64       `json:"confidenceScore"`
	GenerationTimeMs int           `json:"generationTimeMs"`
	Status           ArticleStatus `json:"status"`
	GeneratedAt      time.Time     `json:"generatedAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

var (
	slugStripPattern    = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s-]`)
	slugSpacePattern    = regexp.MustCompile(`\s+`)
	slugHyphenPattern   = regexp.MustCompile(`-+`)
	slugTrimHyphenEdges = regexp.MustCompile(`^-|-$`)
)

// TopicToSlug derives a locale-scoped, URL-safe slug from a free-text topic.
// Non-Latin scripts are preserved unchanged; slugs are not required to be
// ASCII.
func TopicToSlug(topic string) string {
	s := strings.ToLower(strings.TrimSpace(topic))
	s = slugStripPattern.ReplaceAllString(s, "")
	s = slugSpacePattern.ReplaceAllString(s, "-")
	s = slugHyphenPattern.ReplaceAllString(s, "-")
	return slugTrimHyphenEdges.ReplaceAllString(s, "")
}
