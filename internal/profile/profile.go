// Package profile holds the per-variant settings that drive one worker.
package profile

import (
	"fmt"
	"strings"
	"time"

	"scribe/internal/domain"
	"scribe/internal/generation"
	"scribe/internal/parser"
	"scribe/internal/prompt"
)

const keyTimestamp = "20060102_150405"

// Profile binds a variant to its label table, status, billing and prompts.
type Profile struct {
	Variant       domain.Variant
	Schema        parser.Schema
	InProgress    domain.JobStatus
	RequireCredit bool
	Params        generation.Params
	DefaultModel  string
	FileName      string
	FileExtension string
}

// Article is the long-form article variant.
func Article(requireCredit bool) Profile {
	return Profile{
		Variant:       domain.VariantArticle,
		Schema:        parser.ArticleSchema,
		InProgress:    domain.JobStatusGenerating,
		RequireCredit: requireCredit,
		Params:        generation.Params{MaxTokens: 4000, Temperature: 0.7},
		DefaultModel:  "claude-3-5-sonnet-20241022",
		FileName:      "audio.mp3",
		FileExtension: "mp3",
	}
}

// Titre is the title and summary variant. It is always credit-metered.
func Titre() Profile {
	return Profile{
		Variant:       domain.VariantTitre,
		Schema:        parser.TitreSchema,
		InProgress:    domain.JobStatusProcessing,
		RequireCredit: true,
		Params:        generation.Params{MaxTokens: 2000, Temperature: 0.3},
		DefaultModel:  "claude-haiku-4-5-20251001",
		FileName:      "unknown.txt",
		FileExtension: "txt",
	}
}

// ForVariant resolves a configured variant name.
func ForVariant(name string, articleRequiresCredit bool) (Profile, error) {
	switch domain.Variant(strings.ToLower(strings.TrimSpace(name))) {
	case domain.VariantArticle:
		return Article(articleRequiresCredit), nil
	case domain.VariantTitre, "":
		return Titre(), nil
	default:
		return Profile{}, fmt.Errorf("profile: unsupported variant %q", name)
	}
}

// BuildPrompt renders the prompt for one pass over job. Titre regenerations
// with feedback get the previous result and the feedback as extra context.
func (p Profile) BuildPrompt(job *domain.Job, msg domain.QueueMessage, text string) string {
	src := prompt.Source{
		FileName:      job.FileNameOr(p.FileName),
		FileExtension: job.FileExtensionOr(p.FileExtension),
		Text:          text,
	}
	switch p.Variant {
	case domain.VariantArticle:
		return prompt.Article(src)
	default:
		if msg.IsRegeneration && strings.TrimSpace(msg.PromptAdjustment) != "" {
			return prompt.Regeneration(src, prompt.Previous{
				Title:    job.ResultField("titre"),
				Summary:  job.ResultField("resume"),
				Feedback: msg.PromptAdjustment,
			})
		}
		return prompt.Titre(src)
	}
}

// BlobKey returns the result object key for one completed pass.
func (p Profile) BlobKey(job *domain.Job, userID string, now time.Time) string {
	ts := now.UTC().Format(keyTimestamp)
	if p.Variant == domain.VariantArticle {
		return fmt.Sprintf("%s/articles/%s/article_%s.json", userID, job.ID, ts)
	}
	group := strings.TrimSpace(job.UserGroup)
	if group == "" {
		group = "unknown"
	}
	return fmt.Sprintf("%s/%s/%s/result_%s.json", group, userID, job.ID, ts)
}
