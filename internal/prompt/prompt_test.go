package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "éé", Truncate("ééé", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abc", 0))
	assert.Equal(t, "", Truncate("", 3))
}

func TestArticlePrompt(t *testing.T) {
	text := strings.Repeat("é", ArticleSourceLimit+10)
	p := Article(Source{FileName: "emission.mp3", Text: text})
	assert.Contains(t, p, "Fichier audio source : emission.mp3")
	assert.Contains(t, p, "TITRE : [")
	assert.Contains(t, p, "CONCLUSION : [")
	assert.Contains(t, p, strings.Repeat("é", ArticleSourceLimit))
	assert.NotContains(t, p, strings.Repeat("é", ArticleSourceLimit+1))
}

func TestTitrePromptTruncates(t *testing.T) {
	text := strings.Repeat("a", TitreSourceLimit+500)
	p := Titre(Source{FileName: "conducteur.docx", FileExtension: "docx", Text: text})
	assert.Contains(t, p, "Fichier: conducteur.docx (format: docx)")
	assert.Contains(t, p, "RESUME : [resume genere")
	idx := strings.Index(p, "CONDUCTEUR :\n")
	assert.Equal(t, TitreSourceLimit, utf8.RuneCountInString(p[idx+len("CONDUCTEUR :\n"):]))
}

func TestRegenerationPromptCarriesFeedback(t *testing.T) {
	p := Regeneration(Source{FileName: "f.txt", FileExtension: "txt", Text: "source"}, Previous{
		Title:    "Ancien titre",
		Summary:  "Ancien resume",
		Feedback: " pas assez accrocheur ",
	})
	assert.Contains(t, p, "TITRE : Ancien titre\nRESUME : Ancien resume")
	assert.Contains(t, p, "FEEDBACK UTILISATEUR : pas assez accrocheur\n")
	assert.Contains(t, p, "SUBSTANTIELLEMENT DIFFERENT")
	assert.True(t, strings.HasSuffix(p, "CONDUCTEUR :\nsource"))
}
