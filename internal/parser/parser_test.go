package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArticle(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "plain labels",
			raw:  "TITRE: Foo\nINTRODUCTION: Bar\nARTICLE: Baz\nCONCLUSION: Qux",
			want: map[string]string{"titre": "Foo", "introduction": "Bar", "article": "Baz", "conclusion": "Qux"},
		},
		{
			name: "space before colon and emphasis",
			raw:  "**TITRE :** Le *grand* retour\n\nINTRODUCTION : Une [accroche]\n\nARTICLE : Corps\nsur deux lignes\n\nCONCLUSION : Fin.",
			want: map[string]string{"titre": "Le grand retour", "introduction": "Une accroche", "article": "Corps\nsur deux lignes", "conclusion": "Fin."},
		},
		{
			name: "heading markers",
			raw:  "# TITRE : Radio locale\n## INTRODUCTION : Intro\n## ARTICLE : Texte\n## CONCLUSION : Bye",
			want: map[string]string{"titre": "Radio locale", "introduction": "Intro", "article": "Texte", "conclusion": "Bye"},
		},
		{
			name: "preamble before labels",
			raw:  "Voici l'article demandé.\n\nTITRE: T\nINTRODUCTION: I\nARTICLE: A\nCONCLUSION: C",
			want: map[string]string{"titre": "T", "introduction": "I", "article": "A", "conclusion": "C"},
		},
		{
			name: "missing conclusion",
			raw:  "TITRE: T\nINTRODUCTION: I\nARTICLE: A jusqu'au bout",
			want: map[string]string{"titre": "T", "introduction": "I", "article": "A jusqu'au bout", "conclusion": ""},
		},
		{
			name: "capitalised labels at line start",
			raw:  "Titre : Petit matin\nIntroduction : Café\nArticle : Le marché\nConclusion : Merci",
			want: map[string]string{"titre": "Petit matin", "introduction": "Café", "article": "Le marché", "conclusion": "Merci"},
		},
		{
			name: "title on following line",
			raw:  "TITRE:\nFoo\nINTRODUCTION: Bar\nARTICLE: Baz\nCONCLUSION: Qux",
			want: map[string]string{"titre": "Foo", "introduction": "Bar", "article": "Baz", "conclusion": "Qux"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(ArticleSchema, tc.raw)
			for key, want := range tc.want {
				assert.Equal(t, want, got.Get(key), key)
			}
			assert.Equal(t, tc.raw, got.RawResponse)
		})
	}
}

func TestParseTitre(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name       string
		raw        string
		wantTitle  string
		wantResume string
	}{
		{name: "spaced colon", raw: "TITRE : Les abeilles\nRESUME : Un épisode sur les ruches.", wantTitle: "Les abeilles", wantResume: "Un épisode sur les ruches."},
		{name: "accented resume", raw: "# TITRE : Météo\n# RÉSUMÉ : Pluie demain.", wantTitle: "Météo", wantResume: "Pluie demain."},
		{name: "capitalised", raw: "Titre : Bonjour\nRésumé : Salut", wantTitle: "Bonjour", wantResume: "Salut"},
		{name: "resume first", raw: "RESUME : Corps\nTITRE : Tête", wantTitle: "Tête", wantResume: "Corps"},
		{name: "empty title", raw: "TITRE :\n\nRESUME : Seul le résumé", wantTitle: "Résumé généré", wantResume: "Seul le résumé"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(TitreSchema, tc.raw)
			assert.Equal(t, tc.wantTitle, got.Get("titre"))
			assert.Equal(t, tc.wantResume, got.Get("resume"))
		})
	}
}

func TestParseFallback(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"Une réponse libre sans aucun label.",
		"",
		"   \n  ",
		"TITRE:\nRESUME:",
		"ARTICLE 12 du règlement, Titre premier",
	}
	for _, raw := range inputs {
		art := Parse(ArticleSchema, raw)
		assert.Equal(t, "Article généré", art.Get("titre"))
		assert.Equal(t, strings.TrimSpace(raw), art.Get("article"))
		assert.Equal(t, raw, art.RawResponse)

		res := Parse(TitreSchema, raw)
		assert.NotEmpty(t, res.Get("titre"))
		assert.Equal(t, raw, res.RawResponse)
	}
}

func TestParseEmptyTitleLineStaysEmpty(t *testing.T) {
	t.Parallel()
	got := Parse(TitreSchema, "TITRE:\nRESUME: un résumé")
	assert.Equal(t, "Résumé généré", got.Get("titre"))
	assert.Equal(t, "un résumé", got.Get("resume"))

	got = Parse(ArticleSchema, "TITRE:   \r\nINTRODUCTION: intro")
	assert.Equal(t, "Article généré", got.Get("titre"))
	assert.Equal(t, "intro", got.Get("introduction"))
}

func TestParseIgnoresLabelInsideWord(t *testing.T) {
	t.Parallel()
	got := Parse(TitreSchema, "SOUSTITRE: non\nTITRE: oui\nRESUME: r")
	assert.Equal(t, "oui", got.Get("titre"))
}

func TestParseKeepsFieldOrder(t *testing.T) {
	t.Parallel()
	got := Parse(ArticleSchema, "CONCLUSION: c\nTITRE: t")
	keys := make([]string, 0, len(got.Fields))
	for _, f := range got.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"titre", "introduction", "article", "conclusion"}, keys)
}
