package parser

// Label is one expected field marker in a model response.
//
// Spellings match anywhere at a word boundary. LineSpellings only match when
// the label opens a line (after optional heading or emphasis markers), which
// keeps capitalised words inside prose from being read as labels.
type Label struct {
	Key           string
	Spellings     []string
	LineSpellings []string
	SingleLine    bool
}

// Schema is the ordered label table for one artifact kind.
type Schema struct {
	Labels      []Label
	Title       string
	Primary     string
	Placeholder string
}

var ArticleSchema = Schema{
	Labels: []Label{
		{Key: "titre", Spellings: []string{"TITRE"}, LineSpellings: []string{"Titre"}, SingleLine: true},
		{Key: "introduction", Spellings: []string{"INTRODUCTION"}, LineSpellings: []string{"Introduction"}},
		{Key: "article", Spellings: []string{"ARTICLE"}, LineSpellings: []string{"Article"}},
		{Key: "conclusion", Spellings: []string{"CONCLUSION"}, LineSpellings: []string{"Conclusion"}},
	},
	Title:       "titre",
	Primary:     "article",
	Placeholder: "Article généré",
}

var TitreSchema = Schema{
	Labels: []Label{
		{Key: "titre", Spellings: []string{"TITRE"}, LineSpellings: []string{"Titre"}, SingleLine: true},
		{Key: "resume", Spellings: []string{"RESUME", "RÉSUMÉ"}, LineSpellings: []string{"Resume", "Résumé"}},
	},
	Title:       "titre",
	Primary:     "resume",
	Placeholder: "Résumé généré",
}
