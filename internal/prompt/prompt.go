// Package prompt builds the French instructions sent to the generation API.
package prompt

import (
	"fmt"
	"strings"
)

const (
	ArticleSourceLimit = 50000
	TitreSourceLimit   = 30000
)

// Source is the material a prompt is built from.
type Source struct {
	FileName      string
	FileExtension string
	Text          string
}

// Previous is the earlier result and user feedback for a regeneration.
type Previous struct {
	Title    string
	Summary  string
	Feedback string
}

// Truncate keeps at most limit runes of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

const articleBrief = `RÔLE

Vous êtes rédacteur de contenu pour une radio locale. Vos textes doivent se lire comme ceux d'un journaliste humain : nuances émotionnelles, pertinence culturelle, authenticité.

OBJECTIF

Rédiger un article d'actualité à partir de la transcription de l'émission fournie ci-dessous.

PUBLIC CIBLE : CSP+ 30/60 ans
NOMBRE DE MOTS : 1500

EXIGENCES

• Ton conversationnel et engageant, score de lisibilité Flesch autour de 80.
• Phrases de longueurs variées, transitions naturelles entre les paragraphes.
• Questions rhétoriques et indices émotionnels quand ils servent la lecture.
• Sous-titres accrocheurs au ton naturel, listes à puces avec parcimonie.
• Pour toute citation, donner le prénom et le nom de la personne.
• Éviter : optez, plonger, débloquer, libérer, complexe, utilisation, transformation, alignement, proactif, évolutif, benchmark.
• Éviter : "Dans ce monde", "dans le monde d'aujourd'hui", "à la fin de la journée", "afin de", "meilleures pratiques".

FORMAT DE SORTIE OBLIGATOIRE :

TITRE : [Un titre accrocheur et informatif]
INTRODUCTION : [2-3 phrases d'accroche pour captiver le lecteur]
ARTICLE : [Le corps de l'article structuré avec des sous-titres naturels]
CONCLUSION : [Une phrase finale impactante]
`

const titreBrief = `CONTENU DU RESUME :
- Angle attractif sur le sujet principal
- Noms et fonctions des invites principaux
- Points cles les plus importants de l'emission
- Une phrase finale soulignant l'interet pour l'auditeur

STYLE :
- Ton informatif et vivant, comme un article de presse de qualite
- Phrases courtes et percutantes
- Style engageant sans superlatifs
- Vocabulaire accessible et varie
`

const titreRule = `CONSIGNE : Utiliser uniquement les infos du conducteur fourni. Donner envie d'ecouter en restant concis.`

// Article builds the long-form article prompt.
func Article(src Source) string {
	var b strings.Builder
	b.WriteString(articleBrief)
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "Fichier audio source : %s\n\n", src.FileName)
	b.WriteString("TRANSCRIPTION DE L'ÉMISSION RADIO :\n")
	b.WriteString(Truncate(src.Text, ArticleSourceLimit))
	b.WriteString("\n\n---\n\nRédigez maintenant l'article en suivant toutes les directives ci-dessus.")
	return b.String()
}

// Titre builds the title and summary prompt.
func Titre(src Source) string {
	var b strings.Builder
	b.WriteString("OBJECTIF :\n")
	b.WriteString("- Generer un titre attractif pour l'episode\n")
	b.WriteString("- Rediger un resume de 5 a 6 lignes presentant le sujet principal, les invites et les points cles de facon engageante\n\n")
	b.WriteString(titreBrief)
	b.WriteString("\nFORMAT OBLIGATOIRE :\nTITRE : [titre genere]\nRESUME : [resume genere de 5 a 6 lignes maximum]\n\n")
	writeTitreSource(&b, src)
	return b.String()
}

// Regeneration builds the titre prompt for a second pass that must take the
// user's feedback into account and produce a clearly different title.
func Regeneration(src Source, prev Previous) string {
	var b strings.Builder
	b.WriteString("RESULTAT PRECEDENT :\n")
	fmt.Fprintf(&b, "TITRE : %s\nRESUME : %s\n\n", prev.Title, prev.Summary)
	fmt.Fprintf(&b, "FEEDBACK UTILISATEUR : %s\n\n", strings.TrimSpace(prev.Feedback))
	b.WriteString("ANALYSE DU FEEDBACK :\n")
	b.WriteString("1. Si le feedback parle de \"titre\", \"accrocheur\", \"percutant\" ou \"trop long\" -> modifier PRINCIPALEMENT le titre\n")
	b.WriteString("2. Si le feedback parle de \"resume\", \"description\" ou \"contenu\" -> modifier PRINCIPALEMENT le resume\n")
	b.WriteString("3. \"trop long\" = raccourcir nettement, \"trop court\" = developper, \"manque de dynamisme\" = verbes d'action et ton plus energique\n\n")
	b.WriteString("REGLE ABSOLUE :\n")
	b.WriteString("- Le nouveau titre DOIT etre SUBSTANTIELLEMENT DIFFERENT de l'ancien (pas juste 1-2 mots changes)\n")
	b.WriteString("- Si le feedback parle du titre, le titre DOIT changer d'au moins 70%\n")
	b.WriteString("- Garder le resume identique si le feedback ne le mentionne pas\n\n")
	b.WriteString(titreBrief)
	b.WriteString("\nFORMAT OBLIGATOIRE :\n")
	b.WriteString("TITRE : [nouveau titre COMPLETEMENT DIFFERENT du precedent - ne pas reutiliser les memes mots principaux]\n")
	b.WriteString("RESUME : [resume - garder le precedent si le feedback ne demande pas de le changer]\n\n")
	writeTitreSource(&b, src)
	return b.String()
}

func writeTitreSource(b *strings.Builder, src Source) {
	b.WriteString(titreRule)
	b.WriteString("\n\n")
	fmt.Fprintf(b, "Fichier: %s (format: %s)\n\n", src.FileName, src.FileExtension)
	b.WriteString("CONDUCTEUR :\n")
	b.WriteString(Truncate(src.Text, TitreSourceLimit))
}
