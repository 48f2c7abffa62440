package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactMarshalKeepsOrderAndRaw(t *testing.T) {
	a := Artifact{RawResponse: "TITRE: Foo & co"}
	a.Set("titre", "Foo & co")
	a.Set("resume", "<b>Bar</b>")

	data, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"titre":"Foo & co","resume":"<b>Bar</b>","raw_response":"TITRE: Foo & co"}`, string(data))

	// Through json.Marshal the HTML characters come back escaped but the
	// document is the same.
	escaped, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(escaped))
	assert.Contains(t, string(escaped), `\u0026`)
}

func TestArtifactSetReplaces(t *testing.T) {
	var a Artifact
	a.Set("titre", "first")
	a.Set("titre", "second")
	require.Len(t, a.Fields, 1)
	assert.Equal(t, "second", a.Get("titre"))
	assert.Equal(t, "", a.Get("missing"))
}

func TestJobResultField(t *testing.T) {
	job := &Job{Result: json.RawMessage(`{"titre":" Ancien titre ","resume":"Ancien résumé","count":3}`)}
	assert.Equal(t, "Ancien titre", job.ResultField("titre"))
	assert.Equal(t, "Ancien résumé", job.ResultField("resume"))
	assert.Equal(t, "", job.ResultField("count"))
	assert.Equal(t, "", (&Job{}).ResultField("titre"))
	assert.Equal(t, "", (&Job{Result: json.RawMessage(`not json`)}).ResultField("titre"))
}

func TestJobFileDefaults(t *testing.T) {
	job := &Job{FileExtension: ".DOCX"}
	assert.Equal(t, "unknown.txt", job.FileNameOr("unknown.txt"))
	assert.Equal(t, "DOCX", job.FileExtensionOr("txt"))
	assert.Equal(t, "txt", (&Job{}).FileExtensionOr("txt"))
}
