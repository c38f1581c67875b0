package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questgen/internal/bloom"
	"questgen/internal/contract"
)

func sampleSection(edited bool) Section {
	return Section{
		Objective: contract.ObjectiveMeta{
			ID:    "lo-1",
			Text:  "Students will explain photosynthesis.",
			Level: bloom.Understand,
		},
		Questions: []contract.Question{{
			Stem: "What does photosynthesis convert light into?",
			Options: []contract.Option{
				{ID: "A", Text: "Chemical energy"},
				{ID: "B", Text: "Sound energy"},
				{ID: "C", Text: "Nuclear energy"},
				{ID: "D", Text: "Kinetic energy"},
			},
			CorrectOptionID:  "A",
			Rationale:        "Restates the module's central claim.",
			OptionRationales: map[string]string{"A": "Stated directly in the module."},
			ContentReference: "Photosynthesis converts light to chemical energy.",
		}},
		Edited: edited,
	}
}

func documentXML(t *testing.T, docx []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatal("word/document.xml missing")
	return ""
}

func TestRenderProducesReadableDocx(t *testing.T) {
	docx, err := Render([]Section{sampleSection(false)}, DefaultOptions())
	require.NoError(t, err)

	doc := documentXML(t, docx)
	assert.Contains(t, doc, Title)
	assert.Contains(t, doc, "Students will explain photosynthesis.")
	assert.Contains(t, doc, "Bloom level: Understand")
	assert.Contains(t, doc, "What does photosynthesis convert light into?")
	assert.Contains(t, doc, `<w:highlight w:val="yellow"/>`, "answer key highlights the correct option")
	assert.Contains(t, doc, "Restates the module&#39;s central claim.")
}

func TestOptionsPruneSections(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeAnswerKey = false
	opts.IncludeLOs = false
	opts.IncludeRationale = false

	docx, err := Render([]Section{sampleSection(false)}, opts)
	require.NoError(t, err)

	doc := documentXML(t, docx)
	assert.NotContains(t, doc, "highlight")
	assert.NotContains(t, doc, "Learning Objective:")
	assert.NotContains(t, doc, "Rationale:")
}

func TestFilterSelectsQuestions(t *testing.T) {
	opts := DefaultOptions()
	opts.Filter = `edited or bloom == "Apply"`

	_, err := Render([]Section{sampleSection(false)}, opts)
	var allFiltered *AllFilteredError
	require.ErrorAs(t, err, &allFiltered, "unedited Understand section must filter to nothing")
	assert.Equal(t, "lo-1", allFiltered.ObjectiveID)

	docx, err := Render([]Section{sampleSection(true)}, opts)
	require.NoError(t, err)
	assert.Contains(t, documentXML(t, docx), "photosynthesis convert light")
}

func TestInvalidFilterRejected(t *testing.T) {
	opts := DefaultOptions()
	opts.Filter = "stem +"
	_, err := Render([]Section{sampleSection(false)}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter expression")
}

func TestXMLEscaping(t *testing.T) {
	sec := sampleSection(false)
	sec.Questions[0].Stem = `Is "x < y" & "y > z" consistent?`
	docx, err := Render([]Section{sec}, DefaultOptions())
	require.NoError(t, err)
	doc := documentXML(t, docx)
	assert.Contains(t, doc, "x &lt; y")
	assert.NotContains(t, strings.ReplaceAll(doc, "&amp;", ""), `"x < y"`)
}
