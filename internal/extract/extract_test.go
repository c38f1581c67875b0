package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipFixture(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func docxFixture(t *testing.T, body string) []byte {
	return zipFixture(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	})
}

func TestBytesTxt(t *testing.T) {
	e := NewExtractor(nil)
	res, err := e.Bytes("notes.txt", []byte("Photosynthesis converts  light.\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", res.File)
	assert.Equal(t, "Photosynthesis converts light.", res.Text, "text is normalized")
	assert.Greater(t, res.Tokens, 0)
}

func TestBytesDocx(t *testing.T) {
	e := NewExtractor(nil)
	data := docxFixture(t, `<w:p><w:r><w:t>Photosynthesis converts light.</w:t></w:r></w:p><w:p><w:r><w:t>Chlorophyll absorbs it.</w:t></w:r></w:p>`)

	res, err := e.Bytes("module.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis converts light.\nChlorophyll absorbs it.", res.Text)
}

func TestBytesDocxMissingBody(t *testing.T) {
	e := NewExtractor(nil)
	data := zipFixture(t, map[string]string{"other.xml": "<x/>"})
	_, err := e.Bytes("broken.docx", data)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "broken.docx", f.File)
}

func TestBytesPptxSlideOrder(t *testing.T) {
	e := NewExtractor(nil)
	slide := func(text string) string {
		return `<?xml version="1.0"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:sld>`
	}
	data := zipFixture(t, map[string]string{
		"ppt/slides/slide10.xml": slide("Slide ten."),
		"ppt/slides/slide2.xml":  slide("Slide two."),
		"ppt/slides/slide1.xml":  slide("Slide one."),
	})

	res, err := e.Bytes("deck.pptx", data)
	require.NoError(t, err)
	assert.Equal(t, "Slide one.\nSlide two.\nSlide ten.", res.Text, "slides sort numerically, not lexically")
}

func TestBytesUnsupported(t *testing.T) {
	e := NewExtractor(nil)
	_, err := e.Bytes("img.png", []byte{1, 2, 3})
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestBytesCorruptPdf(t *testing.T) {
	e := NewExtractor(nil)
	_, err := e.Bytes("bad.pdf", []byte("not a pdf at all"))
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "bad.pdf", f.File)
}

func TestCacheByContentDigest(t *testing.T) {
	e := NewExtractor(nil)
	data := []byte("Same content either time.")

	first, err := e.Bytes("a.txt", data)
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.Len())

	second, err := e.Bytes("renamed.txt", data)
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.Len(), "identical bytes reuse the cached extraction")
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, "renamed.txt", second.File, "cache hit still reports the caller's name")
}

func TestFileBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "one.txt")
	good2 := filepath.Join(dir, "two.txt")
	badExt := filepath.Join(dir, "three.md")
	require.NoError(t, os.WriteFile(good1, []byte("First file."), 0o644))
	require.NoError(t, os.WriteFile(good2, []byte("Second file."), 0o644))
	require.NoError(t, os.WriteFile(badExt, []byte("# md"), 0o644))
	missing := filepath.Join(dir, "gone.txt")

	e := NewExtractor(nil)
	results, failures := e.FileBatch(context.Background(), []string{good1, badExt, good2, missing})

	require.Len(t, results, 2)
	assert.Equal(t, "one.txt", results[0].File)
	assert.Equal(t, "two.txt", results[1].File)

	require.Len(t, failures, 2)
	assert.Equal(t, "three.md", failures[0].File)
	assert.Equal(t, "gone.txt", failures[1].File)
	assert.ErrorIs(t, failures[0].Err, ErrUnsupported)
}

func TestCombine(t *testing.T) {
	text := Combine([]Result{
		{File: "a.txt", Text: "Alpha."},
		{File: "b.txt", Text: "Beta."},
	})
	assert.Equal(t, "<a.txt>\nAlpha.\n</a.txt>\n"+FileBreak+"\n<b.txt>\nBeta.\n</b.txt>", text)
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens("   "))
	short := CountTokens("Photosynthesis.")
	long := CountTokens("Photosynthesis converts light to chemical energy in the chloroplasts of plant cells.")
	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.PDF"))
	assert.True(t, Supported("a.docx"))
	assert.False(t, Supported("a.md"))
}
