package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name    string
		content []byte
		ext     string
		want    string
	}{
		{"txt", []byte("Hello world\nLine 2"), ".txt", "Hello world\nLine 2"},
		{"md utf8", []byte("caf\xc3\xa9"), ".md", "café"},
		{"rst invalid utf8", []byte("hello\x80world"), ".rst", "hello�world"},
		{"unknown extension", []byte("raw content"), ".xyz", "raw content"},
		{"upper case extension", []byte("shout"), ".TXT", "shout"},
		{"bom and crlf", []byte("\xef\xbb\xbfone\r\ntwo"), ".txt", "one\ntwo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.content, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func excelBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Title"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Value 1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Value 2"))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractBytes_excel(t *testing.T) {
	got, err := NewExtractor().ExtractBytes(excelBytes(t), ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Title\nValue 1\tValue 2", got)
}

func TestExtractBytes_excelSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "after blank"))
	_, err := f.NewSheet("Budget")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Budget", "B1", "total"))
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, "# Sheet1\nfirst\nafter blank\n# Budget\n\ttotal", got)
}

func docxBytes(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	content := docxBytes(t,
		`<w:p w:rsidR="00AB"><w:r><w:t>Searchable</w:t></w:r><w:r><w:t xml:space="preserve"> docx</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>second</w:t><w:tab/><w:t>para</w:t></w:r></w:p>`)
	got, err := NewExtractor().ExtractBytes(content, ".docx")
	require.NoError(t, err)
	assert.Equal(t, "Searchable docx\nsecond\tpara", got)
}

func TestExtractBytes_docxErrors(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte("not a zip"), ".docx")
	assert.Error(t, err)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("word/other.xml")
	require.NoError(t, w.Close())
	_, err = e.ExtractBytes(buf.Bytes(), ".docx")
	assert.Error(t, err)
}

func TestExtractBytes_rtf(t *testing.T) {
	got, err := NewExtractor().ExtractBytes([]byte(`{\rtf1\ansi Hello rtf world\par}`), ".rtf")
	require.NoError(t, err)
	assert.Contains(t, got, "Hello")
}

func TestExtractBytes_pdfInvalid(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte("%PDF-garbage"), ".pdf")
	assert.Error(t, err)

	_, err = e.ExtractBytes(nil, ".pdf")
	assert.Error(t, err)
}

func TestExtract_files(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(txt, []byte("File content"), 0600))
	xlsx := filepath.Join(dir, "sheet.xlsx")
	require.NoError(t, os.WriteFile(xlsx, excelBytes(t), 0600))

	e := NewExtractor()
	got, err := e.Extract(txt)
	require.NoError(t, err)
	assert.Equal(t, "File content", got)

	got, err = e.Extract(xlsx)
	require.NoError(t, err)
	assert.Contains(t, got, "Value 2")
}

func TestExtract_nonexistent(t *testing.T) {
	_, err := NewExtractor().Extract("/nonexistent/path/file.txt")
	assert.Error(t, err)
}

func TestExtract_tooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("a"), 64), 0600))

	e := &Extractor{maxSize: 16}
	_, err := e.Extract(path)
	assert.Error(t, err)
}
