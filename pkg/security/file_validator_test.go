package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFile(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	txt := []byte("Jane Doe\nSoftware engineer with ten years of experience.\n")

	tests := []struct {
		name     string
		filename string
		data     []byte
		valid    bool
	}{
		{"pdf", "cv.pdf", pdf, true},
		{"upper case extension", "CV.PDF", pdf, true},
		{"plain text", "cv.txt", txt, true},
		{"no extension", "cv", pdf, false},
		{"executable", "cv.exe", []byte("MZ\x90\x00\x03\x00\x00\x00"), false},
		{"spoofed pdf", "cv.pdf", txt, false},
		{"image renamed to docx", "cv.docx", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, false},
		{"too small", "cv.pdf", []byte("%P"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateFile(tt.filename, tt.data)
			assert.Equal(t, tt.valid, res.Valid, res.Error)
		})
	}
}

func TestValidateFileExtension(t *testing.T) {
	assert.NoError(t, ValidateFileExtension("resume.docx"))
	assert.NoError(t, ValidateFileExtension("resume.odt"))
	assert.Error(t, ValidateFileExtension("resume.png"))
	assert.Error(t, ValidateFileExtension("resume"))
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIME([]byte("%PDF-1.7\n")))
	assert.Equal(t, "text/plain", DetectMIME([]byte("hello world")))
}
