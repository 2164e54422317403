package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

var (
	oleHeader = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipHeader = []byte{0x50, 0x4B, 0x03, 0x04}
)

// Magic byte signatures for accepted résumé documents.
// An empty list means the format has no signature and relies on MIME detection.
var magicBytes = map[string][][]byte{
	".pdf":  {[]byte("%PDF")},
	".doc":  {oleHeader},
	".docx": {zipHeader},
	".odt":  {zipHeader},
	".rtf":  {[]byte(`{\rtf`)},
	".txt":  {},
}

// MIME types accepted per extension, as reported by mimetype.
var allowedMIME = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".odt":  {"application/vnd.oasis.opendocument.text", "application/zip"},
	".rtf":  {"text/rtf", "application/rtf"},
	".txt":  {"text/plain"},
}

// DetectMIME sniffs the content type of data, without parameters.
func DetectMIME(data []byte) string {
	m := mimetype.Detect(data).String()
	return strings.TrimSpace(strings.SplitN(m, ";", 2)[0])
}

// ValidateFile performs 3-layer file validation:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. Sniffed MIME type must belong to the extension
func ValidateFile(filename string, data []byte) FileValidationResult {
	result := FileValidationResult{DetectedMIME: DetectMIME(data)}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if _, ok := allowedMIME[ext]; !ok {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	if !mimeAllowed(ext, result.DetectedMIME) {
		result.Error = "MIME type not allowed: " + result.DetectedMIME
		return result
	}

	result.Valid = true
	return result
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	signatures := magicBytes[ext]
	if len(signatures) == 0 {
		return true
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func mimeAllowed(ext, detected string) bool {
	for _, m := range allowedMIME[ext] {
		if m == detected {
			return true
		}
	}
	return false
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if _, ok := allowedMIME[ext]; !ok {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

// GetAllowedExtensions returns the accepted extensions in a stable order.
func GetAllowedExtensions() []string {
	return []string{".pdf", ".doc", ".docx", ".odt", ".rtf", ".txt"}
}
