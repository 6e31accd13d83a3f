// Package validation checks workbook files and uploads before they reach the
// loader.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// xlsx documents are zip archives
var zipSignature = []byte("PK\x03\x04")

// SignatureLen is the number of leading bytes CheckSignature inspects
const SignatureLen = 4

var (
	ErrNotExcelFile  = errors.New("file is not an .xlsx workbook")
	ErrTemporaryFile = errors.New("file is a temporary Excel lock file")
	ErrNotWorkbook   = errors.New("file content is not an xlsx workbook")
	ErrFileTooLarge  = errors.New("file exceeds the maximum allowed size")
	ErrEmptyFile     = errors.New("file is empty")
)

// FileValidator provides file validation shared by the CLI and the HTTP upload
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable xlsx workbook
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if err := v.ValidateName(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	defer file.Close()

	head := make([]byte, SignatureLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := CheckSignature(head[:n]); err != nil {
		v.logger.Error("File is not an xlsx workbook",
			slog.String("file", path))
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidateName checks the extension of a workbook file name
func (v *FileValidator) ValidateName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" {
		v.logger.Warn("File is not an xlsx workbook",
			slog.String("file", name),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %s", ErrNotExcelFile, filepath.Base(name))
	}

	if strings.HasPrefix(filepath.Base(name), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", name))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, filepath.Base(name))
	}
	return nil
}

// ValidateUpload checks an uploaded workbook's name, size and first bytes.
// A maxBytes of zero disables the size check.
func (v *FileValidator) ValidateUpload(name string, size, maxBytes int64, head []byte) error {
	if err := v.ValidateName(name); err != nil {
		return err
	}
	if size == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if maxBytes > 0 && size > maxBytes {
		v.logger.Warn("Upload exceeds size limit",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("max_bytes", maxBytes))
		return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, maxBytes)
	}
	return CheckSignature(head)
}

// CheckSignature reports whether head starts with the zip local file header
func CheckSignature(head []byte) error {
	if len(head) == 0 {
		return ErrEmptyFile
	}
	if !bytes.HasPrefix(head, zipSignature) {
		return ErrNotWorkbook
	}
	return nil
}
