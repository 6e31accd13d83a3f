package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManfreddAbrego/forecast-tool/internal/shared/testutil"
)

func newValidator(t *testing.T) *FileValidator {
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger)
}

func TestFileValidator_ValidateExcelFile(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
		errText string
	}{
		{
			name: "valid workbook",
			setup: func(t *testing.T) string {
				return testutil.WriteWorkbook(t, testutil.DefaultHeader, nil)
			},
		},
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
			errText: "does not exist",
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			errText: "is a directory",
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "history.csv")
				require.NoError(t, os.WriteFile(path, []byte("Date,Calls,AHT\n"), 0644))
				return path
			},
			wantErr: ErrNotExcelFile,
		},
		{
			name: "lock file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$history.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04"), 0644))
				return path
			},
			wantErr: ErrTemporaryFile,
		},
		{
			name: "renamed text file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "history.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))
				return path
			},
			wantErr: ErrNotWorkbook,
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "history.xlsx")
				require.NoError(t, os.WriteFile(path, nil, 0644))
				return path
			},
			wantErr: ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator(t).ValidateExcelFile(tt.setup(t))

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateUpload(t *testing.T) {
	zipHead := []byte("PK\x03\x04")

	tests := []struct {
		name     string
		fileName string
		size     int64
		maxBytes int64
		head     []byte
		wantErr  error
	}{
		{"valid", "history.xlsx", 100, 1000, zipHead, nil},
		{"upper case extension", "HISTORY.XLSX", 100, 1000, zipHead, nil},
		{"no limit", "history.xlsx", 5000, 0, zipHead, nil},
		{"legacy xls", "history.xls", 100, 1000, zipHead, ErrNotExcelFile},
		{"too large", "history.xlsx", 1001, 1000, zipHead, ErrFileTooLarge},
		{"empty", "history.xlsx", 0, 1000, nil, ErrEmptyFile},
		{"bad signature", "history.xlsx", 100, 1000, []byte("%PDF"), ErrNotWorkbook},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator(t).ValidateUpload(tt.fileName, tt.size, tt.maxBytes, tt.head)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, newValidator(t).ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}
