package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	if err := os.MkdirAll(safeDir, 0755); err != nil {
		t.Fatalf("Failed to create safe directory: %v", err)
	}
	if err := os.MkdirAll(unsafeDir, 0755); err != nil {
		t.Fatalf("Failed to create unsafe directory: %v", err)
	}

	unsafeFile := filepath.Join(unsafeDir, "secret.txt")
	if err := os.WriteFile(unsafeFile, []byte("secret"), 0644); err != nil {
		t.Fatalf("Failed to create unsafe file: %v", err)
	}

	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{"valid path within directory", filepath.Join(tmpDir, "file.txt"), tmpDir, false},
		{"valid nested path", filepath.Join(tmpDir, "subdir", "file.txt"), tmpDir, false},
		{"path traversal with ..", filepath.Join(tmpDir, "..", "file.txt"), tmpDir, true},
		{"path traversal at start", "../../../etc/passwd", tmpDir, true},
		{"absolute path outside safe dir", "/etc/passwd", tmpDir, true},
		{"symlink escape attack - following symlink to outside dir", filepath.Join(symlinkPath, "secret.txt"), safeDir, true},
		{"symlink escape attack - accessing symlink directly", symlinkPath, safeDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidatePathWithinAllowedDirs(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()

	tests := []struct {
		name        string
		filePath    string
		allowedDirs []string
		wantError   bool
	}{
		{"valid path in first allowed dir", filepath.Join(tmpDir1, "file.txt"), []string{tmpDir1, tmpDir2}, false},
		{"valid path in second allowed dir", filepath.Join(tmpDir2, "file.txt"), []string{tmpDir1, tmpDir2}, false},
		{"invalid path outside all dirs", "/etc/passwd", []string{tmpDir1, tmpDir2}, true},
		{"no allowed directories", filepath.Join(tmpDir1, "file.txt"), []string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinAllowedDirs(tt.filePath, tt.allowedDirs)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinAllowedDirs() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateExportPath(t *testing.T) {
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	tmpDir := t.TempDir()

	tests := []struct {
		name      string
		filePath  string
		setupWd   string
		wantError bool
	}{
		{"valid path in temp dir", filepath.Join(os.TempDir(), "export.png"), originalWd, false},
		{"valid path in current dir", "export.png", tmpDir, false},
		{"invalid absolute path", "/etc/passwd", originalWd, true},
		{"valid sqlite history export", "runs.sqlite", tmpDir, false},
		{"valid html trajectory export", "trajectory.html", tmpDir, false},
		{"unsupported extension rejected even within allowed dir", "export.txt", tmpDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setupWd != "" && tt.setupWd != originalWd {
				if err := os.Chdir(tt.setupWd); err != nil {
					t.Fatalf("Failed to change directory: %v", err)
				}
				t.Cleanup(func() {
					if err := os.Chdir(originalWd); err != nil {
						t.Errorf("Failed to restore directory: %v", err)
					}
				})
			}

			err := ValidateExportPath(tt.filePath)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateExportPath() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
