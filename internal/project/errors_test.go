package project

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestPathError(t *testing.T) {
	err := NewPathError("load", "/p/film.splice", fs.ErrNotExist)

	want := "load /p/film.splice: file does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should return true for underlying error")
	}

	var pathErr *PathError
	if !errors.As(fmt.Errorf("opening: %w", err), &pathErr) || pathErr.Op != "load" {
		t.Errorf("errors.As through wrapping = %v", pathErr)
	}
}

func TestIsCorrupt(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"format error", &FormatError{Section: "header", Err: ErrBadMagic}, true},
		{"wrapped format error", NewPathError("load", "/x", &FormatError{Section: "trailer", Err: ErrChecksumMismatch}), true},
		{"io error", NewPathError("load", "/x", fs.ErrPermission), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrupt(tt.err); got != tt.want {
				t.Errorf("IsCorrupt() = %v, want %v", got, tt.want)
			}
		})
	}

	fe := &FormatError{Section: "header", Err: ErrUnsupportedVersion}
	if !errors.Is(fe, ErrUnsupportedVersion) {
		t.Error("FormatError should unwrap")
	}
	if fe.Error() != "project format: header: unsupported project file version" {
		t.Errorf("Error() = %q", fe.Error())
	}
}
