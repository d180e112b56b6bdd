package model

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var pdfHeader = []byte("%PDF-1.7\n%stub exhibit body")

func TestValidateExhibitFile(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		maxBytes int64
		wantType string
		wantErr  bool
	}{
		{
			name:     "pdf accepted",
			data:     pdfHeader,
			filename: "brief.pdf",
			wantType: "application/pdf",
		},
		{
			name:     "png accepted",
			data:     append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, []byte("body")...),
			filename: "map.png",
			wantType: "image/png",
		},
		{
			name:     "jpeg accepted",
			data:     append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("body")...),
			filename: "photo.jpg",
			wantType: "image/jpeg",
		},
		{
			name:     "unknown format rejected",
			data:     []byte("MZ executable"),
			filename: "evil.exe",
			wantErr:  true,
		},
		{
			name:     "empty file rejected",
			data:     nil,
			filename: "empty.pdf",
			wantErr:  true,
		},
		{
			name:     "missing filename rejected",
			data:     pdfHeader,
			filename: "  ",
			wantErr:  true,
		},
		{
			name:     "over size ceiling rejected",
			data:     append(pdfHeader, bytes.Repeat([]byte{'x'}, 100)...),
			filename: "big.pdf",
			maxBytes: 10,
			wantErr:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ct, err := ValidateExhibitFile(tc.data, tc.filename, tc.maxBytes)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidFile) {
					t.Errorf("error = %v, want ErrInvalidFile", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ct != tc.wantType {
				t.Errorf("content type = %q, want %q", ct, tc.wantType)
			}
		})
	}
}

func TestValidateScheduleInput(t *testing.T) {
	if err := ValidateScheduleInput("tourn-1", "judge-1"); err != nil {
		t.Errorf("valid input returned error: %v", err)
	}

	err := ValidateScheduleInput("", "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("field errors = %d, want 2", len(ve.Errors))
	}
	if !strings.Contains(ve.Error(), "tournament_id") {
		t.Errorf("message %q missing tournament_id", ve.Error())
	}
}

func TestValidateStartTurnInput(t *testing.T) {
	if err := ValidateStartTurnInput(SidePetitioner, TurnOpening, 300); err != nil {
		t.Errorf("valid input returned error: %v", err)
	}
	if err := ValidateStartTurnInput("umpire", "", 0); err == nil {
		t.Fatal("expected validation error")
	}
}
