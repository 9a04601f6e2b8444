package export

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"txt", FormatTXT, false},
		{"TXT", FormatTXT, false},
		{"docx", FormatDOCX, false},
		{"pdf", FormatPDF, false},
		{"srt", FormatSRT, false},
		{"md", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestArtifactFilename(t *testing.T) {
	tests := []struct {
		name    string
		display string
		kind    Kind
		format  Format
		want    string
	}{
		{"transcript", "standup", KindTranscription, FormatTXT, "standup_transcript.txt"},
		{"summary", "standup", KindSummary, FormatDOCX, "standup_summary.docx"},
		{"audio ignores format", "standup", KindAudio, FormatPDF, "standup.mp3"},
		{"forbidden characters", `a/b\c:d*e?f"g<h>i|j`, KindTranscription, FormatTXT, "a_b_c_d_e_f_g_h_i_j_transcript.txt"},
		{"surrounding whitespace", "  meeting  ", KindSummary, FormatTXT, "meeting_summary.txt"},
		{"empty name", "", KindAudio, "", "recording.mp3"},
		{"srt extension", "call", KindTranscription, FormatSRT, "call_transcript.srt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArtifactFilename(tt.display, tt.kind, tt.format); got != tt.want {
				t.Errorf("ArtifactFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArtifactFilenameUnicodeNormalization(t *testing.T) {
	// Composed e-acute vs e + combining acute must land on the same file.
	composed := ArtifactFilename("café", KindTranscription, FormatTXT)
	decomposed := ArtifactFilename("café", KindTranscription, FormatTXT)

	if composed != decomposed {
		t.Errorf("composed %q != decomposed %q", composed, decomposed)
	}
	if composed != "café_transcript.txt" {
		t.Errorf("ArtifactFilename() = %q, want NFC form", composed)
	}
}
