package export

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Suffixes appended to the recording name per artifact kind.
const (
	transcriptSuffix = "_transcript"
	summarySuffix    = "_summary"
	audioExt         = "mp3"
)

// ArtifactFilename derives the flat output filename for one
// (recording, kind, format) artifact: the recording's display name plus
// a kind suffix and the format extension. Audio ignores format and uses
// the mp3 extension.
func ArtifactFilename(displayName string, kind Kind, format Format) string {
	name := sanitizeName(displayName)

	switch kind {
	case KindTranscription:
		return name + transcriptSuffix + "." + format.Ext()
	case KindSummary:
		return name + summarySuffix + "." + format.Ext()
	default:
		return name + "." + audioExt
	}
}

// sanitizeName makes a display name safe for the local filesystem.
// Names are NFC-normalized first so composed and decomposed forms of
// the same title map to the same file.
func sanitizeName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))

	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			sb.WriteByte('_')
		default:
			sb.WriteRune(r)
		}
	}

	out := sb.String()
	if out == "" {
		return "recording"
	}
	return out
}
