package chat

import (
	"regexp"
	"strings"
)

// Voice labels the client matches on to render persona cards
const (
	VoiceMentor  = "[MENTOR]"
	VoiceAnalyst = "[ANALIS]"
)

var (
	mentorLabelRegex  = regexp.MustCompile(`(?m)^\s*\[MENTOR\]`)
	analystLabelRegex = regexp.MustCompile(`(?m)^\s*\[ANALIS\]`)
	sentenceEndRegex  = regexp.MustCompile(`([.!?]+)(\s+|$)`)
)

const (
	mentorFiller  = "Sebelum lanjut, coba tanya dirimu sendiri: apa yang sebenarnya paling kamu khawatirkan di sini?"
	analystFiller = "Satu catatan praktis: pastikan asumsi utamamu teruji sebelum mengambil langkah berikutnya."
)

// EnforceShape guarantees every reply exposes both persona voices so
// the client can always render two cards. It is a best-effort string
// repair: it never calls the model and has no failure mode. Every
// input, including the empty string, yields output containing both
// labels.
//
// A reply already carrying both labels passes through byte-identical.
// A reply with neither is bisected into two labeled halves; when the
// back half comes out empty the front half is duplicated rather than
// leaving the second voice blank (kept for client compatibility; a
// terser second voice may be the better refinement).
// A reply with exactly one label gets a short filler for the other.
func EnforceShape(raw string) string {
	hasMentor := mentorLabelRegex.MatchString(raw)
	hasAnalyst := analystLabelRegex.MatchString(raw)

	switch {
	case hasMentor && hasAnalyst:
		return raw

	case hasMentor:
		return raw + "\n\n" + VoiceAnalyst + "\n" + analystFiller

	case hasAnalyst:
		return VoiceMentor + "\n" + mentorFiller + "\n\n" + raw

	default:
		front, back := bisectSentences(raw)
		if back == "" {
			back = front
		}
		return VoiceMentor + "\n" + front + "\n\n" + VoiceAnalyst + "\n" + back
	}
}

// bisectSentences splits the text into sentences and cuts the list at
// the ceiling midpoint.
func bisectSentences(text string) (string, string) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return "", ""
	}

	mid := (len(sentences) + 1) / 2
	front := strings.TrimSpace(strings.Join(sentences[:mid], " "))
	back := strings.TrimSpace(strings.Join(sentences[mid:], " "))
	return front, back
}

// splitSentences cuts on terminal punctuation, keeping the punctuation
// with its sentence. Text without terminal punctuation is one sentence.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	remaining := text
	for {
		loc := sentenceEndRegex.FindStringIndex(remaining)
		if loc == nil {
			if s := strings.TrimSpace(remaining); s != "" {
				sentences = append(sentences, s)
			}
			break
		}
		sentence := strings.TrimSpace(remaining[:loc[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		remaining = remaining[loc[1]:]
		if remaining == "" {
			break
		}
	}

	return sentences
}
