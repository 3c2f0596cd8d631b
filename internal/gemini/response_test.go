package gemini

import (
	"strings"
	"testing"
)

func TestExtractCorrectedTextWithMarker(t *testing.T) {
	response := "Some preamble\nCORRECTED_TEXT:\nसुधारा गया पाठ यहाँ है।\n"
	if got := ExtractCorrectedText(response); got != "सुधारा गया पाठ यहाँ है।" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractCorrectedTextDropsTrailingSections(t *testing.T) {
	response := "CORRECTED_TEXT:\nमुख्य पाठ।\nCHANGES_MADE:\n- fixed matras\nFORMATTING_APPLIED:\n- none"
	if got := ExtractCorrectedText(response); got != "मुख्य पाठ।" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractCorrectedTextBareResponse(t *testing.T) {
	body := strings.Repeat("लंबा पाठ ", 20)
	response := "TECHNICAL ERRORS FOUND: " + body
	got := ExtractCorrectedText(response)
	if got != strings.TrimSpace(body) {
		t.Fatalf("got %q", got)
	}
}

func TestExtractCorrectedTextRejectsShortResponse(t *testing.T) {
	if got := ExtractCorrectedText("No technical corrections needed"); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
	if got := ExtractCorrectedText("ok"); got != "" {
		t.Fatalf("expected empty result for short reply, got %q", got)
	}
}

func TestCleanSanskritFormatting(t *testing.T) {
	cases := []struct{ in, want string }{
		{"*sanskrit*ॐ नमः*/sanskrit*", "<ॐ नमः>"},
		{"**sanskrit**मंत्र**/sanskrit**", "<मंत्र>"},
		{"[sanskrit]श्लोक[/sanskrit]", "<श्लोक>"},
		{"<sanskrit>सूत्र</sanskrit>", "<सूत्र>"},
		{"पहले <sanskrit>सूत्र</sanskrit> बाद में", "पहले <सूत्र> बाद में"},
		{"कोई मार्कर नहीं", "कोई मार्कर नहीं"},
	}
	for _, tc := range cases {
		if got := CleanSanskritFormatting(tc.in); got != tc.want {
			t.Errorf("CleanSanskritFormatting(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanSanskritFormattingMultiline(t *testing.T) {
	in := "[SANSKRIT]पहली पंक्ति\nदूसरी पंक्ति[/SANSKRIT]"
	want := "<पहली पंक्ति\nदूसरी पंक्ति>"
	if got := CleanSanskritFormatting(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestProofreadPromptLanguageInstructions(t *testing.T) {
	hindi := proofreadPrompt("पाठ", "hindi")
	if !strings.Contains(hindi, "common OCR errors in Hindi") {
		t.Fatal("hindi prompt missing Hindi instructions")
	}
	if !strings.Contains(hindi, "पाठ") {
		t.Fatal("prompt missing chunk text")
	}

	gujarati := proofreadPrompt("પાઠ", "Gujarati")
	if !strings.Contains(gujarati, "common OCR errors in Gujarati") {
		t.Fatal("gujarati prompt missing Gujarati instructions")
	}
}

func TestTranslatePromptMentionsTarget(t *testing.T) {
	p := translatePrompt("मूल पाठ", "english")
	if !strings.Contains(p, "fluent english") {
		t.Fatal("prompt missing target language")
	}
	if !strings.Contains(p, "मूल पाठ") {
		t.Fatal("prompt missing chunk text")
	}
	if !strings.Contains(p, "Jain Terminology Preservation") {
		t.Fatal("prompt missing terminology rule")
	}
}
