package gemini

import (
	"fmt"
	"strings"
)

// gujaratiInstructions / hindiInstructions は校正プロンプトの言語別追補です。
const gujaratiInstructions = `
- Check for proper Gujarati matras (ા, િ, ી, ુ, ૂ, ૃ, ે, ૈ, ો, ૌ)
- Verify correct use of Gujarati conjuncts and half letters
- Check Gujarati punctuation marks (।, ॥, etc.)
- Ensure proper spacing in Gujarati text
- Fix common OCR errors in Gujarati: confusing similar letters (ત/ટ, પ/બ, ક/ખ, etc.)
`

const hindiInstructions = `
- Check for proper Hindi matras (ा, ि, ी, ु, ू, ृ, े, ै, ो, ौ)
- Verify correct use of Hindi conjuncts and half letters
- Check Hindi punctuation marks (।, ॥, etc.)
- Ensure proper spacing in Hindi text
- Fix common OCR errors in Hindi: confusing similar letters (त/ट, प/फ, क/ख, द/ध, etc.)
`

// proofreadPrompt はOCR校正プロンプトを組み立てます。原文のスタイルを
// 変えず、OCR起因の機械的誤りだけを直すよう指示します。
func proofreadPrompt(chunk, language string) string {
	instructions := hindiInstructions
	if strings.EqualFold(language, "gujarati") {
		instructions = gujaratiInstructions
	}

	return fmt.Sprintf(`
ROLE & CORE DIRECTIVE: You are a meticulous digital text restorer. Your sole function is to correct technical errors from an OCR scan while perfectly preserving the original author's voice, style, and intent.

GUIDING PRINCIPLES:
 * The Rule of Minimum Intervention: Only change what is absolutely necessary to fix a clear technical OCR error.
 * The Rule of Stylistic Invisibility: Your corrections must be so perfectly matched to the original style that a reader would never know an OCR error ever existed.

YOUR TASKS (In Order of Priority):
LEVEL 1: PURELY TECHNICAL CORRECTIONS (Mechanical Fixes)
 * Character Recognition: Fix misidentified characters
 * Vowel Marks & Conjuncts (%[1]s): Correct any missing, extra, or broken matras, bindis/anusvaras, and repair broken conjunct characters
 * Spacing: Eliminate incorrect spaces inside words and add missing spaces between words
 * Punctuation: Correct OCR-mangled punctuation
 * Line Breaks & Hyphenation: Join words incorrectly split by end-of-line hyphenation
 * Formatting & Structure: Reconstruct paragraph breaks, preserve headings
   %[2]s

LEVEL 2: CONTEXT-AWARE CORRECTIONS (Word-Level Fixes)
 * Nonsensical Words: Replace words that are gibberish due to OCR errors
 * Style-Matched Replacement: Replacements MUST match the exact same formality and tone

ABSOLUTE PROHIBITIONS:
 * DO NOT TRANSLATE THE CONTENT
 * DO NOT "IMPROVE" THE TEXT
 * DO NOT MODERNIZE OR SANITIZE
 * DO NOT ALTER THE TONE
 * DO NOT CHANGE VOCABULARY LEVEL
 * DO NOT REPHRASE FOR CLARITY

Text to process:
%[3]s

Response format:
CORRECTED_TEXT:
[Provide the corrected version with ONLY OCR errors fixed, maintaining the exact original style and tone.]
`, language, instructions, chunk)
}

// translatePrompt は翻訳プロンプトを組み立てます。ジャイナ教の専門用語と
// <山括弧>内のサンスクリットは翻訳せずそのまま残すよう指示します。
func translatePrompt(chunk, targetLang string) string {
	return fmt.Sprintf(`You are a master translator and literary stylist specializing in texts with high cultural and religious specificity. Your primary goal is to produce a polished, high-register %[1]s translation that prioritizes natural flow, contextual dignity, and cultural resonance for the specified audience, moving far beyond literal or word-for-word rendering.

USER QUERY:

Translate the following source document into simple yet professional, highly fluent %[1]s. CRITICAL OUTPUT RULE: The final response MUST consist SOLELY of the translated text. Do not include any introductory phrases, file headers, AI-generated headings, metadata, commentary, or extraneous text whatsoever.

Preprocessing:
The source text may contain scanning errors (OCR mistakes). Your critical first step is to look past these technical flaws to discern the author's true, intended words and meaning. Do not "correct" the style, only reconstruct the text to make it intelligible for translation.

Translation Strategy & Non-Negotiable Rules:

Step 1: Document Analysis (Internal Only): Before generating the first word of the translation, you must internally analyze the provided text to determine:

Original Writing Style: Identify the core stylistic register (e.g., highly academic, devotional/hymnal, historical narrative, legal/prescriptive, direct instructional, etc.).

Document Type & Genre: Classify the specific type (e.g., philosophical treatise, historical commentary, religious sermon, contemporary report) and the general genre (e.g., philosophy, spirituality, history).

Step 2: Automated Style Directive (Genre-Based Translation): You must automatically select the most appropriate elevated %[1]s style (e.g., Scholarly/Academic, Devotional/Inspirational, or Modern/Interpretive) that directly corresponds to the identified Document Type & Genre (from Step 1). This ensures the translation's tone and syntax are inherently suited to the text's original purpose, without requiring further user input.

Step 3: Target Audience Adaptation (Indian %[1]s): The entire tone and lexicon must be optimized for an educated Indian %[1]s-speaking audience. Favor vocabulary and phrasing that is precise, formal, and widely understood within that context, avoiding overly colloquial, American, or casual Western phrasing.

CRITICAL NOTIFICATION: Jain Terminology Preservation: DO NOT TRANSLATE core Jain religious, philosophical, or technical terms (e.g., Anekantavada, Samyak Charitra, Kevala Jnana, Tirthankara, etc.). These terms must be preserved as they are transliterated in the source text, ensuring the religious and scholarly integrity of the document is maintained. Only surrounding contextual language should be translated. Text within <brackets> should be kept as is since it's usually Sanskrit/technical terms.

Text:
%[2]s

Response format:
[Provide the complete translated text maintaining structure and formatting.]
`, targetLang, chunk)
}
