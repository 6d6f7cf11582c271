package llm

import "strings"

const maxPromptText = 8000

const systemPrompt = "You are an expert analyst specialized in identifying content disclosures and intent. Provide precise, structured JSON responses."

const promptTemplate = `
Analyze the following text content and provide a structured assessment of sponsorship disclosures and content intent.

TEXT TO ANALYZE:
%TEXT%

INSTRUCTIONS:
1. Disclosure Analysis:
   - Look for clear statements about sponsorships, affiliate links, partnerships, paid content, or compensation
   - Identify if disclosure is present and its location in the content
   - Consider phrases like "sponsored", "affiliate", "paid", "commission", "partner", "advertisement"

2. Content Intent Assessment:
   - "informative": Primarily educational, factual, or news-oriented without strong sales pressure
   - "persuasive": Clearly sales-oriented, promotional, or trying to convince to purchase
   - "mixed": Combination of informative and persuasive elements

3. Provide your analysis in this exact JSON format:
{
    "disclosure_found": true/false,
    "disclosure_location": "beginning/middle/end/nowhere",
    "content_intent": "informative/persuasive/mixed",
    "confidence_score": 0.0-1.0,
    "reasoning": "Your detailed reasoning here"
}

CRITICAL GUIDELINES:
- Be precise about disclosure location: "beginning" (first 20%), "middle" (20-80%), "end" (last 20%), "nowhere"
- Confidence score should reflect certainty in your assessment (0.5 = uncertain, 0.9+ = very confident)
- If no clear disclosure is found, set disclosure_found to false and location to "nowhere"
- Consider the overall tone, language, and explicit statements in the content
- Base your assessment on the actual text content, not assumptions
`

// buildPrompt embeds the first maxPromptText characters of cleanText in the
// fixed instruction template.
func buildPrompt(cleanText string) string {
	if runes := []rune(cleanText); len(runes) > maxPromptText {
		cleanText = string(runes[:maxPromptText])
	}
	return strings.Replace(promptTemplate, "%TEXT%", cleanText, 1)
}
