package research

import (
	"fmt"
	"strings"
)

const classifyPrompt = `
%s

Task: Classify this query into exactly one category based on the user's engineering profile.
Query: "%s"
Categories:
- battery (manufacturing, chemistry, storage)
- automation (controls, PLC, SCADA, software, bus/protocol)
- semiconductor (chip mfg, wafers, electronics)
- general (anything else)

Output ONLY the category name.`

const queryGenPrompt = `
%s

Task: Generate 2 advanced, domain-specific search queries for the user's question.
- If technical, use precise engineering terminology.
- If coding, include specific library names (e.g., pandas, plc-handler).

Question: "%s"
Output only the queries, one per line.`

const gapPrompt = `You are a senior engineer's research assistant.
User Question: "%s"
Current Results Summary:
%s

Task: Identify missing technical details or mechanisms.
Question: "What specific sub-questions or missing mechanisms should be searched next?"

If the results already cover the question, reply with the single word SUFFICIENT.
Otherwise output ONLY 2 specific, technical search queries (one per line) to find this missing info.`

const summarizePrompt = `Analyze this text and extract detailed information relevant to: "%s"

Text: %s

Instructions:
- Extract key facts, dates, figures, and technical details.
- Provide a comprehensive summary (4-6 bullet points).
- Focus on "New" or "Future" developments if the query asks for them.
- Ignore navigation links or ads.

Summary:`

func buildClassifyPrompt(profile, question string) string {
	return fmt.Sprintf(classifyPrompt, strings.TrimSpace(profile), question)
}

func buildQueryGenPrompt(profile, question string) string {
	return fmt.Sprintf(queryGenPrompt, strings.TrimSpace(profile), question)
}

// buildGapPrompt lists the top four results as "- title (domain)".
func buildGapPrompt(question string, ranked []EnrichedResult) string {
	var lines []string
	for i, r := range ranked {
		if i == 4 {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", r.Title, r.Domain))
	}
	return fmt.Sprintf(gapPrompt, question, strings.Join(lines, "\n"))
}

func buildSummarizePrompt(question, content string) string {
	return fmt.Sprintf(summarizePrompt, question, truncateRunes(content, summarizeInputChars))
}
