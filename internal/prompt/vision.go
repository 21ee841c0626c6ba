package prompt

import "fmt"

const visionBase = `You are a biotech expert analyzing a pitch deck slide. Provide deep, scientifically accurate analysis of this biotech slide.

Extract and explain in detail:

SCIENTIFIC CONTENT:
- Drug compounds, targets, mechanisms of action
- Disease indications and therapeutic areas
- Clinical trial phases, endpoints, patient populations
- Biomarkers, assays, and measurement techniques
- Regulatory pathways and approval strategies
- Experimental data, graphs, and statistical results

BUSINESS CONTENT:
- Market sizes and competitive landscape
- Intellectual property and patent status
- Team expertise and academic credentials
- Funding amounts, valuations, use of funds
- Partnership and collaboration details
- Timeline and milestones

TECHNICAL DETAILS:
- Experimental results and statistical significance
- Molecular pathways and biological mechanisms
- Manufacturing and scalability considerations
- Risk factors and technical challenges

Analyze all visible text, numbers, graphs, tables, diagrams, and images. Be specific and detailed with proper biotech terminology. If you see data visualizations, describe the trends, significance, and implications.`

// slideFocus is keyed by the usual position of each slide in a biotech deck.
var slideFocus = map[int]string{
	1:  "This is likely a title slide. Focus on company mission, therapeutic focus, and contact information.",
	2:  "Likely company overview/mission. Look for therapeutic approach, disease focus, and value proposition.",
	3:  "May contain scientific background or mechanism information. Focus on biological pathways and molecular mechanisms.",
	4:  "Could be foundation science or platform technology. Analyze core scientific concepts and publications.",
	5:  "Likely discovery platform or technology. Focus on assays, screening methods, and capabilities.",
	6:  "May show partnerships or validation. Look for collaboration details and proof points with pharma partners.",
	7:  "Likely clinical data or proof of concept. Focus on experimental results, efficacy data, and statistical significance.",
	8:  "May contain more clinical data or mechanism studies. Analyze drug performance and mechanism comparisons.",
	9:  "Could be IP portfolio. Focus on patent protection, filing status, and competitive positioning.",
	10: "Likely investors or board. Focus on funding sources, governance, and investor credentials.",
	11: "Probably team slide. Focus on expertise, academic credentials, and relevant experience.",
	12: "May be advisory board. Look for scientific advisors and their backgrounds in relevant fields.",
	13: "Likely strategic plan or roadmap. Focus on development timeline, milestones, and strategic priorities.",
	14: "Probably competitive landscape. Analyze market positioning, differentiation, and competitive advantages.",
	15: "May show progress or achievements. Focus on value creation, milestones achieved, and progress metrics.",
	16: "Likely funding opportunity. Focus on investment terms, use of funds, valuation, and funding timeline.",
}

const defaultFocus = "Analyze all visible content comprehensively."

// VisionPrompt returns the extraction prompt for one slide image.
func VisionPrompt(slideNumber, totalSlides int) string {
	focus, ok := slideFocus[slideNumber]
	if !ok {
		focus = defaultFocus
	}
	position := ""
	if totalSlides > 0 {
		position = fmt.Sprintf("This is slide %d of %d.\n", slideNumber, totalSlides)
	}
	return visionBase + "\n\nSLIDE-SPECIFIC FOCUS:\n" + position + focus
}
