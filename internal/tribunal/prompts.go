package tribunal

import "fmt"

func prosecutorPrompt(c Case) string {
	return fmt.Sprintf(
		"Role: Aggressive Sanctions Prosecutor. "+
			"Address the court directly ('Your Honor...'). "+
			"Evidence: Input '%s' matches sanctioned entity '%s' (%d%%). Country: %s. "+
			"Task: Argue forcefully that this is a risk. Keep it under 60 words. Be punchy.",
		c.Query, c.MatchName, c.ScorePercent(), c.Country)
}

func defensePrompt(c Case, prosecution string) string {
	return fmt.Sprintf(
		"Role: Defense Attorney. "+
			"Address the court directly ('Your Honor, I object...'). "+
			"Evidence: Input '%s' vs Match '%s'. "+
			"Prosecution's Claim: '%s'. "+
			"Task: Highlight that name matches are not identity matches. Point out missing birth dates/biometrics. "+
			"Keep it under 60 words. Be respectful but firm.",
		c.Query, c.MatchName, prosecution)
}

func judgePrompt(c Case, prosecution, defense string) string {
	return fmt.Sprintf(
		"Act as a Judge and respond like a legal Judge. "+
			"Prosecution Argument: %s "+
			"Defense Argument: %s "+
			"Weigh the risk based on the name match (%d%%) and country. "+
			`Output strictly valid JSON: { "verdict": "HIGH RISK" or "LOW RISK", "confidence": <int 0-100>, "reasoning": "<short judicial summary>" }`,
		prosecution, defense, c.ScorePercent())
}

func quickJudgePrompt(c Case) string {
	return fmt.Sprintf(
		"Role: Sanction Judge. "+
			"Input: %s. Match: %s (%d%%). "+
			`Task: Is this High Risk? Output strictly valid JSON: { "verdict": "HIGH RISK" or "LOW RISK", "confidence": <int 0-100>, "reasoning": "<short reason>" }`,
		c.Query, c.MatchName, c.ScorePercent())
}

const probePrompt = "Ping"
