package grammar

import "regexp"

// 印地语规则名称
const (
	RuleLocation   = "location"
	RuleAgentive   = "agentive"
	RulePossessive = "possessive"
	RuleCopula     = "copula"
	RuleTemporal   = "temporal"
)

// HindiRules 返回印地语的五条规则，顺序即优先级
func HindiRules() RuleSet {
	return RuleSet{
		{
			Name:    RuleLocation,
			Pattern: regexp.MustCompile(`(.+?) (में|से|पर) (.+?) है।`),
			Build:   buildLocation,
		},
		{
			Name:    RuleAgentive,
			Pattern: regexp.MustCompile(`(.+?) ने (.+?)।`),
			Build:   buildAgentive,
		},
		{
			Name:    RulePossessive,
			Pattern: regexp.MustCompile(`(.+?) की (.+?)।`),
			Build:   buildPossessive,
		},
		{
			Name:    RuleCopula,
			Pattern: regexp.MustCompile(`(.+?) एक (.+?) है।`),
			Build:   buildCopula,
		},
		{
			Name:    RuleTemporal,
			Pattern: regexp.MustCompile(`(.+?) में (.+?) हुआ।`),
			Build:   buildTemporal,
		},
	}
}

// buildLocation "X Y में Z है।" -> "X कहाँ Z है?"
func buildLocation(g []string) (string, bool) {
	subject, ok := DropLastWord(g[1])
	if !ok {
		return "", false
	}
	return subject + " कहाँ " + g[3] + " है?", true
}

// buildAgentive "X ने Y।" -> "किसने Y?"
func buildAgentive(g []string) (string, bool) {
	return "किसने " + g[2] + "?", true
}

// buildPossessive "X Y की Z।" -> "X किसकी Z?"
func buildPossessive(g []string) (string, bool) {
	subject, ok := DropLastWord(g[1])
	if !ok {
		return "", false
	}
	return subject + " किसकी " + g[2] + "?", true
}

// buildCopula "X एक Y है।" -> "X क्या है?"
func buildCopula(g []string) (string, bool) {
	return g[1] + " क्या है?", true
}

// buildTemporal "X में Y हुआ।" -> "X कब हुआ?"
func buildTemporal(g []string) (string, bool) {
	return g[1] + " कब हुआ?", true
}
