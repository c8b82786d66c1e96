package parser

// fieldRule 一条命名的字段匹配规则
// 每个字段的提取策略是一组有序规则,按声明顺序逐条尝试,
// 第一条返回非空结果的规则生效,规则之间互不影响
type fieldRule struct {
	name  string
	match func(span string) string
}

// ruleSet 按优先级排列的规则组
type ruleSet []fieldRule

// apply 依序执行规则,返回第一个非空结果,全部落空返回空串
func (rs ruleSet) apply(span string) string {
	for _, r := range rs {
		if v := r.match(span); v != "" {
			return v
		}
	}
	return ""
}
