package parser

import (
	"regexp"
	"sort"
	"strings"
)

// blankLineRe 空行,条目切分的首选信号
var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// splitByBlankLines 按空行切分,strip后丢弃空片段
func splitByBlankLines(text string) []string {
	var spans []string
	for _, part := range blankLineRe.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			spans = append(spans, p)
		}
	}
	return spans
}

// splitByLineMarkers 在领域标记词所在的行首切分
// 标记必须出现在文本开头或紧跟换行,行中间的命中不算边界
// 第二个返回值表示是否找到过任何标记:找到过即使只有一个片段也应接受,
// 不再落到逐行切分,否则单条多行条目会被切碎
func splitByLineMarkers(text string, patterns []*regexp.Regexp) ([]string, bool) {
	positions := map[int]struct{}{}
	found := false

	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			pos := loc[0]
			if pos == 0 || text[pos-1] == '\n' {
				positions[pos] = struct{}{}
				found = true
			}
		}
	}

	positions[0] = struct{}{}
	sorted := make([]int, 0, len(positions))
	for p := range positions {
		sorted = append(sorted, p)
	}
	sort.Ints(sorted)

	return spansFromPositions(text, sorted), found
}

// splitByLines 每个非空行一个片段,最后的兜底策略
func splitByLines(text string) []string {
	var spans []string
	for _, line := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			spans = append(spans, l)
		}
	}
	return spans
}

// spansFromPositions 按切分位置取片段,strip后丢弃空片段
func spansFromPositions(text string, positions []int) []string {
	ends := append(append([]int{}, positions...), len(text))
	var spans []string
	for i := 0; i < len(ends)-1; i++ {
		span := strings.TrimSpace(text[ends[i]:ends[i+1]])
		if span != "" {
			spans = append(spans, span)
		}
	}
	return spans
}
