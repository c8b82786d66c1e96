package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectsExtractTypicalEntries(t *testing.T) {
	extractor := NewProjectsExtractor()

	text := "Inventory Tracker: warehouse management app\n" +
		"Technologies: Go, Redis, PostgreSQL\n" +
		"Built with Go, Redis\n" +
		"• Tracks stock levels\n\n" +
		"Portfolio Site\n2021 - 2022\nBuilt with React\n• Showcases projects"
	entries := extractor.Extract(text)

	require.Len(t, entries, 2, "空行分隔的两个项目应各成一条")

	assert.Equal(t, "Inventory Tracker", entries[0].Name, "项目名应取首行冒号前的部分")
	assert.Equal(t, []string{"Go", "Redis", "PostgreSQL"}, entries[0].Technologies,
		"标签行和介词两路的技术应合并去重")
	assert.Equal(t, []string{"Tracks stock levels"}, entries[0].Description)
	assert.Empty(t, entries[0].DateRange)

	assert.Equal(t, "Portfolio Site", entries[1].Name)
	assert.Equal(t, "2021 - 2022", entries[1].DateRange)
	assert.Equal(t, []string{"React"}, entries[1].Technologies, "Built with后的列表应作为技术栈")
	assert.Equal(t, []string{"Showcases projects"}, entries[1].Description)
}

func TestProjectsCapitalLineSplit(t *testing.T) {
	extractor := NewProjectsExtractor()

	// 没有空行时按顶格大写行切分,项目符号行不会被当成新项目
	text := "Chat App: real-time messaging\n• Added websocket layer\n" +
		"Weather Station: IoT sensor network\n• Calibrated sensors"
	entries := extractor.Extract(text)

	require.Len(t, entries, 2)
	assert.Equal(t, "Chat App", entries[0].Name)
	assert.Equal(t, []string{"Added websocket layer"}, entries[0].Description)
	assert.Equal(t, "Weather Station", entries[1].Name)
	assert.Equal(t, []string{"Calibrated sensors"}, entries[1].Description)
}

func TestProjectsNameRequired(t *testing.T) {
	extractor := NewProjectsExtractor()

	assert.Empty(t, extractor.Extract(""), "空输入应返回空列表")
	assert.Empty(t, extractor.Extract(":\njust a description line"), "提不出名称的片段应被丢弃")
}

func TestProjectsDescriptionDeduped(t *testing.T) {
	extractor := NewProjectsExtractor()

	text := "Tool X: cli utility\n• Parse input\n• Parse input\n• Emit report"
	entries := extractor.Extract(text)

	require.Len(t, entries, 1)
	assert.Equal(t, "Tool X", entries[0].Name)
	assert.Equal(t, []string{"Parse input", "Emit report"}, entries[0].Description, "重复的要点应去重")
	assert.Empty(t, entries[0].Technologies)
}
