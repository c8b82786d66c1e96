package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"resume-parser-go/internal/parser"
)

// parseSummary 是-metadata-only模式下的解析结果摘要
type parseSummary struct {
	Sections       []string `json:"sections"`
	EmailCount     int      `json:"email_count"`
	PhoneCount     int      `json:"phone_count"`
	Education      int      `json:"education_entries"`
	Experience     int      `json:"experience_entries"`
	Projects       int      `json:"project_entries"`
	Certifications int      `json:"certification_entries"`
	SkillCount     int      `json:"skill_count"`
}

// 处理完整解析命令：文件 -> 结构化简历记录JSON
func handleParseCommand() {
	filePath := requireInputFile()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor, err := buildExtractor(ctx)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	fmt.Println("1. 开始提取文本...")
	startTime := time.Now()

	text, _, err := extractor.ExtractFromFile(ctx, filePath)
	if err != nil {
		fmt.Printf("提取文本失败: %v\n", err)
		os.Exit(1)
	}

	extractTime := time.Since(startTime)
	fmt.Printf("提取完成! 耗时: %v，提取了 %d 字符文本\n", extractTime, len(text))

	fmt.Println("2. 开始结构化解析...")
	startTime = time.Now()

	record := parser.NewResumeParser().Parse(text)

	parseTime := time.Since(startTime)
	fmt.Printf("解析完成! 耗时: %v\n", parseTime)

	var output interface{} = record
	if *metadataOnly {
		output = parseSummary{
			Sections:       record.Sections,
			EmailCount:     len(record.Contact.Emails),
			PhoneCount:     len(record.Contact.Phones),
			Education:      len(record.Education),
			Experience:     len(record.Experience),
			Projects:       len(record.Projects),
			Certifications: len(record.Certifications),
			SkillCount:     len(record.Skills.All),
		}
	}

	data, err := marshalJSON(output)
	if err != nil {
		fmt.Printf("序列化解析结果失败: %v\n", err)
		os.Exit(1)
	}
	writeResult(data)

	if *outputPath == "" {
		return
	}

	fmt.Println("\n===== 处理统计 =====")
	fmt.Printf("文本大小: %d 字符\n", len(text))
	fmt.Printf("识别章节数: %d\n", len(record.Sections))
	fmt.Printf("教育/工作/项目/证书条目: %d/%d/%d/%d\n",
		len(record.Education), len(record.Experience), len(record.Projects), len(record.Certifications))
	fmt.Printf("技能总数: %d\n", len(record.Skills.All))
	fmt.Printf("文本提取耗时: %v\n", extractTime)
	fmt.Printf("结构化解析耗时: %v\n", parseTime)
}
