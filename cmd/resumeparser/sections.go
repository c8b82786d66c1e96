package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"resume-parser-go/internal/parser"
)

// 处理章节切分命令：文件 -> 规范化文本 -> 章节列表
func handleSectionsCommand() {
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

	fmt.Println("2. 开始切分章节...")
	startTime = time.Now()

	normalized := parser.NewTextNormalizer().Normalize(text)
	sections := parser.NewSectionSegmenter().Segment(normalized)

	segmentTime := time.Since(startTime)
	fmt.Printf("切分完成! 耗时: %v，识别了 %d 个章节\n", segmentTime, len(sections))

	// -metadata-only 只输出章节名列表，不带正文
	if *metadataOnly {
		data, err := marshalJSON(sections.Names())
		if err != nil {
			fmt.Printf("序列化章节名失败: %v\n", err)
			os.Exit(1)
		}
		writeResult(data)
		return
	}

	// -o 指定时输出完整JSON，否则控制台按章节截断展示
	if *outputPath != "" {
		data, err := marshalJSON(sections)
		if err != nil {
			fmt.Printf("序列化章节失败: %v\n", err)
			os.Exit(1)
		}
		writeResult(data)
		return
	}

	fmt.Println("\n===== 章节切分结果 =====")
	for _, s := range sections {
		fmt.Printf("\n[%d] %s (%d 字符)\n", s.Order, s.Name, len(s.Text))
		fmt.Println(truncateForDisplay(s.Text))
	}

	fmt.Println("\n===== 处理统计 =====")
	fmt.Printf("文本大小: %d 字符\n", len(text))
	fmt.Printf("识别章节数: %d\n", len(sections))
	fmt.Printf("文本提取耗时: %v\n", extractTime)
	fmt.Printf("章节切分耗时: %v\n", segmentTime)
	fmt.Printf("总处理耗时: %v\n", extractTime+segmentTime)
}
