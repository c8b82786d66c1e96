package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// 处理提取文本命令：文件 -> 纯文本
func handleExtractCommand() {
	filePath := requireInputFile()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor, err := buildExtractor(ctx)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("开始提取文本: %s\n", filePath)
	startTime := time.Now()

	text, metadata, err := extractor.ExtractFromFile(ctx, filePath)
	if err != nil {
		fmt.Printf("提取文本失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("提取完成! 耗时: %v\n", time.Since(startTime))

	if *metadataOnly {
		data, err := marshalJSON(metadata)
		if err != nil {
			fmt.Printf("序列化元数据失败: %v\n", err)
			os.Exit(1)
		}
		writeResult(data)
		return
	}

	// -o 保存完整文本，标准输出按maxlen截断展示
	if *outputPath != "" {
		writeResult([]byte(text))
	} else {
		fmt.Printf("\n===== 提取的文本 (总计 %d 字符) =====\n", len(text))
		fmt.Println(truncateForDisplay(text))
	}

	fmt.Println("\n===== 元数据 =====")
	for k, v := range metadata {
		fmt.Printf("  %s: %v\n", k, v)
	}
}

// marshalJSON 按-pretty参数选择JSON编码格式
func marshalJSON(v interface{}) ([]byte, error) {
	if *prettyOutput {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
