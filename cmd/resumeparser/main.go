package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"resume-parser-go/internal/parser"
)

// 命令行参数定义
var (
	inputFile    = flag.String("file", "", "简历文件路径 (必填)，支持 pdf/docx/txt/jpg/png")
	command      = flag.String("cmd", "parse", "执行的命令: extract=仅提取文本, sections=章节切分, parse=完整结构化解析")
	maxLen       = flag.Int("maxlen", 1000, "显示的文本最大长度，设为-1显示全部")
	tikaURL      = flag.String("tika-url", "", "Tika服务地址，配置后pdf/docx/图片经由Tika提取；否则仅支持pdf(本地解析)和txt")
	outputPath   = flag.String("o", "", "结果输出到文件而不是标准输出")
	prettyOutput = flag.Bool("pretty", false, "JSON输出使用缩进格式")
	metadataOnly = flag.Bool("metadata-only", false, "只输出元数据/摘要，不输出正文内容")
)

func main() {
	flag.Parse()

	switch *command {
	case "extract":
		handleExtractCommand()
	case "sections":
		handleSectionsCommand()
	case "parse":
		handleParseCommand()
	default:
		fmt.Printf("错误: 未知命令 '%s'。支持的命令: extract, sections, parse\n", *command)
		flag.Usage()
		os.Exit(1)
	}
}

// requireInputFile 校验输入文件参数并返回绝对可访问的路径
func requireInputFile() string {
	if *inputFile == "" {
		fmt.Println("错误: 必须提供简历文件路径。使用 -file 参数。")
		flag.Usage()
		os.Exit(1)
	}
	if _, err := os.Stat(*inputFile); err != nil {
		fmt.Printf("无法访问文件 %s: %v\n", *inputFile, err)
		os.Exit(1)
	}
	return *inputFile
}

// buildExtractor 按参数装配文本提取器
// 指定Tika时全部格式走Tika，否则PDF走本地解析、txt直接读取
func buildExtractor(ctx context.Context) (parser.TextExtractor, error) {
	var opts []parser.RouterOption

	if *tikaURL != "" {
		tika := parser.NewTikaExtractor(*tikaURL)
		opts = append(opts,
			parser.WithPDFExtractor(tika),
			parser.WithDocxExtractor(tika),
			parser.WithImageExtractor(tika),
		)
	} else {
		eino, err := parser.NewEinoPDFExtractor(ctx)
		if err != nil {
			return nil, fmt.Errorf("创建本地PDF提取器失败: %w", err)
		}
		opts = append(opts, parser.WithPDFExtractor(eino))
	}

	return parser.NewFormatRouter(opts...), nil
}

// writeResult 把结果写到-o指定的文件或标准输出
func writeResult(data []byte) {
	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, data, 0644); err != nil {
			fmt.Printf("写入输出文件失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("结果已保存到: %s\n", *outputPath)
		return
	}
	fmt.Println(string(data))
}

// truncateForDisplay 按-maxlen截断展示文本
func truncateForDisplay(text string) string {
	if *maxLen >= 0 && len(text) > *maxLen {
		return text[:*maxLen] + "...(已截断，使用 -maxlen 参数显示更多)"
	}
	return text
}
