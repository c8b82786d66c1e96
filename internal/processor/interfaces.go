package processor

import (
	"context"
	"io"

	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/types"
)

// Components 简历处理服务依赖的组件集合
type Components struct {
	// Storage 聚合的存储依赖 (MySQL/MinIO/Redis/RabbitMQ/搜索索引)
	Storage *storage.Storage

	// TextExtractor 文件到纯文本的提取器
	TextExtractor TextExtractor

	// RecordParser 纯文本到结构化记录的解析器
	RecordParser RecordParser
}

//
// 文本提取相关接口
//

// TextExtractor 从简历文件提取纯文本的接口
type TextExtractor interface {
	// ExtractFromFile 从文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	// 参数：
	// - ctx: 上下文
	// - reader: 文件内容的读取器
	// - uri: 资源标识符，路由器按其扩展名选择具体提取器
	// - options: 可选的解析配置
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

//
// 结构化解析相关接口
//

// RecordParser 把简历纯文本解析为结构化记录。
// 解析是全函数：任何输入都必须产出结构完整的记录，不返回错误；
// 无法识别的内容落入记录的空容器字段而不是报错。
type RecordParser interface {
	Parse(text string) *types.ResumeRecord
}
