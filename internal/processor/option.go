package processor

import (
	"resume-parser-go/internal/storage"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// WithStorage 设置存储组件
func WithStorage(s *storage.Storage) ComponentOpt {
	return func(c *Components) {
		c.Storage = s
	}
}

// WithTextExtractor 设置文本提取器组件
func WithTextExtractor(extractor TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.TextExtractor = extractor
	}
}

// WithRecordParser 设置结构化解析器组件
func WithRecordParser(p RecordParser) ComponentOpt {
	return func(c *Components) {
		c.RecordParser = p
	}
}
