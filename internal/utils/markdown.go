package utils

import (
	"bytes"
	"html/template"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()

	// 渲染结果按内容缓存。键就是原文，内容寻址，不存在失效问题
	rendered *lru.Cache[string, template.HTML]
)

func init() {
	// Allow images
	policy.AllowImages()
	// Force links to open in new tab
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	var err error
	rendered, err = lru.New[string, template.HTML](512)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
}

// RenderMarkdown 把 markdown 渲染为消毒后的 HTML
func RenderMarkdown(source string) template.HTML {
	if out, ok := rendered.Get(source); ok {
		return out
	}

	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(policy.Sanitize(source)) // Fallback
	}

	out := template.HTML(policy.SanitizeBytes(buf.Bytes()))
	rendered.Add(source, out)
	return out
}
