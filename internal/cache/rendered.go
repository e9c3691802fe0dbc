package cache

// RenderKey identifies one rendering of a Markdown text. The same text
// renders differently per highlight theme and per Markdown dialect.
type RenderKey struct {
	ContentHash string
	SyntaxTheme string
	Dialect     string
}

// RenderedContent is rendered Markdown plus the dialect's extra output,
// such as the mmark title block.
type RenderedContent struct {
	HTML  []byte
	Extra any
}

var renderedMarkdownCache = NewCache[RenderKey, *RenderedContent]()

func GetRenderedMarkdown(key RenderKey) (*RenderedContent, bool) {
	return renderedMarkdownCache.Get(key)
}

func SetRenderedMarkdown(key RenderKey, html []byte, extra any) {
	renderedMarkdownCache.Set(key, &RenderedContent{HTML: html, Extra: extra})
}

func ClearRenderedMarkdownCache() {
	renderedMarkdownCache.Clear()
}
