package service

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"

	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
)

const (
	ContentTypeHTML     = "text/html"
	ContentTypeMarkdown = "text/markdown"
)

// PageInfo reports the current URL, title and mode, optionally with the page
// content as HTML or Markdown.
func (c *Controller) PageInfo(ctx context.Context, withContent bool, mimeType string) (*model.PageInfo, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	page, err := c.currentPage()
	if err != nil {
		return nil, err
	}

	title, err := page.Title()
	if err != nil {
		c.log.Warn("Failed to get page title: %v", err)
		title = "<error retrieving title>"
	}

	info := &model.PageInfo{
		URL:   page.URL(),
		Title: title,
		Mode:  c.Mode(),
	}
	if !withContent {
		return info, nil
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	content, contentType := html, ContentTypeHTML
	if mimeType == ContentTypeMarkdown {
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(html)
		if err != nil {
			return nil, fmt.Errorf("markdown conversion failed: %w", err)
		}
		content, contentType = markdown, ContentTypeMarkdown
	}
	info.Content = &content
	info.ContentType = &contentType
	return info, nil
}
