// Command import-blogs publishes a directory of Markdown posts through the
// backend API. Each file carries a "%%%"-delimited TOML header; the text
// before the first "## " heading becomes the post's paragraphs and every
// "## " heading opens a section.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/editor"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/debemdeboas/folio/internal/repository"
	"github.com/debemdeboas/folio/internal/util"
	"github.com/debemdeboas/folio/internal/validate"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func main() {
	path := flag.String("path", "", "Path to the directory containing .md files")
	authorID := flag.String("author-id", "", "Backend user ID the posts are published as")
	configPath := flag.String("config", "config.yaml", "Configuration file with the backend address")
	dryRun := flag.Bool("dry-run", false, "Validate the posts without publishing them")
	flag.Parse()

	if *path == "" || *authorID == "" {
		log.Fatal("Both --path and --author-id flags are required")
	}

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	client := repository.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	blogs := repository.NewBlogStore(client, 0)

	files, err := os.ReadDir(*path)
	if err != nil {
		log.Fatalf("Error reading directory %s: %v", *path, err)
	}

	var imported, failed int
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}

		draft, err := loadPost(filepath.Join(*path, file.Name()))
		if err == nil {
			err = publish(blogs, draft, model.UserID(*authorID), cfg.Backend.Timeout, *dryRun)
		}
		if err != nil {
			failed++
			fmt.Println(failStyle.Render("✗ "+file.Name()), dimStyle.Render(err.Error()))
			continue
		}
		imported++
		fmt.Println(okStyle.Render("✓ "+file.Name()), dimStyle.Render(draft.Title))
	}

	fmt.Printf("%d imported, %d failed\n", imported, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func publish(blogs *repository.Store[model.Blog], draft *model.BlogDraft, author model.UserID, timeout time.Duration, dryRun bool) error {
	if errs := validate.Blog(draft); !errs.Valid() {
		return errs
	}
	if dryRun {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return blogs.Create(ctx, editor.BlogSchema.Payload(draft, author)).Err()
}

func loadPost(filePath string) (*model.BlogDraft, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	info, body, err := util.SplitFrontMatter(content)
	if err != nil {
		return nil, err
	}
	return draftFromMarkdown(info, body, strings.TrimSuffix(filepath.Base(filePath), ".md")), nil
}

func draftFromMarkdown(info *util.FrontMatter, body []byte, fallbackTitle string) *model.BlogDraft {
	d := model.NewBlogDraft()
	d.Title = fallbackTitle
	if info.Title != "" {
		d.Title = info.Title
	}
	if info.Type != "" {
		d.Type = info.Type
	}
	d.Categories = append(d.Categories, info.Categories...)
	d.Tags = append(d.Tags, info.Tags...)
	d.CoverImage = info.Cover
	d.RepositoryURL = info.Repository
	if len(info.KeyPoints) > 0 {
		d.ContentDetails.KeyPoints = info.KeyPoints
	}

	intro, sections := splitSections(body)
	if paragraphs := splitParagraphs(intro); len(paragraphs) > 0 {
		d.ContentDetails.Paragraphs = paragraphs
	}
	d.Sections = sections
	return d
}

// splitSections cuts body at level-two headings outside fenced code.
func splitSections(body []byte) (string, []model.Section) {
	var (
		intro    strings.Builder
		sections []model.Section
		current  *strings.Builder
		fenced   bool
	)

	flush := func() {
		if current != nil && len(sections) > 0 {
			sections[len(sections)-1].Content = strings.TrimSpace(current.String())
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenced = !fenced
		}

		if !fenced && strings.HasPrefix(line, "## ") {
			flush()
			section := model.NewSection()
			section.Title = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			sections = append(sections, section)
			current = &strings.Builder{}
			continue
		}

		if current != nil {
			current.WriteString(line + "\n")
		} else {
			intro.WriteString(line + "\n")
		}
	}
	flush()

	if sections == nil {
		sections = []model.Section{}
	}
	return intro.String(), sections
}

// splitParagraphs splits on blank lines, keeping fenced code blocks whole.
func splitParagraphs(text string) []string {
	var (
		paragraphs []string
		buf        strings.Builder
		fenced     bool
	)

	flush := func() {
		if p := strings.TrimSpace(buf.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		buf.Reset()
	}

	for line := range strings.Lines(text) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			fenced = !fenced
		}
		if trimmed == "" && !fenced {
			flush()
			continue
		}
		buf.WriteString(line)
	}
	flush()

	return paragraphs
}
