package util

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestGetFrontMatter(t *testing.T) {
	testCases := []struct {
		name          string
		markdown      []byte
		expectError   bool
		expectedTitle string
		expectedDate  time.Time
	}{
		{
			name: "Valid Front Matter",
			markdown: []byte(`%%%
title = "Hello World"
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError:   false,
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "No Front Matter",
			markdown: []byte(`# Just Content
No front matter here.`),
			expectError: true,
		},
		{
			name:        "Empty File",
			markdown:    []byte(""),
			expectError: true,
		},
		{
			name: "Content Before Front Matter",
			markdown: []byte(`
# This should be ignored
%%%
title = "Hello World"
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError: true,
		},
		{
			name: "Extra Whitespace",
			markdown: []byte(`


%%%

title = "Hello World"
date = 2025-01-01 00:00:00Z

%%%
# Content`),
			expectError:   false,
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Malformed Front Matter",
			markdown: []byte(`%%%
title = "Incomplete
# Content`),
			expectError: true,
		},
		{
			name: "Front Matter with No Title",
			markdown: []byte(`%%%
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectError:   false,
			expectedTitle: "",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Front Matter with No Date",
			markdown: []byte(`%%%
title = "No Date"
%%%
# Content`),
			expectError:   false,
			expectedTitle: "No Date",
			expectedDate:  time.Time{}, // Zero value for time
		},
		{
			name:        "Only Delimiters",
			markdown:    []byte("%%% %%%"),
			expectError: true,
		},
		{
			name: "Blog Fields",
			markdown: []byte(`%%%
title = "Caching at the edge"
date = 2024-06-01T10:00:00Z
type = "Technical"
categories = ["Web Dev"]
tags = ["go", "http"]
key_points = ["Cache close to readers"]
%%%
Body`),
			expectError:   false,
			expectedTitle: "Caching at the edge",
			expectedDate:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := GetFrontMatter(tc.markdown)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				}
				if info != nil {
					t.Errorf("Expected nil info when error occurs, but got %+v", info)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}

			if info == nil {
				t.Fatal("Expected front matter info, but got nil")
			}

			if info.Title != tc.expectedTitle {
				t.Errorf("Expected title '%s', but got '%s'", tc.expectedTitle, info.Title)
			}

			if !info.Date.Equal(tc.expectedDate) {
				t.Errorf("Expected date '%v', but got '%v'", tc.expectedDate, info.Date)
			}
		})
	}
}

func TestGetFrontMatterFields(t *testing.T) {
	info, err := GetFrontMatter([]byte(`%%%
title = "T"
type = "Tutorial"
categories = ["Web Dev", "DevOps"]
tags = ["go"]
cover = "https://cdn.example.com/c.png"
key_points = ["one", "two"]
repository = "https://github.com/example/repo"
%%%
`))
	if err != nil {
		t.Fatalf("Expected no error, but got: %v", err)
	}
	if info.Type != "Tutorial" {
		t.Errorf("Expected type 'Tutorial', got '%s'", info.Type)
	}
	if !slices.Equal(info.Categories, []string{"Web Dev", "DevOps"}) {
		t.Errorf("Expected two categories, got %v", info.Categories)
	}
	if !slices.Equal(info.KeyPoints, []string{"one", "two"}) {
		t.Errorf("Expected two key points, got %v", info.KeyPoints)
	}
	if info.Cover != "https://cdn.example.com/c.png" || info.Repository != "https://github.com/example/repo" {
		t.Errorf("Expected cover and repository, got %q and %q", info.Cover, info.Repository)
	}
}

func TestGetFrontMatterErrors(t *testing.T) {
	if _, err := GetFrontMatter([]byte("# Title")); !errors.Is(err, ErrNoFrontMatter) {
		t.Errorf("Expected ErrNoFrontMatter, got %v", err)
	}
	if _, err := GetFrontMatter([]byte("%%%\ntitle = \n%%%")); !errors.Is(err, ErrInvalidFrontMatter) {
		t.Errorf("Expected ErrInvalidFrontMatter, got %v", err)
	}
}

func TestSplitFrontMatter(t *testing.T) {
	info, body, err := SplitFrontMatter([]byte("\r\n%%%\r\ntitle = \"Hello\"\r\n%%%\r\n\r\n# Heading\r\nText\r\n"))
	if err != nil {
		t.Fatalf("Expected no error, but got: %v", err)
	}
	if info.Title != "Hello" {
		t.Errorf("Expected title 'Hello', got '%s'", info.Title)
	}
	if string(body) != "# Heading\nText\n" {
		t.Errorf("Expected body after the header, got %q", body)
	}
}

func TestContentHash(t *testing.T) {
	if ContentHash([]byte("a")) != ContentHashString("a") {
		t.Error("Expected byte and string hashes to match")
	}
	if ContentHash([]byte("a")) == ContentHash([]byte("b")) {
		t.Error("Expected different content to hash differently")
	}
	if len(ContentHash(nil)) != 64 {
		t.Errorf("Expected a hex sha256, got %q", ContentHash(nil))
	}
}
