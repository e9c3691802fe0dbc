// Package util provides content hashing and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
)

var (
	frontMatterDelimiter = []byte("%%%")

	ErrNoFrontMatter      = errors.New("invalid front matter format")
	ErrInvalidFrontMatter = errors.New("failed to decode front matter")
)

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// FrontMatter is the TOML header of a Markdown post.
type FrontMatter struct {
	Title      string    `toml:"title"`
	Date       time.Time `toml:"date"`
	Type       string    `toml:"type"`
	Categories []string  `toml:"categories"`
	Tags       []string  `toml:"tags"`
	Cover      string    `toml:"cover"`
	KeyPoints  []string  `toml:"key_points"`
	Repository string    `toml:"repository"`

	// Consumed is the number of bytes of the normalized document taken
	// by the header, delimiters included.
	Consumed int `toml:"-"`
}

// GetFrontMatter decodes a "%%%"-delimited TOML header that opens md.
// Leading whitespace is ignored; anything else before the header is not.
func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	if !bytes.HasPrefix(md, frontMatterDelimiter) {
		return nil, ErrNoFrontMatter
	}

	rest := md[len(frontMatterDelimiter):]
	second := bytes.Index(rest, frontMatterDelimiter)
	if second == -1 {
		return nil, ErrNoFrontMatter
	}

	header := rest[:second]
	if len(bytes.TrimSpace(header)) == 0 {
		return nil, ErrNoFrontMatter
	}

	info := &FrontMatter{}
	if _, err := toml.Decode(string(header), info); err != nil {
		return nil, errors.Join(ErrInvalidFrontMatter, err)
	}
	info.Consumed = 2*len(frontMatterDelimiter) + second

	return info, nil
}

// SplitFrontMatter returns the header and the Markdown body after it.
func SplitFrontMatter(md []byte) (*FrontMatter, []byte, error) {
	info, err := GetFrontMatter(md)
	if err != nil {
		return nil, nil, err
	}
	md = bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
	return info, bytes.TrimLeft(md[info.Consumed:], "\n"), nil
}
