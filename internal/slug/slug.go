// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns titles and uploaded file names into URL-safe tokens.
package slug

import (
	"path"
	"regexp"
	"strings"
)

// MaxLength caps generated slugs so object keys stay short.
const MaxLength = 60

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators matches runs of whitespace, underscores and dots.
	separators = regexp.MustCompile(`[\s_.]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// extension matches a plain file extension.
	extension = regexp.MustCompile(`^[a-z0-9]{1,8}$`)
)

// Generate creates a URL-friendly slug of at most MaxLength bytes.
// Example: "My CV (final)_v2" → "my-cv-final-v2"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = separators.ReplaceAllString(result, " ")
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// FileName splits an uploaded file name into a slugged base and a lowercase
// extension without the dot. base falls back to "file" and ext is empty
// when the name has no usable extension.
func FileName(name string) (base, ext string) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	ext = strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if !extension.MatchString(ext) {
		ext = ""
	} else {
		name = strings.TrimSuffix(name, path.Ext(name))
	}

	base = Generate(name)
	if base == "" {
		base = "file"
	}
	return base, ext
}
