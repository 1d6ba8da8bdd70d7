// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
)

// parsedEmail is the subset of a forwarded-chapter email the Patreon
// providers care about: subject (for source filtering) and rendered HTML
// body (the chapter content itself, spec.md §4.A).
type parsedEmail struct {
	Subject string
	HTML    string
}

// parseEmail decodes raw into a [parsedEmail]. enmime's single Envelope
// already resolves the original source's "prefer a single part; otherwise
// the last sub-part" selection internally via its MIME-tree walk, so a
// single env.HTML read replaces that ad-hoc fallback chain.
func parseEmail(raw []byte) (parsedEmail, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return parsedEmail{}, fmt.Errorf("provider: parse email: %w", err)
	}
	html := env.HTML
	if html == "" {
		html = env.Text
	}
	return parsedEmail{Subject: env.GetHeader("Subject"), HTML: html}, nil
}

// subjectContains is the original source's case-insensitive substring
// filter used to discard emails that aren't from the expected serial.
func subjectContains(subject, needle string) bool {
	return strings.Contains(strings.ToLower(subject), strings.ToLower(needle))
}
