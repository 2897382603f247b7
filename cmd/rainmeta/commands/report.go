// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/registry"
	"github.com/rainlanguage/rainmeta/lib/resolver"
)

// Item status values in reports.
const (
	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"
)

// itemReport is the per-item view printed by decode, validate and
// resolve.
type itemReport struct {
	Index           int         `json:"index"`
	Offset          int         `json:"offset"`
	Magic           string      `json:"magic"`
	MagicHex        string      `json:"magic_hex"`
	Known           bool        `json:"known"`
	Deprecated      bool        `json:"deprecated,omitempty"`
	ContentType     string      `json:"content_type,omitempty"`
	ContentEncoding string      `json:"content_encoding,omitempty"`
	ContentLanguage string      `json:"content_language,omitempty"`
	WireSize        int         `json:"wire_size"`
	Size            int         `json:"size"`
	Hash            string      `json:"hash,omitempty"`
	Status          string      `json:"status"`
	Error           string      `json:"error,omitempty"`
	Violations      []violation `json:"violations,omitempty"`
	Value           any         `json:"value,omitempty"`
	Text            string      `json:"text,omitempty"`
}

type violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// buildReports converts pipeline results. With payloads set, parsed
// structured values and UTF-8 text payloads are included.
func buildReports(results []resolver.Decoded, payloads bool) []itemReport {
	reports := make([]itemReport, 0, len(results))
	for _, result := range results {
		report := itemReport{
			Index:           result.Index,
			Offset:          result.Offset,
			Magic:           result.Wire.Magic.String(),
			MagicHex:        result.Wire.Magic.Hex(),
			ContentType:     result.Wire.ContentType.String(),
			ContentEncoding: result.Wire.ContentEncoding.String(),
			ContentLanguage: string(result.Wire.ContentLanguage),
			WireSize:        len(result.Wire.Payload),
		}

		switch {
		case result.Err != nil:
			report.Status = statusError
			report.Error = result.Err.Error()
		default:
			report.Size = len(result.Item.Payload)
			report.Hash = result.Hash.String()
			report.Known = result.Validation.Known
			report.Deprecated = result.Validation.Deprecated
			report.Status = statusOK
			if err := result.Validation.Err; err != nil {
				report.Status = statusInvalid
				report.Error = err.Error()
				var schemaErr *registry.SchemaViolationError
				if errors.As(err, &schemaErr) {
					for _, v := range schemaErr.Violations {
						report.Violations = append(report.Violations, violation{Path: v.Path, Message: v.Message})
					}
				}
			}
			if payloads {
				report.Value = result.Validation.Value
				if report.Value == nil && isText(result.Item) {
					report.Text = string(result.Item.Payload)
				}
			}
		}
		reports = append(reports, report)
	}
	return reports
}

// isText reports whether a payload is worth printing verbatim.
func isText(item meta.Item) bool {
	if item.ContentType == meta.ContentTypeJSON || item.ContentType == meta.ContentTypeCBOR {
		return false
	}
	return utf8.Valid(item.Payload)
}

// reportStyles holds the lipgloss styles for the text report. Colors
// are ANSI 256 codes for a dark terminal.
type reportStyles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	faint   lipgloss.Style
	ok      lipgloss.Style
	invalid lipgloss.Style
	failed  lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	renderer := lipgloss.NewRenderer(w)
	return reportStyles{
		heading: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		label:   renderer.NewStyle().Foreground(lipgloss.Color("75")),
		faint:   renderer.NewStyle().Foreground(lipgloss.Color("245")),
		ok:      renderer.NewStyle().Foreground(lipgloss.Color("114")),
		invalid: renderer.NewStyle().Foreground(lipgloss.Color("220")),
		failed:  renderer.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func (s reportStyles) status(status string) lipgloss.Style {
	switch status {
	case statusOK:
		return s.ok
	case statusInvalid:
		return s.invalid
	default:
		return s.failed
	}
}

// renderReports writes the human-readable report for a document.
func renderReports(w io.Writer, reports []itemReport) error {
	styles := newReportStyles(w)
	var out strings.Builder

	if len(reports) == 0 {
		out.WriteString(styles.faint.Render("empty document") + "\n")
	}

	for i, report := range reports {
		if i > 0 {
			out.WriteString("\n")
		}
		header := fmt.Sprintf("item %d", report.Index)
		fmt.Fprintf(&out, "%s  %s  %s\n",
			styles.heading.Render(header),
			report.Magic,
			styles.status(report.Status).Render(report.Status))

		field := func(name, value string) {
			if value != "" {
				fmt.Fprintf(&out, "  %s %s\n", styles.label.Render(fmt.Sprintf("%-9s", name)), value)
			}
		}

		field("offset", fmt.Sprintf("%d", report.Offset))
		if report.Magic != report.MagicHex {
			field("magic", report.MagicHex)
		}
		field("type", report.ContentType)
		field("encoding", report.ContentEncoding)
		field("language", report.ContentLanguage)
		if report.Status == statusError {
			field("size", fmt.Sprintf("%d bytes on wire", report.WireSize))
		} else {
			field("size", fmt.Sprintf("%d bytes (%d on wire)", report.Size, report.WireSize))
		}
		field("hash", report.Hash)
		if report.Deprecated {
			field("note", styles.faint.Render("deprecated kind"))
		}
		if report.Status != statusOK && len(report.Violations) == 0 {
			field("error", styles.status(report.Status).Render(report.Error))
		}
		for _, v := range report.Violations {
			path := v.Path
			if path == "" {
				path = "(root)"
			}
			field("violation", fmt.Sprintf("%s: %s", path, v.Message))
		}

		if report.Value != nil {
			value, err := json.MarshalIndent(report.Value, "  ", "  ")
			if err != nil {
				return fmt.Errorf("formatting item %d: %w", report.Index, err)
			}
			fmt.Fprintf(&out, "  %s\n", value)
		} else if report.Text != "" {
			for line := range strings.SplitSeq(strings.TrimRight(report.Text, "\n"), "\n") {
				fmt.Fprintf(&out, "  %s %s\n", styles.faint.Render("|"), line)
			}
		}
	}

	_, err := io.WriteString(w, out.String())
	return err
}

// countFailures returns how many reports are not ok.
func countFailures(reports []itemReport) int {
	failures := 0
	for _, report := range reports {
		if report.Status != statusOK {
			failures++
		}
	}
	return failures
}
