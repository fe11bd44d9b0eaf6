package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
)

const (
	// captionLimit is Telegram's maximum photo caption length.
	captionLimit  = 1024
	overviewLimit = 600
	maxResults    = 10
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// FormatCard renders a detail record as a MarkdownV2 card.
func FormatCard(rec tmdb.Record) string {
	var b strings.Builder

	title := rec.DisplayTitle()
	if title == "" {
		title = fmt.Sprintf("#%d", rec.ID)
	}
	b.WriteString(FormatBold(title))
	if y := rec.Year(); y > 0 {
		b.WriteString(EscapeMdV2(fmt.Sprintf(" (%d)", y)))
	}
	b.WriteByte('\n')

	if rec.Tagline != "" {
		b.WriteString(FormatItalic(rec.Tagline))
		b.WriteByte('\n')
	}

	var facts []string
	if g := rec.GenreNames(); len(g) > 0 {
		facts = append(facts, strings.Join(g, ", "))
	}
	if rec.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%d min", rec.Runtime))
	}
	if rec.NumberOfSeasons > 0 {
		facts = append(facts, fmt.Sprintf("%d temporadas", rec.NumberOfSeasons))
	}
	if rec.VoteAverage > 0 {
		facts = append(facts, fmt.Sprintf("★ %.1f", rec.VoteAverage))
	}
	if len(facts) > 0 {
		b.WriteString(EscapeMdV2(strings.Join(facts, " · ")))
		b.WriteByte('\n')
	}

	if rec.Overview != "" {
		b.WriteByte('\n')
		b.WriteString(EscapeMdV2(truncate(rec.Overview, overviewLimit)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatResults renders a numbered list of search results as plain text.
func FormatResults(query string, results []tmdb.Record) string {
	if len(results) == 0 {
		return fmt.Sprintf("Nenhum resultado para %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Resultados para %q:\n", query)
	for i, rec := range limitResults(results) {
		fmt.Fprintf(&b, "%d. %s", i+1, rec.DisplayTitle())
		if y := rec.Year(); y > 0 {
			fmt.Fprintf(&b, " (%d)", y)
		}
		b.WriteByte('\n')
	}
	if len(results) > maxResults {
		fmt.Fprintf(&b, "… e mais %d.", len(results)-maxResults)
	}
	return strings.TrimRight(b.String(), "\n")
}

func limitResults(results []tmdb.Record) []tmdb.Record {
	if len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}

// truncate shortens s to at most n runes, ending with an ellipsis when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
