package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ludo-technologies/astdiff/domain"
)

// DiffFormatterImpl implements the DiffOutputFormatter interface
type DiffFormatterImpl struct {
	utils *FormatUtils

	insert  *color.Color
	delete  *color.Color
	update  *color.Color
	move    *color.Color
	faint   *color.Color
	warning *color.Color
}

// NewDiffFormatter creates a formatter. With noColor set, text output never
// carries ANSI escapes; otherwise fatih/color decides based on the terminal.
func NewDiffFormatter(noColor bool) *DiffFormatterImpl {
	f := &DiffFormatterImpl{
		utils:   NewFormatUtils(),
		insert:  color.New(color.FgGreen),
		delete:  color.New(color.FgRed),
		update:  color.New(color.FgYellow),
		move:    color.New(color.FgCyan),
		faint:   color.New(color.Faint),
		warning: color.New(color.FgYellow, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{f.insert, f.delete, f.update, f.move, f.faint, f.warning} {
			c.DisableColor()
		}
	}
	return f
}

// Write renders a single diff
func (f *DiffFormatterImpl) Write(response *domain.DiffResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatText, "":
		_, err := io.WriteString(writer, f.FormatText(response))
		if err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteDir renders a directory diff
func (f *DiffFormatterImpl) WriteDir(response *domain.DirDiffResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatText, "":
		_, err := io.WriteString(writer, f.FormatDirText(response))
		if err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatText renders a single diff as human-readable text
func (f *DiffFormatterImpl) FormatText(response *domain.DiffResponse) string {
	var b strings.Builder

	b.WriteString(f.utils.FormatMainHeader(fmt.Sprintf("%s -> %s (%s, %s)",
		response.Source, response.Target, response.Language, response.Matcher)))

	if response.Warning != "" {
		b.WriteString(f.warning.Sprint("WARNING: ") + response.Warning + "\n\n")
	}

	b.WriteString(f.utils.FormatSectionHeader("Actions"))
	if len(response.Actions) == 0 {
		b.WriteString(f.faint.Sprint("  no changes") + "\n")
	}
	for _, a := range response.Actions {
		b.WriteString(f.formatAction(a))
	}
	b.WriteString(f.utils.FormatSectionSeparator())

	if c := response.Classification; c != nil {
		b.WriteString(f.utils.FormatSectionHeader("Classification"))
		f.writeGroup(&b, "Deleted", c.Deleted, f.delete)
		f.writeGroup(&b, "Inserted", c.Inserted, f.insert)
		f.writeGroup(&b, "Updated", c.Updated, f.update)
		f.writeGroup(&b, "Moved", c.Moved, f.move)
		b.WriteString(f.utils.FormatSectionSeparator())
	}

	if len(response.Mappings) > 0 {
		b.WriteString(f.utils.FormatSectionHeader("Mappings"))
		for _, m := range response.Mappings {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", m.Src, f.faint.Sprint("=>"), m.Dst))
		}
		b.WriteString(f.utils.FormatSectionSeparator())
	}

	s := response.Summary
	b.WriteString(f.utils.FormatSectionHeader("Summary"))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Actions", s.TotalActions))
	b.WriteString(f.utils.FormatLabelWithIndent(ItemPadding, "Inserts", s.Inserts))
	b.WriteString(f.utils.FormatLabelWithIndent(ItemPadding, "Deletes", s.Deletes))
	b.WriteString(f.utils.FormatLabelWithIndent(ItemPadding, "Updates", s.Updates))
	b.WriteString(f.utils.FormatLabelWithIndent(ItemPadding, "Moves", s.Moves))
	if s.Permutes > 0 {
		b.WriteString(f.utils.FormatLabelWithIndent(ItemPadding, "Permutes", s.Permutes))
	}
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Mapped nodes",
		fmt.Sprintf("%d (source %d, target %d)", s.MappedNodes, s.SourceNodes, s.TargetNodes)))
	if response.Statistics.OptimalSkipped > 0 {
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Optimal skipped", response.Statistics.OptimalSkipped))
	}
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Verified", response.Verified))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Duration", f.utils.FormatDuration(response.Duration)))

	return b.String()
}

// FormatDirText renders a directory diff as human-readable text
func (f *DiffFormatterImpl) FormatDirText(response *domain.DirDiffResponse) string {
	var b strings.Builder

	b.WriteString(f.utils.FormatMainHeader(fmt.Sprintf("%s -> %s", response.SourceDir, response.TargetDir)))

	for _, file := range response.Files {
		switch file.Status {
		case domain.FileAdded:
			b.WriteString(f.insert.Sprint("A ") + file.Path + "\n")
		case domain.FileDeleted:
			b.WriteString(f.delete.Sprint("D ") + file.Path + "\n")
		case domain.FileFailed:
			b.WriteString(f.warning.Sprint("! ") + file.Path + ": " + file.Error + "\n")
		case domain.FileUnchanged:
			b.WriteString(f.faint.Sprint("= "+file.Path) + "\n")
		case domain.FileModified:
			b.WriteString(f.update.Sprint("M ") + file.Path)
			if file.Diff != nil {
				b.WriteString(f.faint.Sprintf(" (%d actions)", file.Diff.Summary.TotalActions))
			}
			b.WriteString("\n")
			if file.Diff != nil {
				for _, a := range file.Diff.Actions {
					b.WriteString("  " + f.formatAction(a))
				}
			}
		}
	}
	b.WriteString(f.utils.FormatSectionSeparator())

	s := response.Summary
	b.WriteString(f.utils.FormatSectionHeader("Summary"))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Compared", s.FilesCompared))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Changed", s.FilesChanged))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Added", s.FilesAdded))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Deleted", s.FilesDeleted))
	if s.FilesFailed > 0 {
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Failed", s.FilesFailed))
	}
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Actions", s.TotalActions))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Duration", f.utils.FormatDuration(response.Duration)))

	return b.String()
}

func (f *DiffFormatterImpl) formatAction(a domain.ActionView) string {
	kind := fmt.Sprintf("%-8s", a.Action)
	switch a.Action {
	case "insert":
		return fmt.Sprintf("  %s%s%s\n", f.insert.Sprint(kind), a.Tree, f.placement(a))
	case "delete":
		return fmt.Sprintf("  %s%s\n", f.delete.Sprint(kind), a.Tree)
	case "update":
		return fmt.Sprintf("  %s%s  %s\n", f.update.Sprint(kind), a.Tree, f.labelDiff(a.OldLabel, a.Label))
	default:
		return fmt.Sprintf("  %s%s%s\n", f.move.Sprint(kind), a.Tree, f.placement(a))
	}
}

func (f *DiffFormatterImpl) placement(a domain.ActionView) string {
	if a.At == nil {
		return ""
	}
	parent := a.Parent
	if parent == "" {
		parent = "<root>"
	}
	return f.faint.Sprintf(" into %s at %d", parent, *a.At)
}

// labelDiff shows a character-level diff of two labels: removed runs in
// red brackets, added runs in green braces
func (f *DiffFormatterImpl) labelDiff(oldLabel, newLabel string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldLabel, newLabel, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString(f.delete.Sprint("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(f.insert.Sprint("{+" + d.Text + "+}"))
		}
	}
	return b.String()
}

func (f *DiffFormatterImpl) writeGroup(b *strings.Builder, title string, items []string, c *color.Color) {
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, title, len(items)))
	for _, item := range items {
		b.WriteString(strings.Repeat(" ", ItemPadding) + c.Sprint("- ") + item + "\n")
	}
}
