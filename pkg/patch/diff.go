package patch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change
const diffContext = 2

type diffLine struct {
	op   byte // ' ', '-' or '+'
	text string
	// oldNo and newNo are the 1-based positions this line occupies, or follows
	oldNo, newNo int
}

// Diff renders a unified diff between before and after; empty when they are equal
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}

	lines := diffLines(before, after)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)

	for i := 0; i < len(lines); i++ {
		if lines[i].op == ' ' {
			continue
		}

		start := max(0, i-diffContext)
		end := i + 1
		for {
			k := end
			for k < len(lines) && lines[k].op == ' ' {
				k++
			}
			if k == len(lines) || k-end > 2*diffContext {
				break
			}
			end = k + 1
		}
		end = min(len(lines), end+diffContext)

		writeHunk(&sb, lines[start:end])
		i = end - 1
	}

	return sb.String()
}

func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []diffLine
	oldNo, newNo := 1, 1
	for _, d := range diffs {
		var op byte
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = '-'
		case diffmatchpatch.DiffInsert:
			op = '+'
		default:
			op = ' '
		}
		for _, text := range splitLines(d.Text) {
			out = append(out, diffLine{op: op, text: text, oldNo: oldNo, newNo: newNo})
			if op != '+' {
				oldNo++
			}
			if op != '-' {
				newNo++
			}
		}
	}
	return out
}

func writeHunk(sb *strings.Builder, hunk []diffLine) {
	var oldCount, newCount int
	for _, l := range hunk {
		if l.op != '+' {
			oldCount++
		}
		if l.op != '-' {
			newCount++
		}
	}

	fmt.Fprintf(sb, "@@ -%s +%s @@\n",
		hunkRange(hunk[0].oldNo, oldCount),
		hunkRange(hunk[0].newNo, newCount))

	for _, l := range hunk {
		sb.WriteByte(l.op)
		sb.WriteString(l.text)
		if !strings.HasSuffix(l.text, "\n") {
			sb.WriteString("\n")
		}
	}
}

// hunkRange formats a range the way diff -u does; an empty range names the line before it
func hunkRange(start, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start-1)
	case 1:
		return fmt.Sprintf("%d", start)
	default:
		return fmt.Sprintf("%d,%d", start, count)
	}
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
