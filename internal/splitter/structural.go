package splitter

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// structuralParser extracts top-level declaration spans (function, class,
// method) from content. Returns nil when parsing fails or nothing top-level
// is found; the caller falls through to the next strategy either way.
type structuralParser func(content string) []Chunk

var structuralParsers = map[string]structuralParser{
	"go":         parseGoUnits,
	"python":     parsePythonUnits,
	"javascript": parseBraceUnits,
	"typescript": parseBraceUnits,
}

func splitStructural(content, language string) []Chunk {
	parse, ok := structuralParsers[strings.ToLower(language)]
	if !ok {
		return nil
	}
	return parse(content)
}

// parseGoUnits collects top-level func and method declarations. The span
// includes the doc comment when one is attached.
func parseGoUnits(content string) []Chunk {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, parser.ParseComments)
	if err != nil {
		return nil
	}

	lines := strings.Split(content, "\n")
	var chunks []Chunk
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name == nil {
			continue
		}
		startPos := fn.Pos()
		if fn.Doc != nil {
			startPos = fn.Doc.Pos()
		}
		start := fset.Position(startPos).Line - 1
		end := fset.Position(fn.End()).Line - 1
		if start < 0 || end >= len(lines) || start > end {
			continue
		}
		chunks = append(chunks, Chunk{
			Content:   strings.Join(lines[start:end+1], "\n"),
			Kind:      KindStructuralUnit,
			StartLine: start,
			EndLine:   end,
		})
	}
	return chunks
}

// parsePythonUnits scans for column-0 def/class declarations. A block runs
// until the next non-blank line at column 0. Decorator lines directly above
// the declaration belong to its span.
func parsePythonUnits(content string) []Chunk {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	i := 0
	for i < len(lines) {
		line := lines[i]
		if !isPythonDecl(line) {
			i++
			continue
		}

		start := i
		for start > 0 && strings.HasPrefix(lines[start-1], "@") {
			start--
		}

		end := i
		j := i + 1
		for j < len(lines) {
			next := lines[j]
			trimmed := strings.TrimSpace(next)
			if trimmed != "" && !strings.HasPrefix(next, " ") && !strings.HasPrefix(next, "\t") {
				break
			}
			if trimmed != "" {
				end = j
			}
			j++
		}

		chunks = append(chunks, Chunk{
			Content:   strings.Join(lines[start:end+1], "\n"),
			Kind:      KindStructuralUnit,
			StartLine: start,
			EndLine:   end,
		})
		i = j
	}
	return chunks
}

func isPythonDecl(line string) bool {
	return strings.HasPrefix(line, "def ") ||
		strings.HasPrefix(line, "async def ") ||
		strings.HasPrefix(line, "class ")
}

// parseBraceUnits handles javascript and typescript: top-level function and
// class declarations delimited by balanced braces. Brace tracking is
// line-based; an unbalanced file yields nil and the window fallback runs.
func parseBraceUnits(content string) []Chunk {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	depth := 0
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if depth == 0 && isBraceDecl(trimmed) {
			start := i
			blockDepth := 0
			opened := false
			j := i
			for ; j < len(lines); j++ {
				blockDepth += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
				if strings.Contains(lines[j], "{") {
					opened = true
				}
				if opened && blockDepth <= 0 {
					break
				}
			}
			if j >= len(lines) {
				return nil
			}
			chunks = append(chunks, Chunk{
				Content:   strings.Join(lines[start:j+1], "\n"),
				Kind:      KindStructuralUnit,
				StartLine: start,
				EndLine:   j,
			})
			i = j + 1
			continue
		}
		depth += strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
		i++
	}
	if depth != 0 {
		return nil
	}
	return chunks
}

func isBraceDecl(trimmed string) bool {
	for _, prefix := range []string{"export default ", "export ", ""} {
		rest := strings.TrimPrefix(trimmed, prefix)
		if strings.HasPrefix(rest, "function ") ||
			strings.HasPrefix(rest, "async function ") ||
			strings.HasPrefix(rest, "class ") {
			return true
		}
	}
	return false
}
