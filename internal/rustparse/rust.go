package rustparse

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/oss-omni/omni/internal/model"
)

// RustParser extracts symbols, call edges, and imports from Rust source
// using regex pattern matching and hand-rolled brace-depth scanning —
// deliberately not a CST/tree-sitter parser, so a file with a syntax error
// anywhere still yields every symbol extractable around it.
type RustParser struct{}

// NewRustParser creates a Rust parser instance.
func NewRustParser() *RustParser { return &RustParser{} }

func (p *RustParser) Language() string             { return "rust" }
func (p *RustParser) SupportedExtensions() []string { return []string{".rs"} }
func (p *RustParser) CanParse(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".rs")
}

var (
	reFunc = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?)fn\s+(\w+)\s*(?:<[^>]*>)?\s*\(([^){};]*)\)(?:\s*->\s*([^{;]+))?`)

	reStruct  = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)struct\s+(\w+)(?:\s*<[^>]*>)?`)
	reEnum    = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)enum\s+(\w+)(?:\s*<[^>]*>)?`)
	reTrait   = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)(?:unsafe\s+)?trait\s+(\w+)(?:\s*<[^>]*>)?(?:\s*:\s*([^{]+))?`)
	reAlias   = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)type\s+(\w+)(?:\s*<[^>]*>)?\s*=`)
	reImpl    = regexp.MustCompile(`(?m)^([ \t]*)impl(?:\s*<[^>]*>)?\s+(?:(\w+(?:<[^>]*>)?)\s+for\s+)?(\w+)(?:<[^>]*>)?`)
	reConst   = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)const\s+(\w+)\s*:\s*([^=]+)\s*=`)
	reStatic  = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)static\s+(?:mut\s+)?(\w+)\s*:\s*([^=]+)\s*=`)
	reMod     = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)mod\s+(\w+)\s*\{`)
	reModDecl = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)mod\s+(\w+)\s*;`)
	reMacro   = regexp.MustCompile(`(?m)^([ \t]*)(?:#\[macro_export\]\s*\n\s*)?macro_rules!\s+(\w+)`)
	reUse     = regexp.MustCompile(`(?m)^([ \t]*)((?:pub(?:\s*\([^)]*\))?\s+)?)use\s+([^;]+);`)
	reCall    = regexp.MustCompile(`(?:\b|::|\.)([A-Za-z_][A-Za-z0-9_]*)\s*(!)?\s*\(`)
)

var rustKeywords = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "loop": true, "match": true,
	"return": true, "let": true, "fn": true, "struct": true, "enum": true, "impl": true,
	"trait": true, "mod": true, "use": true, "pub": true, "const": true, "static": true,
	"unsafe": true, "async": true, "await": true, "move": true, "where": true, "as": true,
	"in": true, "break": true, "continue": true, "self": true, "Self": true, "super": true,
	"crate": true, "dyn": true, "type": true, "ref": true, "mut": true,
}

// region marks a byte span carrying a name, used to resolve scoped names
// for mods and impl blocks.
type region struct {
	name  string
	start int
	end   int
}

type parseCtx struct {
	path       string
	content    []byte
	lineStarts []int
	filePfx    string
	mods       []region
	impls      []region
}

// Parse implements Parser.
func (p *RustParser) Parse(path string, content []byte) *model.ParseOutput {
	out := &model.ParseOutput{Path: path}

	ctx := &parseCtx{
		path:       path,
		content:    content,
		lineStarts: buildLineStarts(content),
		filePfx:    modulePathFromPath(path),
	}
	ctx.mods = findModRegions(content)
	ctx.impls = findImplRegions(content)

	p.extractFunctions(ctx, out)
	p.extractStructsAndFields(ctx, out)
	p.extractEnums(ctx, out)
	p.extractTraits(ctx, out)
	p.extractAliases(ctx, out)
	p.extractImplMethods(ctx, out)
	p.extractConsts(ctx, out)
	p.extractStatics(ctx, out)
	p.extractModDecls(ctx, out)
	p.extractMacros(ctx, out)
	p.extractImports(ctx, out)
	p.extractCalls(ctx, out)

	return out
}

// --- symbol extraction -----------------------------------------------------

func (p *RustParser) extractFunctions(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reFunc.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			// Indented fns are taken only inside a mod block and outside
			// every impl block; methods are picked up by extractImplMethods.
			inImpl := false
			for _, r := range ctx.impls {
				if m[0] > r.start && m[0] < r.end {
					inImpl = true
				}
			}
			if inImpl || enclosingModNames(ctx.mods, m[0]) == "" {
				continue
			}
		}
		name := string(ctx.content[m[6]:m[7]])
		var params, ret string
		if m[8] != -1 && m[9] != -1 {
			params = string(ctx.content[m[8]:m[9]])
		}
		if len(m) >= 12 && m[10] != -1 && m[11] != -1 {
			ret = strings.TrimSpace(string(ctx.content[m[10]:m[11]]))
		}
		sig := fmt.Sprintf("fn %s(%s)", name, cleanParams(params))
		if ret != "" {
			sig += " -> " + ret
		}
		sym := p.buildSymbol(ctx, model.KindFunction, name, m[0], m[1], sig)
		out.Symbols = append(out.Symbols, sym)
	}
}

func (p *RustParser) extractStructsAndFields(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reStruct.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		name := string(ctx.content[m[6]:m[7]])
		sym := p.buildSymbol(ctx, model.KindStruct, name, m[0], m[1], "struct "+name)
		out.Symbols = append(out.Symbols, sym)
		p.extractFields(ctx, m[1], name, sym.ScopedName, out)
	}
}

func (p *RustParser) extractFields(ctx *parseCtx, structEnd int, structName, scopedParent string, out *model.ParseOutput) {
	braceStart := bytes.IndexByte(ctx.content[structEnd:], '{')
	if braceStart == -1 {
		return
	}
	braceStart += structEnd
	braceEnd := findMatchingBrace(ctx.content, braceStart)
	if braceEnd == -1 {
		return
	}
	body := ctx.content[braceStart+1 : braceEnd]
	offset := braceStart + 1
	fieldRe := regexp.MustCompile(`(?m)^\s*((?:pub(?:\s*\([^)]*\))?\s+)?)(\w+)\s*:\s*([^,}]+)`)
	for _, m := range fieldRe.FindAllSubmatchIndex(body, -1) {
		name := string(body[m[4]:m[5]])
		ftype := strings.TrimSpace(string(body[m[6]:m[7]]))
		vis := visibilityOf(string(body[m[2]:m[3]]))
		start, end := offset+m[0], offset+m[1]
		loc := p.location(ctx, start, end)
		out.Symbols = append(out.Symbols, model.SymbolDef{
			Name:       name,
			ScopedName: scopedParent + "::" + name,
			Kind:       model.KindField,
			Location:   loc,
			Signature:  fmt.Sprintf("%s.%s: %s", structName, name, ftype),
			Visibility: vis,
		})
	}
}

func (p *RustParser) extractEnums(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reEnum.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		name := string(ctx.content[m[6]:m[7]])
		sym := p.buildSymbol(ctx, model.KindEnum, name, m[0], m[1], "enum "+name)
		out.Symbols = append(out.Symbols, sym)
		p.extractVariants(ctx, m[1], name, sym.ScopedName, out)
	}
}

func (p *RustParser) extractVariants(ctx *parseCtx, enumEnd int, enumName, scopedParent string, out *model.ParseOutput) {
	braceStart := bytes.IndexByte(ctx.content[enumEnd:], '{')
	if braceStart == -1 {
		return
	}
	braceStart += enumEnd
	braceEnd := findMatchingBrace(ctx.content, braceStart)
	if braceEnd == -1 {
		return
	}
	body := ctx.content[braceStart+1 : braceEnd]
	offset := braceStart + 1
	variantRe := regexp.MustCompile(`(?m)^\s*(\w+)\s*[,({]`)
	for _, m := range variantRe.FindAllSubmatchIndex(body, -1) {
		name := string(body[m[2]:m[3]])
		if rustKeywords[name] {
			continue
		}
		start, end := offset+m[2], offset+m[3]
		loc := p.location(ctx, start, end)
		out.Symbols = append(out.Symbols, model.SymbolDef{
			Name:       name,
			ScopedName: scopedParent + "::" + name,
			Kind:       model.KindVariant,
			Location:   loc,
			Signature:  fmt.Sprintf("%s::%s", enumName, name),
			Visibility: model.VisPublic,
		})
	}
}

func (p *RustParser) extractTraits(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reTrait.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		name := string(ctx.content[m[6]:m[7]])
		sig := "trait " + name
		if len(m) >= 10 && m[8] != -1 && m[9] != -1 {
			sig += ": " + strings.TrimSpace(string(ctx.content[m[8]:m[9]]))
		}
		sym := p.buildSymbol(ctx, model.KindTrait, name, m[0], m[1], sig)
		out.Symbols = append(out.Symbols, sym)
	}
}

func (p *RustParser) extractAliases(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reAlias.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		name := string(ctx.content[m[6]:m[7]])
		sym := p.buildSymbol(ctx, model.KindTypeAlias, name, m[0], m[1], "type "+name)
		out.Symbols = append(out.Symbols, sym)
	}
}

func (p *RustParser) extractImplMethods(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reImpl.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		typeName := string(ctx.content[m[6]:m[7]])
		braceStart := bytes.IndexByte(ctx.content[m[1]:], '{')
		if braceStart == -1 {
			continue
		}
		braceStart += m[1]
		braceEnd := findMatchingBrace(ctx.content, braceStart)
		if braceEnd == -1 {
			continue
		}
		body := ctx.content[braceStart+1 : braceEnd]
		offset := braceStart + 1
		scopedType := ctx.filePfx
		if s := enclosingModNames(ctx.mods, m[0]); s != "" {
			scopedType = joinNonEmpty(ctx.filePfx, s)
		}
		scopedType = joinNonEmpty(scopedType, typeName)

		for _, fm := range reFunc.FindAllSubmatchIndex(body, -1) {
			name := string(body[fm[6]:fm[7]])
			var params, ret string
			if fm[8] != -1 && fm[9] != -1 {
				params = string(body[fm[8]:fm[9]])
			}
			if len(fm) >= 12 && fm[10] != -1 && fm[11] != -1 {
				ret = strings.TrimSpace(string(body[fm[10]:fm[11]]))
			}
			sig := fmt.Sprintf("%s::%s(%s)", typeName, name, cleanParams(params))
			if ret != "" {
				sig += " -> " + ret
			}
			start, end := offset+fm[0], offset+fm[1]
			vis := visibilityOf(string(body[fm[0]:fm[1]]))
			loc := p.location(ctx, start, end)
			endByte := findBlockEnd(ctx.content, end)
			loc.EndByte = endByte
			loc.EndLine, loc.EndCol = byteToLineColWith(ctx.lineStarts, ctx.content, endByte)
			out.Symbols = append(out.Symbols, model.SymbolDef{
				Name:       name,
				ScopedName: joinNonEmpty(scopedType, name),
				Kind:       model.KindMethod,
				Location:   loc,
				Signature:  sig,
				Visibility: vis,
				Attributes: attributesBefore(ctx.content, start),
				Body:       string(ctx.content[start:endByte]),
			})
		}
	}
}

func (p *RustParser) extractConsts(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reConst.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		name := string(ctx.content[m[6]:m[7]])
		typ := strings.TrimSpace(string(ctx.content[m[8]:m[9]]))
		sym := p.buildSymbol(ctx, model.KindConst, name, m[0], m[1], fmt.Sprintf("const %s: %s", name, typ))
		out.Symbols = append(out.Symbols, sym)
	}
}

func (p *RustParser) extractStatics(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reStatic.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		name := string(ctx.content[m[6]:m[7]])
		typ := strings.TrimSpace(string(ctx.content[m[8]:m[9]]))
		sym := p.buildSymbol(ctx, model.KindStatic, name, m[0], m[1], fmt.Sprintf("static %s: %s", name, typ))
		out.Symbols = append(out.Symbols, sym)
	}
}

func (p *RustParser) extractModDecls(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reModDecl.FindAllSubmatchIndex(ctx.content, -1) {
		if indentLen(ctx.content, m) > 0 {
			continue
		}
		name := string(ctx.content[m[6]:m[7]])
		sym := p.buildSymbol(ctx, model.KindModule, name, m[0], m[1], "mod "+name)
		out.Symbols = append(out.Symbols, sym)
	}
	for _, r := range ctx.mods {
		sym := p.buildSymbol(ctx, model.KindModule, r.name, r.start, r.start, "mod "+r.name)
		out.Symbols = append(out.Symbols, sym)
	}
}

func (p *RustParser) extractMacros(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reMacro.FindAllSubmatchIndex(ctx.content, -1) {
		name := string(ctx.content[m[4]:m[5]])
		end := findMacroEnd(ctx.content, m[1])
		loc := p.location(ctx, m[0], m[1])
		loc.EndByte = end
		loc.EndLine, loc.EndCol = byteToLineColWith(ctx.lineStarts, ctx.content, end)
		vis := model.VisPrivate
		if bytes.Contains(ctx.content[max(0, m[0]-32):m[1]], []byte("macro_export")) {
			vis = model.VisPublic
		}
		out.Symbols = append(out.Symbols, model.SymbolDef{
			Name:       name,
			ScopedName: joinNonEmpty(ctx.filePfx, name),
			Kind:       model.KindMacro,
			Location:   loc,
			Signature:  "macro_rules! " + name,
			Visibility: vis,
			Body:       string(ctx.content[m[0]:end]),
		})
	}
}

func (p *RustParser) extractImports(ctx *parseCtx, out *model.ParseOutput) {
	for _, m := range reUse.FindAllSubmatchIndex(ctx.content, -1) {
		raw := strings.TrimSpace(string(ctx.content[m[6]:m[7]]))
		isPub := strings.Contains(string(ctx.content[m[4]:m[5]]), "pub")
		loc := p.location(ctx, m[0], m[1])
		for _, imp := range splitUsePaths(raw) {
			out.Imports = append(out.Imports, model.ImportInfo{
				RawPath:    imp.path,
				Alias:      imp.alias,
				IsGlob:     imp.glob,
				IsReexport: isPub,
				Location:   loc,
			})
		}
	}
}

// --- call extraction --------------------------------------------------

func (p *RustParser) extractCalls(ctx *parseCtx, out *model.ParseOutput) {
	callable := make([]model.SymbolDef, 0, len(out.Symbols))
	for _, s := range out.Symbols {
		if s.Kind == model.KindFunction || s.Kind == model.KindMethod {
			callable = append(callable, s)
		}
	}
	sort.Slice(callable, func(i, j int) bool {
		return callable[i].Location.StartByte < callable[j].Location.StartByte
	})

	for _, m := range reCall.FindAllSubmatchIndex(ctx.content, -1) {
		name := string(ctx.content[m[2]:m[3]])
		if rustKeywords[name] {
			continue
		}
		if m[4] != -1 {
			continue // macro invocation: name!(...)
		}
		caller := enclosingCallable(callable, m[2])
		if caller == "" {
			continue
		}
		loc := p.location(ctx, m[2], m[3])
		out.Calls = append(out.Calls, model.CallEdge{
			CallerScoped: caller,
			CalleeName:   name,
			Location:     loc,
		})
	}
}

func enclosingCallable(callable []model.SymbolDef, offset int) string {
	best := ""
	bestSpan := -1
	for _, s := range callable {
		if offset >= s.Location.StartByte && offset < s.Location.EndByte {
			span := s.Location.EndByte - s.Location.StartByte
			if bestSpan == -1 || span < bestSpan {
				best = s.ScopedName
				bestSpan = span
			}
		}
	}
	return best
}

// --- shared helpers -----------------------------------------------------

func (p *RustParser) buildSymbol(ctx *parseCtx, kind model.SymbolKind, name string, start, declEnd int, sig string) model.SymbolDef {
	end := findBlockEnd(ctx.content, declEnd)
	loc := p.location(ctx, start, end)
	scope := ctx.filePfx
	if s := enclosingModNames(ctx.mods, start); s != "" {
		scope = joinNonEmpty(scope, s)
	}
	return model.SymbolDef{
		Name:       name,
		ScopedName: joinNonEmpty(scope, name),
		Kind:       kind,
		Location:   loc,
		Signature:  sig,
		Visibility: visibilityOf(string(ctx.content[start:declEnd])),
		Attributes: attributesBefore(ctx.content, start),
		Body:       string(ctx.content[start:end]),
	}
}

func (p *RustParser) location(ctx *parseCtx, start, end int) model.Location {
	sl, sc := byteToLineColWith(ctx.lineStarts, ctx.content, start)
	el, ec := byteToLineColWith(ctx.lineStarts, ctx.content, end)
	return model.Location{
		Path: ctx.path, StartByte: start, EndByte: end,
		StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec,
	}
}

func byteToLineColWith(lineStarts []int, content []byte, offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	i := sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	lineStart := lineStarts[i]
	col = utf8.RuneCount(content[lineStart:offset]) + 1
	return i + 1, col
}

func buildLineStarts(content []byte) []int {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func modulePathFromPath(relPath string) string {
	dir := filepath.Dir(filepath.ToSlash(relPath))
	if dir == "." || dir == "" {
		return ""
	}
	return strings.ReplaceAll(dir, "/", "::")
}

func joinNonEmpty(parts ...string) string {
	var nonEmpty []string
	for _, s := range parts {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "::")
}

func indentLen(content []byte, m []int) int {
	return m[3] - m[2]
}

func visibilityOf(declaration string) model.Visibility {
	if idx := strings.Index(declaration, "pub("); idx != -1 {
		return model.VisRestricted
	}
	if strings.Contains(declaration, "pub") {
		return model.VisPublic
	}
	return model.VisPrivate
}

func cleanParams(params string) string {
	parts := strings.Split(params, ",")
	var cleaned []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "self", "&self", "&mut self", "mut self":
			continue
		}
		if strings.HasPrefix(part, "self:") {
			continue
		}
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return strings.Join(cleaned, ", ")
}

func attributesBefore(content []byte, symbolStart int) []string {
	lineStarts := buildLineStarts(content)
	symLine, _ := byteToLineColWith(lineStarts, content, symbolStart)
	lines := bytes.Split(content, []byte("\n"))

	var attrs []string
	for i := symLine - 2; i >= 0; i-- {
		if i >= len(lines) {
			continue
		}
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			break
		}
		if !bytes.HasPrefix(line, []byte("#[")) {
			if bytes.HasPrefix(line, []byte("///")) || bytes.HasPrefix(line, []byte("//!")) {
				continue
			}
			break
		}
		attr := strings.TrimSuffix(strings.TrimPrefix(string(line), "#["), "]")
		attrs = append([]string{attr}, attrs...)
	}
	return attrs
}

func findModRegions(content []byte) []region {
	var regions []region
	for _, m := range reMod.FindAllSubmatchIndex(content, -1) {
		name := string(content[m[6]:m[7]])
		braceStart := m[1] - 1 // reMod consumes the opening brace
		end := findMatchingBrace(content, braceStart)
		if end == -1 {
			end = len(content)
		}
		regions = append(regions, region{name: name, start: m[0], end: end})
	}
	return regions
}

func findImplRegions(content []byte) []region {
	var regions []region
	for _, m := range reImpl.FindAllSubmatchIndex(content, -1) {
		typeName := string(content[m[6]:m[7]])
		braceStart := bytes.IndexByte(content[m[1]:], '{')
		if braceStart == -1 {
			continue
		}
		braceStart += m[1]
		end := findMatchingBrace(content, braceStart)
		if end == -1 {
			continue
		}
		regions = append(regions, region{name: typeName, start: m[0], end: end})
	}
	return regions
}

// enclosingModNames returns the "::"-joined chain of mod { } blocks that
// contain offset, outermost first.
func enclosingModNames(mods []region, offset int) string {
	var names []string
	for _, r := range mods {
		if offset > r.start && offset < r.end {
			names = append(names, r.name)
		}
	}
	// mods is produced by a single forward regex scan, so outer blocks are
	// always found before the inner blocks they contain.
	return strings.Join(names, "::")
}

func findBlockEnd(content []byte, startOffset int) int {
	braceIdx := bytes.IndexByte(content[min(startOffset, len(content)):], '{')
	if braceIdx == -1 {
		if semiIdx := bytes.IndexByte(content[min(startOffset, len(content)):], ';'); semiIdx != -1 {
			return startOffset + semiIdx + 1
		}
		return startOffset
	}
	braceStart := startOffset + braceIdx
	end := findMatchingBrace(content, braceStart)
	if end == -1 {
		return startOffset
	}
	return end + 1
}

func findMacroEnd(content []byte, startOffset int) int {
	bracePos := -1
	var openC, closeC byte
	for i := startOffset; i < len(content); i++ {
		switch content[i] {
		case '{':
			bracePos, openC, closeC = i, '{', '}'
		case '(':
			bracePos, openC, closeC = i, '(', ')'
		case '[':
			bracePos, openC, closeC = i, '[', ']'
		}
		if bracePos != -1 {
			break
		}
	}
	if bracePos == -1 {
		return startOffset
	}
	depth := 1
	for i := bracePos + 1; i < len(content); i++ {
		switch content[i] {
		case openC:
			depth++
		case closeC:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return startOffset
}

// findMatchingBrace finds the index of the '}' matching the '{' at
// openBracePos, tolerating string/char literals, raw strings, and
// line/block comments so brace counting doesn't get confused by braces
// that appear inside them.
func findMatchingBrace(content []byte, openBracePos int) int {
	if openBracePos < 0 || openBracePos >= len(content) || content[openBracePos] != '{' {
		return -1
	}
	depth := 1
	inString, inLineComment, inBlockComment, escaped := false, false, false, false

	for i := openBracePos + 1; i < len(content); i++ {
		c := content[i]

		if inLineComment {
			if c == '\n' {
				inLineComment = false
			}
			continue
		}
		if inBlockComment {
			if c == '*' && i+1 < len(content) && content[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		}
		if !inString && c == '/' && i+1 < len(content) {
			if content[i+1] == '/' {
				inLineComment = true
				i++
				continue
			}
			if content[i+1] == '*' {
				inBlockComment = true
				i++
				continue
			}
		}
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if !inString && c == '\'' {
			if i+2 < len(content) {
				if content[i+1] == '\\' {
					for j := i + 2; j < len(content) && j < i+8; j++ {
						if content[j] == '\'' {
							i = j
							break
						}
					}
				} else if content[i+2] == '\'' {
					i += 2
				}
			}
			continue
		}
		if !inString && c == '"' {
			inString = true
			continue
		}
		if inString && c == '"' {
			inString = false
			continue
		}
		if inString {
			continue
		}
		if c == 'r' && i+1 < len(content) && content[i+1] == '#' {
			hashCount := 0
			for j := i + 1; j < len(content) && content[j] == '#'; j++ {
				hashCount++
			}
			if i+hashCount+1 < len(content) && content[i+hashCount+1] == '"' {
				closePattern := make([]byte, hashCount+1)
				closePattern[0] = '"'
				for j := 1; j <= hashCount; j++ {
					closePattern[j] = '#'
				}
				if closeIdx := bytes.Index(content[i+hashCount+2:], closePattern); closeIdx != -1 {
					i = i + hashCount + 2 + closeIdx + len(closePattern) - 1
					continue
				}
			}
		}
		if c == '{' {
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type useImport struct {
	path  string
	alias string
	glob  bool
}

// splitUsePaths expands a `use` statement's path expression (after `use `
// and before the trailing `;`) into one or more imports, handling a single
// level of brace grouping (`a::b::{c, d as e, *}`).
func splitUsePaths(raw string) []useImport {
	raw = strings.TrimSpace(raw)
	braceIdx := strings.Index(raw, "{")
	if braceIdx == -1 {
		return []useImport{parseUseSegment(raw)}
	}
	prefix := strings.TrimSuffix(raw[:braceIdx], "::")
	closeIdx := strings.LastIndex(raw, "}")
	if closeIdx == -1 || closeIdx < braceIdx {
		return []useImport{parseUseSegment(raw)}
	}
	inner := raw[braceIdx+1 : closeIdx]
	var out []useImport
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		seg := parseUseSegment(part)
		if prefix != "" && !seg.glob {
			seg.path = prefix + "::" + seg.path
		} else if prefix != "" {
			seg.path = prefix
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return []useImport{parseUseSegment(prefix)}
	}
	return out
}

func parseUseSegment(seg string) useImport {
	seg = strings.TrimSpace(seg)
	if seg == "*" || strings.HasSuffix(seg, "::*") {
		return useImport{path: strings.TrimSuffix(seg, "::*"), glob: true}
	}
	if idx := strings.Index(seg, " as "); idx != -1 {
		return useImport{path: strings.TrimSpace(seg[:idx]), alias: strings.TrimSpace(seg[idx+4:])}
	}
	return useImport{path: seg}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ensure interface satisfaction at compile time.
var _ Parser = (*RustParser)(nil)
