// parser.go — ordered regex pattern table (spec.md §4.3). Patterns are
// attempted in order; first match wins. More specific patterns precede
// more general ones, matching the teacher's own ordered-rule-table
// philosophy for its token classifier (lexer.go).
package vyra

import (
	"regexp"
	"strings"
)

// Parser turns a BlockNode forest into a top-level statement list. It
// tracks declared list names across the whole program (a forward scan) so
// that `Add X to Y` can be disambiguated into list-append vs. arithmetic
// on the second, real parsing pass.
type Parser struct {
	declaredLists map[string]bool
}

// NewParser creates a Parser ready to run its two passes over blocks.
func NewParser() *Parser {
	return &Parser{declaredLists: map[string]bool{}}
}

// ParseProgram runs the declared-list prescan then parses the full
// statement tree.
func (p *Parser) ParseProgram(blocks []*BlockNode) ([]Stmt, error) {
	p.scanDeclaredLists(blocks)
	return p.parseBlocks(blocks)
}

// scanDeclaredLists walks the whole tree looking for list-creation
// sentences, recording the declared name before any real parsing happens.
func (p *Parser) scanDeclaredLists(blocks []*BlockNode) {
	for _, b := range blocks {
		if m := reCreateList.FindStringSubmatch(b.Sent.Text); m != nil {
			p.declaredLists[m[1]] = true
		} else if m := reCreateEmptyList.FindStringSubmatch(b.Sent.Text); m != nil {
			p.declaredLists[m[1]] = true
		}
		p.scanDeclaredLists(b.Children)
	}
}

func (p *Parser) parseBlocks(blocks []*BlockNode) ([]Stmt, error) {
	var out []Stmt
	i := 0
	for i < len(blocks) {
		stmt, consumed, err := p.parseOne(blocks, i)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
		i += consumed
	}
	return out, nil
}

// --- pattern table -------------------------------------------------------

var (
	reSet            = regexp.MustCompile(`(?i)^(?:Set|Store|Save)\s+(\w+)\s+(?:to|as)\s+(.+)$`)
	reCreateVar      = regexp.MustCompile(`(?i)^Create a variable called\s+(\w+)\s+with value\s+(.+)$`)
	reArithToTarget  = regexp.MustCompile(`(?i)^(Add|Subtract|Multiply|Divide)\s+(.+?)\s+and\s+(.+?)\s+and store the result in\s+(\w+)$`)
	reAddTo          = regexp.MustCompile(`(?i)^Add\s+(.+?)\s+to\s+(\w+)$`)
	reSubFrom        = regexp.MustCompile(`(?i)^Subtract\s+(.+?)\s+from\s+(\w+)$`)
	reMultiplyBy     = regexp.MustCompile(`(?i)^Multiply\s+(\w+)\s+by\s+(.+)$`)
	reDivideBy       = regexp.MustCompile(`(?i)^Divide\s+(\w+)\s+by\s+(.+?)(?:\s+and store(?: it| the result)? in\s+(\w+))?$`)
	reIncrement      = regexp.MustCompile(`(?i)^Increment\s+(\w+)$`)
	reDecrement      = regexp.MustCompile(`(?i)^Decrement\s+(\w+)$`)
	reDisplay        = regexp.MustCompile(`(?i)^(?:Display|Show|Print|Say)\s+(.+)$`)
	reAskStore       = regexp.MustCompile(`(?i)^Ask the user for\s+(.+?)(?:,\s*saying\s+(.+))?$`)
	reAskCalled      = regexp.MustCompile(`(?i)^Ask the user for\s+.+?\s+called\s+(\w+)$`)
	reGetNumber      = regexp.MustCompile(`(?i)^Get a number from the user and store (?:it|the result) in\s+(\w+)$`)
	reIfBlock        = regexp.MustCompile(`(?i)^If\s+(.+)$`)
	reElifBlock      = regexp.MustCompile(`(?i)^Otherwise if\s+(.+)$`)
	reElseBlock      = regexp.MustCompile(`(?i)^Otherwise$`)
	reInlineIf       = regexp.MustCompile(`(?i)^If\s+(.+?),\s*(.+)$`)
	reInlineElse     = regexp.MustCompile(`(?i)^Otherwise\s+(.+)$`)
	reWhile          = regexp.MustCompile(`(?i)^While\s+(.+)$`)
	reRepeat         = regexp.MustCompile(`(?i)^Repeat\s+(.+?)\s+times$`)
	reForEach        = regexp.MustCompile(`(?i)^For each\s+(\w+)\s+in\s+(.+)$`)
	reBreak          = regexp.MustCompile(`(?i)^(?:Break|Stop the loop)$`)
	reContinue       = regexp.MustCompile(`(?i)^(?:Continue|Skip to the next iteration|Continue to next iteration)$`)
	reCreateList     = regexp.MustCompile(`(?i)^Create a list called\s+(\w+)\s+with values\s+(.+)$`)
	reCreateEmptyList = regexp.MustCompile(`(?i)^Create an empty list called\s+(\w+)$`)
	reFuncDef1       = regexp.MustCompile(`(?i)^Create function\s+(\w+)\s+that takes\s+(.+)$`)
	reFuncDef0       = regexp.MustCompile(`(?i)^Create function\s+(\w+)$`)
	reFuncDef2       = regexp.MustCompile(`(?i)^Define function\s+(\w+)\s+with parameters\s+(.+)$`)
	reCall           = regexp.MustCompile(`(?i)^Call\s+(\w+)(?:\s+with\s+(.+?))?(?:\s+and store (?:the result )?in\s+(\w+))?$`)
	reReturnExpr     = regexp.MustCompile(`(?i)^Return\s+(.+)$`)
	reReturnBare     = regexp.MustCompile(`(?i)^Return$`)
	reReadFile       = regexp.MustCompile(`(?i)^Read (?:the )?file\s+(.+?)\s+into\s+(\w+)$`)
	reWriteFile      = regexp.MustCompile(`(?i)^Write\s+(.+?)\s+to (?:the )?file\s+(.+)$`)
	reAppendFile     = regexp.MustCompile(`(?i)^Append\s+(.+?)\s+to (?:the )?file\s+(.+)$`)
)

// parseOne parses the sentence/block at index i and returns the resulting
// statement together with how many sibling entries it consumed: 1, except
// that a block If also consumes its "Otherwise if"/"Otherwise" blocks and an
// inline If consumes a following "Otherwise ..." sentence at the same
// indentation.
func (p *Parser) parseOne(blocks []*BlockNode, i int) (Stmt, int, error) {
	b := blocks[i]
	text := b.Sent.Text
	pos := b.Sent.Pos

	switch {
	case b.Sent.Term == ':' && reIfBlock.MatchString(text):
		return p.parseIfBlock(blocks, i)
	case b.Sent.Term == ':' && reWhile.MatchString(text):
		m := reWhile.FindStringSubmatch(text)
		cond, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, 0, err
		}
		body, err := p.parseBlocks(b.Children)
		if err != nil {
			return nil, 0, err
		}
		return &While{base: base{pos}, Cond: cond, Body: body}, 1, nil
	case b.Sent.Term == ':' && reRepeat.MatchString(text):
		m := reRepeat.FindStringSubmatch(text)
		count, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, 0, err
		}
		body, err := p.parseBlocks(b.Children)
		if err != nil {
			return nil, 0, err
		}
		return &Repeat{base: base{pos}, Count: count, Body: body}, 1, nil
	case b.Sent.Term == ':' && reForEach.MatchString(text):
		m := reForEach.FindStringSubmatch(text)
		seq, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, 0, err
		}
		body, err := p.parseBlocks(b.Children)
		if err != nil {
			return nil, 0, err
		}
		return &ForEach{base: base{pos}, Var: m[1], Seq: seq, Body: body}, 1, nil
	case b.Sent.Term == ':' && (reFuncDef1.MatchString(text) || reFuncDef2.MatchString(text) || reFuncDef0.MatchString(text)):
		return p.parseFuncDef(b, pos)

	case b.Sent.Term == '.' && reInlineIf.MatchString(text):
		m := reInlineIf.FindStringSubmatch(text)
		cond, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, 0, err
		}
		thenStmt, err := p.parseSimple(m[2], pos, '.')
		if err != nil {
			return nil, 0, err
		}
		node := &If{base: base{pos}, Cond: cond, Then: []Stmt{thenStmt}}
		if i+1 < len(blocks) && blocks[i+1].Sent.Indent == b.Sent.Indent && reInlineElse.MatchString(blocks[i+1].Sent.Text) {
			em := reInlineElse.FindStringSubmatch(blocks[i+1].Sent.Text)
			elseStmt, err := p.parseSimple(em[1], blocks[i+1].Sent.Pos, '.')
			if err != nil {
				return nil, 0, err
			}
			node.Else = []Stmt{elseStmt}
			return node, 2, nil
		}
		return node, 1, nil
	}

	stmt, err := p.parseSimple(text, pos, b.Sent.Term)
	if err != nil {
		return nil, 0, err
	}
	return stmt, 1, nil
}

// parseIfBlock parses the If block at index i together with the sibling
// "Otherwise if" and "Otherwise" blocks that follow it, and returns how many
// sibling entries it consumed.
func (p *Parser) parseIfBlock(blocks []*BlockNode, i int) (Stmt, int, error) {
	b := blocks[i]
	m := reIfBlock.FindStringSubmatch(b.Sent.Text)
	cond, err := ParseExpr(m[1], b.Sent.Pos)
	if err != nil {
		return nil, 0, err
	}
	then, err := p.parseBlocks(b.Children)
	if err != nil {
		return nil, 0, err
	}
	node := &If{base: base{b.Sent.Pos}, Cond: cond, Then: then}

	j := i + 1
	for j < len(blocks) && reElifBlock.MatchString(blocks[j].Sent.Text) {
		em := reElifBlock.FindStringSubmatch(blocks[j].Sent.Text)
		ec, err := ParseExpr(em[1], blocks[j].Sent.Pos)
		if err != nil {
			return nil, 0, err
		}
		ebody, err := p.parseBlocks(blocks[j].Children)
		if err != nil {
			return nil, 0, err
		}
		node.Elifs = append(node.Elifs, ElifClause{Cond: ec, Body: ebody})
		j++
	}
	if j < len(blocks) && reElseBlock.MatchString(blocks[j].Sent.Text) {
		ebody, err := p.parseBlocks(blocks[j].Children)
		if err != nil {
			return nil, 0, err
		}
		node.Else = ebody
		j++
	}
	return node, j - i, nil
}

func (p *Parser) parseFuncDef(b *BlockNode, pos Pos) (Stmt, int, error) {
	var name string
	var paramsText string
	if m := reFuncDef1.FindStringSubmatch(b.Sent.Text); m != nil {
		name, paramsText = m[1], m[2]
	} else if m := reFuncDef2.FindStringSubmatch(b.Sent.Text); m != nil {
		name, paramsText = m[1], m[2]
	} else if m := reFuncDef0.FindStringSubmatch(b.Sent.Text); m != nil {
		name = m[1]
	}
	params := splitParams(paramsText)
	body, err := p.parseBlocks(b.Children)
	if err != nil {
		return nil, 0, err
	}
	return &FuncDef{base: base{pos}, Name: name, Params: params, Body: body}, 1, nil
}

func splitParams(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, " and ", ", ")
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, pp := range parts {
		pp = strings.TrimSpace(pp)
		if pp != "" {
			out = append(out, pp)
		}
	}
	return out
}

// parseSimple handles every non-block (no nested body) sentence form. The
// inline If is recognized in parseOne, which calls parseSimple for its
// then/else statements.
func (p *Parser) parseSimple(text string, pos Pos, term byte) (Stmt, error) {
	switch {
	case reSet.MatchString(text):
		m := reSet.FindStringSubmatch(text)
		v, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{pos}, Name: m[1], Value: v}, nil

	case reCreateVar.MatchString(text):
		m := reCreateVar.FindStringSubmatch(text)
		v, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{pos}, Name: m[1], Value: v}, nil

	case reCreateEmptyList.MatchString(text):
		m := reCreateEmptyList.FindStringSubmatch(text)
		return &Assign{base: base{pos}, Name: m[1], Value: &ListLit{base: base{pos}}}, nil

	case reCreateList.MatchString(text):
		m := reCreateList.FindStringSubmatch(text)
		listExpr, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{pos}, Name: m[1], Value: listExpr}, nil

	case reArithToTarget.MatchString(text):
		m := reArithToTarget.FindStringSubmatch(text)
		op := arithVerbOp(m[1])
		x, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		y, err := ParseExpr(m[3], pos)
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{pos}, Name: m[4], Value: &Binary{base: base{pos}, Op: op, X: x, Y: y}}, nil

	case reAddTo.MatchString(text):
		m := reAddTo.FindStringSubmatch(text)
		valExpr, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, err
		}
		target := m[2]
		if p.declaredLists[target] {
			return &AddToList{base: base{pos}, Value: valExpr, Name: target}, nil
		}
		return &Assign{base: base{pos}, Name: target, Value: &Binary{base: base{pos}, Op: "+", X: &Ident{base: base{pos}, Name: target}, Y: valExpr}}, nil

	case reSubFrom.MatchString(text):
		m := reSubFrom.FindStringSubmatch(text)
		valExpr, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, err
		}
		target := m[2]
		return &Assign{base: base{pos}, Name: target, Value: &Binary{base: base{pos}, Op: "-", X: &Ident{base: base{pos}, Name: target}, Y: valExpr}}, nil

	case reMultiplyBy.MatchString(text):
		m := reMultiplyBy.FindStringSubmatch(text)
		target := m[1]
		valExpr, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{pos}, Name: target, Value: &Binary{base: base{pos}, Op: "*", X: &Ident{base: base{pos}, Name: target}, Y: valExpr}}, nil

	case reDivideBy.MatchString(text):
		m := reDivideBy.FindStringSubmatch(text)
		target := m[1]
		valExpr, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		dest := target
		if m[3] != "" {
			dest = m[3]
		}
		return &Assign{base: base{pos}, Name: dest, Value: &Binary{base: base{pos}, Op: "/", X: &Ident{base: base{pos}, Name: target}, Y: valExpr}}, nil

	case reIncrement.MatchString(text):
		m := reIncrement.FindStringSubmatch(text)
		return &Assign{base: base{pos}, Name: m[1], Value: &Binary{base: base{pos}, Op: "+", X: &Ident{base: base{pos}, Name: m[1]}, Y: &Lit{base: base{pos}, Value: IntVal(1)}}}, nil

	case reDecrement.MatchString(text):
		m := reDecrement.FindStringSubmatch(text)
		return &Assign{base: base{pos}, Name: m[1], Value: &Binary{base: base{pos}, Op: "-", X: &Ident{base: base{pos}, Name: m[1]}, Y: &Lit{base: base{pos}, Value: IntVal(1)}}}, nil

	case reDisplay.MatchString(text):
		m := reDisplay.FindStringSubmatch(text)
		exprs, err := parseCommaExprList(m[1], pos)
		if err != nil {
			return nil, err
		}
		return &Display{base: base{pos}, Values: exprs}, nil

	case reGetNumber.MatchString(text):
		m := reGetNumber.FindStringSubmatch(text)
		return &Input{base: base{pos}, Name: m[1], Kind: "number"}, nil

	case reAskCalled.MatchString(text):
		m := reAskCalled.FindStringSubmatch(text)
		return &Input{base: base{pos}, Name: m[1], Kind: "text"}, nil

	case reAskStore.MatchString(text):
		m := reAskStore.FindStringSubmatch(text)
		name := strings.TrimSpace(m[1])
		var prompt Expr
		if m[2] != "" {
			e, err := ParseExpr(m[2], pos)
			if err != nil {
				return nil, err
			}
			prompt = e
		}
		return &Input{base: base{pos}, Name: name, Prompt: prompt, Kind: "text"}, nil

	case reBreak.MatchString(text):
		return &Break{base: base{pos}}, nil

	case reContinue.MatchString(text):
		return &Continue{base: base{pos}}, nil

	case reReturnBare.MatchString(text):
		return &Return{base: base{pos}}, nil

	case reReturnExpr.MatchString(text):
		m := reReturnExpr.FindStringSubmatch(text)
		v, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, err
		}
		return &Return{base: base{pos}, Value: v}, nil

	case reCall.MatchString(text):
		m := reCall.FindStringSubmatch(text)
		args, err := parseCallArgList(m[2], pos)
		if err != nil {
			return nil, err
		}
		call := &Call{base: base{pos}, Name: m[1], Args: args}
		if m[3] != "" {
			return &CallAssign{base: base{pos}, Call: call, Target: m[3]}, nil
		}
		return &CallStmt{base: base{pos}, Call: call}, nil

	case reReadFile.MatchString(text):
		m := reReadFile.FindStringSubmatch(text)
		pathExpr, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, err
		}
		return &ReadFileStmt{base: base{pos}, Path: pathExpr, Name: m[2]}, nil

	case reAppendFile.MatchString(text):
		m := reAppendFile.FindStringSubmatch(text)
		contentExpr, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, err
		}
		pathExpr, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		return &WriteFileStmt{base: base{pos}, Content: contentExpr, Path: pathExpr, Append: true}, nil

	case reWriteFile.MatchString(text):
		m := reWriteFile.FindStringSubmatch(text)
		contentExpr, err := ParseExpr(m[1], pos)
		if err != nil {
			return nil, err
		}
		pathExpr, err := ParseExpr(m[2], pos)
		if err != nil {
			return nil, err
		}
		return &WriteFileStmt{base: base{pos}, Content: contentExpr, Path: pathExpr}, nil

	default:
		return nil, &ParseError{Line: pos.Line, Col: pos.Col, Reason: "UnknownSentence", Msg: "unrecognized sentence", Sentence: text}
	}
}

func arithVerbOp(verb string) string {
	switch strings.ToLower(verb) {
	case "add":
		return "+"
	case "subtract":
		return "-"
	case "multiply":
		return "*"
	case "divide":
		return "/"
	default:
		return "+"
	}
}

// parseCommaExprList splits a top-level comma list (not inside parens or
// brackets) and parses each part as an expression.
func parseCommaExprList(s string, pos Pos) ([]Expr, error) {
	parts := splitTopLevelCommas(s)
	out := make([]Expr, 0, len(parts))
	for _, pp := range parts {
		e, err := ParseExpr(strings.TrimSpace(pp), pos)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// parseCallArgList parses "A and B" or "A, B" argument lists for Call.
func parseCallArgList(s string, pos Pos) ([]Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, " and ", ", ")
	return parseCommaExprList(s, pos)
}

func splitTopLevelCommas(s string) []string {
	var out []string
	depth := 0
	inStr := false
	var quote byte
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			if c == quote {
				inStr = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inStr = true
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}
