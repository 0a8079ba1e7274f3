package lang

import (
	"fmt"

	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/types"
)

// parser is a recursive-descent parser over a flat token stream,
// grounded in the teacher's pkg/compiler/parser.go: a position
// cursor, peek/advance/expect helpers, and one parse function per
// grammar production.
type parser struct {
	toks    []Token
	pos     int
	types   *types.Table
	typedef map[string]int // user typedef name -> underlying size, per isTypeName's doc comment
}

// Parse tokenises and parses src into an ast.Script.
func Parse(src string) (*ast.Script, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, types: types.NewTable(), typedef: make(map[string]int)}
	return p.parseScript()
}

func (p *parser) cur() Token  { return p.toks[p.pos] }
func (p *parser) at(k TokenKind) bool { return p.cur().Kind == k }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k TokenKind, what string) (Token, error) {
	if !p.at(k) {
		return Token{}, fmt.Errorf("line %d: expected %s, found %q", p.cur().Line, what, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *parser) parseScript() (*ast.Script, error) {
	script := &ast.Script{}
	if p.at(USE) {
		p.advance()
		name, err := p.expect(IDENTIFIER, "environment name")
		if err != nil {
			return nil, err
		}
		script.Env = name.Text
		if _, err := p.expect(SEMICOLON, "';'"); err != nil {
			return nil, err
		}
	}
	for !p.at(EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		script.Statements = append(script.Statements, s)
	}
	return script, nil
}

func (p *parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.at(RBRACE) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance() // '}'
	return stmts, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case TYPENAME:
		return p.parseDeclare()
	case TYPEDEF:
		return p.parseTypedef()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case DO:
		return p.parseDo()
	case FOR:
		return p.parseFor()
	case REPEAT:
		return p.parseRepeat()
	case LOOP:
		return p.parseLoop()
	case GOTO:
		return p.parseGoto()
	case DROP:
		return p.parseDrop()
	case CALLASM:
		return p.parseCallAsm()
	case PURGE:
		p.advance()
		_, err := p.expect(SEMICOLON, "';'")
		return ast.Statement{Kind: ast.Purge}, err
	case BREAK:
		p.advance()
		_, err := p.expect(SEMICOLON, "';'")
		return ast.Statement{Kind: ast.Break}, err
	case CONTINUE:
		p.advance()
		_, err := p.expect(SEMICOLON, "';'")
		return ast.Statement{Kind: ast.Continue}, err
	case NOOP:
		p.advance()
		_, err := p.expect(SEMICOLON, "';'")
		return ast.Statement{Kind: ast.Noop}, err
	case IDENTIFIER:
		if size, ok := p.typedef[p.cur().Text]; ok {
			return p.parseDeclareTypedef(size)
		}
		return p.parseIdentifierStatement()
	default:
		return ast.Statement{}, fmt.Errorf("line %d: unexpected token %q", p.cur().Line, p.cur().Text)
	}
}

func (p *parser) sizeOf(typeTok Token) (int, error) {
	ty, ok := p.types.Lookup(typeTok.Text)
	if !ok {
		return 0, fmt.Errorf("line %d: unknown type %q", typeTok.Line, typeTok.Text)
	}
	return ty.Size, nil
}

func (p *parser) parseDeclare() (ast.Statement, error) {
	typeTok := p.advance()
	size, err := p.sizeOf(typeTok)
	if err != nil {
		return ast.Statement{}, err
	}
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return ast.Statement{}, err
	}
	if p.at(SEMICOLON) {
		p.advance()
		return ast.Statement{Kind: ast.Declare, Identifier: name.Text, Size: size}, nil
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return ast.Statement{}, err
	}
	if p.at(INTEGER) {
		v := p.advance()
		if _, err := p.expect(SEMICOLON, "';'"); err != nil {
			return ast.Statement{}, err
		}
		return ast.Statement{Kind: ast.DeclareAssign, Identifier: name.Text, Size: size, Value: v.Num}, nil
	}
	src, err := p.expect(IDENTIFIER, "initializer")
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(SEMICOLON, "';'"); err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.DeclareCopy, Identifier: name.Text, Size: size, RHS: ast.Var(src.Text)}, nil
}

func (p *parser) parseTypedef() (ast.Statement, error) {
	p.advance() // 'typedef'
	base, err := p.expect(TYPENAME, "base type")
	if err != nil {
		return ast.Statement{}, err
	}
	name, err := p.expect(IDENTIFIER, "typedef name")
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(SEMICOLON, "';'"); err != nil {
		return ast.Statement{}, err
	}
	size, err := p.sizeOf(base)
	if err != nil {
		return ast.Statement{}, err
	}
	p.typedef[name.Text] = size
	return ast.Statement{Kind: ast.Noop, Identifier: name.Text, Size: size}, nil
}

// parseDeclareTypedef parses a declaration whose type name is a user
// typedef rather than a builtin TYPENAME token; the lexer has no
// notion of typedefs (see isTypeName's doc comment), so this mirrors
// parseDeclare but takes the width from the parser's typedef table
// instead of types.Table.
func (p *parser) parseDeclareTypedef(size int) (ast.Statement, error) {
	p.advance() // the typedef name
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return ast.Statement{}, err
	}
	if p.at(SEMICOLON) {
		p.advance()
		return ast.Statement{Kind: ast.Declare, Identifier: name.Text, Size: size}, nil
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return ast.Statement{}, err
	}
	if p.at(INTEGER) {
		v := p.advance()
		if _, err := p.expect(SEMICOLON, "';'"); err != nil {
			return ast.Statement{}, err
		}
		return ast.Statement{Kind: ast.DeclareAssign, Identifier: name.Text, Size: size, Value: v.Num}, nil
	}
	src, err := p.expect(IDENTIFIER, "initializer")
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(SEMICOLON, "';'"); err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.DeclareCopy, Identifier: name.Text, Size: size, RHS: ast.Var(src.Text)}, nil
}

// parseIdentifierStatement disambiguates the four statement shapes
// that start with a bare identifier: a label definition (name:), a
// primitive call (name(...)), and the two assignment forms
// (name = value; / name = lhs OP rhs;).
func (p *parser) parseIdentifierStatement() (ast.Statement, error) {
	name := p.advance()
	switch p.cur().Kind {
	case COLON:
		p.advance()
		return ast.Statement{Kind: ast.Label, Identifier: name.Text}, nil
	case LPAREN:
		args, err := p.parseArgList()
		if err != nil {
			return ast.Statement{}, err
		}
		if _, err := p.expect(SEMICOLON, "';'"); err != nil {
			return ast.Statement{}, err
		}
		return ast.Statement{Kind: ast.Call, Identifier: name.Text, Args: args}, nil
	case ASSIGN:
		p.advance()
		return p.parseAssignRHS(name.Text)
	default:
		return ast.Statement{}, fmt.Errorf("line %d: unexpected token %q after identifier %q", p.cur().Line, p.cur().Text, name.Text)
	}
}

func (p *parser) parseAssignRHS(dest string) (ast.Statement, error) {
	operand, err := p.parseOperand()
	if err != nil {
		return ast.Statement{}, err
	}
	if op, ok := p.tryOp(); ok {
		rhs, err := p.parseOperand()
		if err != nil {
			return ast.Statement{}, err
		}
		if _, err := p.expect(SEMICOLON, "';'"); err != nil {
			return ast.Statement{}, err
		}
		return p.buildOperation(dest, operand, op, rhs)
	}
	if _, err := p.expect(SEMICOLON, "';'"); err != nil {
		return ast.Statement{}, err
	}
	switch operand.Kind {
	case ast.ArgNum:
		return ast.Statement{Kind: ast.Assign, Identifier: dest, Value: operand.Num}, nil
	default:
		return ast.Statement{Kind: ast.Copy, LHS: dest, RHS: operand}, nil
	}
}

// buildOperation assembles an Operation statement from a parsed
// `lhs OP rhs` triple used as an assignment's right-hand side. lhs
// must name a variable; evscript's flat operator grammar has no
// general expression trees (spec §3's Statement carries LHS/RHS as
// plain operand names, not a nested Expr).
func (p *parser) buildOperation(dest string, lhs ast.Argument, op ast.Op, rhs ast.Argument) (ast.Statement, error) {
	if lhs.Kind != ast.ArgVar {
		return ast.Statement{}, fmt.Errorf("left operand of an operator must be a variable")
	}
	return ast.Statement{
		Kind:       ast.Operation,
		Identifier: dest,
		LHS:        lhs.Name,
		RHS:        rhs,
		Op:         op,
		IsConst:    rhs.Kind == ast.ArgNum,
	}, nil
}

// parseOperand parses a single INTEGER or IDENTIFIER as an Argument.
func (p *parser) parseOperand() (ast.Argument, error) {
	switch p.cur().Kind {
	case INTEGER:
		t := p.advance()
		return ast.Num(t.Num), nil
	case IDENTIFIER:
		t := p.advance()
		return ast.Var(t.Text), nil
	default:
		return ast.Argument{}, fmt.Errorf("line %d: expected a value, found %q", p.cur().Line, p.cur().Text)
	}
}

func (p *parser) tryOp() (ast.Op, bool) {
	k := p.cur().Kind
	var op ast.Op
	switch k {
	case PLUS:
		op = ast.OpAdd
	case MINUS:
		op = ast.OpSub
	case STAR:
		op = ast.OpMul
	case SLASH:
		op = ast.OpDiv
	case AMP:
		op = ast.OpBAnd
	case PIPE:
		op = ast.OpBOr
	case AMPAMP:
		op = ast.OpAnd
	case PIPEPIPE:
		op = ast.OpOr
	case EQ:
		op = ast.OpEq
	case NEQ:
		op = ast.OpNe
	case LT:
		op = ast.OpLt
	case LTE:
		op = ast.OpLte
	case GT:
		op = ast.OpGt
	case GTE:
		op = ast.OpGte
	default:
		return 0, false
	}
	p.advance()
	return op, true
}

// parseCondition parses the parenthesised condition of an if/while/
// do/for clause into a Statement the conditional adapter (C6) can
// consume: a comparison becomes an Operation; a bare variable name
// becomes a Noop carrying Identifier, so C6 can use it directly as
// the branch operand without materialising a temporary.
func (p *parser) parseCondition() (ast.Statement, error) {
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return ast.Statement{}, err
	}
	lhs, err := p.parseOperand()
	if err != nil {
		return ast.Statement{}, err
	}
	if op, ok := p.tryOp(); ok {
		rhs, err := p.parseOperand()
		if err != nil {
			return ast.Statement{}, err
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return ast.Statement{}, err
		}
		if lhs.Kind != ast.ArgVar {
			return ast.Statement{}, fmt.Errorf("left operand of a condition must be a variable")
		}
		return ast.Statement{Kind: ast.Operation, LHS: lhs.Name, RHS: rhs, Op: op, IsConst: rhs.Kind == ast.ArgNum}, nil
	}
	if _, err := p.expect(RPAREN, "')'"); err != nil {
		return ast.Statement{}, err
	}
	if lhs.Kind != ast.ArgVar {
		return ast.Statement{}, fmt.Errorf("a bare condition must be a variable")
	}
	return ast.Statement{Kind: ast.Noop, Identifier: lhs.Name}, nil
}

func (p *parser) parseArgList() ([]ast.Argument, error) {
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Argument
	for !p.at(RPAREN) {
		if len(args) > 0 {
			if _, err := p.expect(COMMA, "','"); err != nil {
				return nil, err
			}
		}
		switch p.cur().Kind {
		case STRING:
			args = append(args, ast.Str(p.advance().Text))
		case INTEGER:
			args = append(args, ast.Num(p.advance().Num))
		case IDENTIFIER:
			args = append(args, ast.Var(p.advance().Text))
		default:
			return nil, fmt.Errorf("line %d: unexpected argument token %q", p.cur().Line, p.cur().Text)
		}
	}
	p.advance() // ')'
	return args, nil
}

func (p *parser) parseIf() (ast.Statement, error) {
	p.advance() // 'if'
	cond, err := p.parseCondition()
	if err != nil {
		return ast.Statement{}, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}
	s := ast.Statement{Kind: ast.If, Conditions: []ast.Statement{cond}, Statements: body}
	if p.at(ELSE) {
		p.advance()
		if p.at(IF) {
			elseIf, err := p.parseIf()
			if err != nil {
				return ast.Statement{}, err
			}
			s.ElseStatements = []ast.Statement{elseIf}
		} else {
			elseBody, err := p.parseBlock()
			if err != nil {
				return ast.Statement{}, err
			}
			s.ElseStatements = elseBody
		}
	}
	return s, nil
}

func (p *parser) parseWhile() (ast.Statement, error) {
	p.advance() // 'while'
	cond, err := p.parseCondition()
	if err != nil {
		return ast.Statement{}, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.While, Conditions: []ast.Statement{cond}, Statements: body}, nil
}

func (p *parser) parseDo() (ast.Statement, error) {
	p.advance() // 'do'
	body, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(WHILE, "'while'"); err != nil {
		return ast.Statement{}, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(SEMICOLON, "';'"); err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.Do, Conditions: []ast.Statement{cond}, Statements: body}, nil
}

func (p *parser) parseFor() (ast.Statement, error) {
	p.advance() // 'for'
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return ast.Statement{}, err
	}
	prologue, err := p.parseStatement() // consumes its own trailing ';'
	if err != nil {
		return ast.Statement{}, err
	}
	testLHS, err := p.parseOperand()
	if err != nil {
		return ast.Statement{}, err
	}
	var test ast.Statement
	if op, ok := p.tryOp(); ok {
		rhs, err := p.parseOperand()
		if err != nil {
			return ast.Statement{}, err
		}
		test, err = p.buildOperation("", testLHS, op, rhs)
		if err != nil {
			return ast.Statement{}, err
		}
		test.Identifier = ""
	} else {
		test = ast.Statement{Kind: ast.Noop, Identifier: testLHS.Name}
	}
	if _, err := p.expect(SEMICOLON, "';'"); err != nil {
		return ast.Statement{}, err
	}
	postName, err := p.expect(IDENTIFIER, "post-statement target")
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return ast.Statement{}, err
	}
	lhs, err := p.parseOperand()
	if err != nil {
		return ast.Statement{}, err
	}
	var post ast.Statement
	if op, ok := p.tryOp(); ok {
		rhs, err := p.parseOperand()
		if err != nil {
			return ast.Statement{}, err
		}
		post, err = p.buildOperation(postName.Text, lhs, op, rhs)
		if err != nil {
			return ast.Statement{}, err
		}
	} else {
		post = ast.Statement{Kind: ast.Copy, LHS: postName.Text, RHS: lhs}
	}
	if _, err := p.expect(RPAREN, "')'"); err != nil {
		return ast.Statement{}, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.For, Conditions: []ast.Statement{prologue, test, post}, Statements: body}, nil
}

func (p *parser) parseRepeat() (ast.Statement, error) {
	p.advance() // 'repeat'
	if _, err := p.expect(LPAREN, "'('"); err != nil {
		return ast.Statement{}, err
	}
	n, err := p.expect(INTEGER, "iteration count")
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(RPAREN, "')'"); err != nil {
		return ast.Statement{}, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.Repeat, Value: n.Num, Statements: body}, nil
}

func (p *parser) parseLoop() (ast.Statement, error) {
	p.advance() // 'loop'
	body, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.Loop, Statements: body}, nil
}

func (p *parser) parseGoto() (ast.Statement, error) {
	p.advance() // 'goto'
	name, err := p.expect(IDENTIFIER, "label name")
	if err != nil {
		return ast.Statement{}, err
	}
	_, err = p.expect(SEMICOLON, "';'")
	return ast.Statement{Kind: ast.Goto, Identifier: name.Text}, err
}

func (p *parser) parseDrop() (ast.Statement, error) {
	p.advance() // 'drop'
	name, err := p.expect(IDENTIFIER, "variable name")
	if err != nil {
		return ast.Statement{}, err
	}
	_, err = p.expect(SEMICOLON, "';'")
	return ast.Statement{Kind: ast.Drop, Identifier: name.Text}, err
}

func (p *parser) parseCallAsm() (ast.Statement, error) {
	p.advance() // 'callasm'
	text, err := p.expect(STRING, "assembler text")
	if err != nil {
		return ast.Statement{}, err
	}
	_, err = p.expect(SEMICOLON, "';'")
	return ast.Statement{Kind: ast.CallAsm, Args: []ast.Argument{ast.Str(text.Text)}}, err
}
