package parser

import (
	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/token"
)

// registerGrammar wires every prefix/infix parse function into the
// precedence-climbing tables, the Go analogue of the teacher's
// registerPrefix/registerInfix calls sprinkled across its expressions_*.go
// files.
func (p *Parser) registerGrammar() {
	p.prefixParseFns[token.IDENT_LOWER] = p.parseIdentOrCall
	p.prefixParseFns[token.IDENT_UPPER] = p.parseModuleRef
	p.prefixParseFns[token.INT] = p.parseIntLiteral
	p.prefixParseFns[token.FLOAT] = p.parseFloatLiteral
	p.prefixParseFns[token.STRING] = p.parseStringLiteral
	p.prefixParseFns[token.ATOM] = p.parseAtomLiteral
	p.prefixParseFns[token.LBRACE] = p.parseTupleLiteral
	p.prefixParseFns[token.LBRACKET] = p.parseListLiteral
	p.prefixParseFns[token.PERCENT_LBRACE] = p.parseMapLiteral
	p.prefixParseFns[token.LPAREN] = p.parseGroupedExpression
	p.prefixParseFns[token.MINUS] = p.parseUnaryMinus
	p.prefixParseFns[token.AMPERSAND] = p.parseCapture
	p.prefixParseFns[token.FN] = p.parseFnForm
	p.prefixParseFns[token.QUOTE] = p.parseQuoteForm
	p.prefixParseFns[token.CASE] = p.parseCaseForm
	p.prefixParseFns[token.COND] = p.parseCondForm
	p.prefixParseFns[token.DEFMODULE] = p.parseDefmoduleForm
	p.prefixParseFns[token.DEF] = p.parseDefForm
	p.prefixParseFns[token.IMPORT] = p.parseImportForm
	p.prefixParseFns[token.ALIAS] = p.parseAliasForm

	p.registerBinary(token.PLUS, "+", SUM)
	p.registerBinary(token.MINUS, "-", SUM)
	p.registerBinary(token.CONCAT, "++", SUM)
	p.registerBinary(token.ASTERISK, "*", PRODUCT)
	p.registerBinary(token.SLASH, "/", PRODUCT)
	p.registerBinary(token.EQ, "==", EQUALS)
	p.registerBinary(token.NOT_EQ, "!=", EQUALS)

	p.precedences[token.ASSIGN] = ASSIGN
	p.infixParseFns[token.ASSIGN] = p.parseAssignInfix

	p.precedences[token.PIPE_GT] = PIPE_GT
	p.infixParseFns[token.PIPE_GT] = p.parsePipeInfix

	p.precedences[token.DOT] = CALL
	p.infixParseFns[token.DOT] = p.parseDotInfix
}

// registerBinary wires an ordinary left-associative binary operator whose
// token lexeme matches the special-form name internal/compiler dispatches
// on (`+`, `-`, `++`, `*`, `/`, `==`, `!=`).
func (p *Parser) registerBinary(tt token.TokenType, opSym string, prec int) {
	p.precedences[tt] = prec
	p.infixParseFns[tt] = func(left ast.Node) ast.Node {
		meta := p.curMeta()
		p.nextToken()
		right := p.parseExpression(prec)
		return ast.Call(ast.SymOf(opSym), meta, ast.List([]ast.Node{left, right}))
	}
}

// parseIdentOrCall distinguishes a bare variable reference from an
// unqualified call by the presence of an immediately following '(':
// `v` is a :Var reference, `f(x)` is a bare-symbol-target call (the shape
// internal/kernel's finalize_module rewrites into a qualified dispatch
// when f names a sibling function in the enclosing module).
func (p *Parser) parseIdentOrCall() ast.Node {
	name := p.curToken.Lexeme
	meta := p.curMeta()
	p.nextToken()
	if p.curTokenIs(token.LPAREN) {
		args := p.parseCallArgs()
		return ast.Call(ast.SymOf(name), meta, ast.List(args))
	}
	return ast.Var(name, meta)
}

// parseModuleRef parses a single capitalized identifier as a module/alias
// name; this grammar does not support nested `Foo.Bar` module paths (see
// the package doc comment).
func (p *Parser) parseModuleRef() ast.Node {
	name := p.curToken.Lexeme
	p.nextToken()
	return ast.SymOf(name)
}

func (p *Parser) parseIntLiteral() ast.Node {
	v, _ := p.curToken.Literal.(int64)
	n := ast.Int(v)
	p.nextToken()
	return n
}

func (p *Parser) parseFloatLiteral() ast.Node {
	v, _ := p.curToken.Literal.(float64)
	n := ast.Real(v)
	p.nextToken()
	return n
}

func (p *Parser) parseStringLiteral() ast.Node {
	s, _ := p.curToken.Literal.(string)
	n := ast.Str(s)
	p.nextToken()
	return n
}

func (p *Parser) parseAtomLiteral() ast.Node {
	name, _ := p.curToken.Literal.(string)
	n := ast.SymOf(name)
	p.nextToken()
	return n
}

// parseCallArgs parses a parenthesized, comma-separated argument list;
// curToken must be '(' on entry, and is '(' consumed; the closing ')' is
// consumed before returning.
func (p *Parser) parseCallArgs() []ast.Node {
	p.nextToken() // consume '('
	p.skipNewlines()
	var args []ast.Node
	if p.curTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	args = append(args, p.parseExpression(ASSIGN))
	p.skipNewlines()
	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		p.skipNewlines()
		args = append(args, p.parseExpression(ASSIGN))
		p.skipNewlines()
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parseTupleLiteral() ast.Node {
	p.nextToken() // consume '{'
	p.skipNewlines()
	if p.curTokenIs(token.RBRACE) {
		p.nextToken()
		return ast.Tuple(nil)
	}
	var elems []ast.Node
	elems = append(elems, p.parseExpression(ASSIGN))
	p.skipNewlines()
	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		p.skipNewlines()
		elems = append(elems, p.parseExpression(ASSIGN))
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return ast.Tuple(elems)
}

// parseListLiteral parses `[e, e, ... | tail]`, desugaring any `| tail`
// suffix via buildConsList.
func (p *Parser) parseListLiteral() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume '['
	p.skipNewlines()
	if p.curTokenIs(token.RBRACKET) {
		p.nextToken()
		return ast.List(nil)
	}
	var elems []ast.Node
	elems = append(elems, p.parseExpression(ASSIGN))
	p.skipNewlines()
	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		p.skipNewlines()
		elems = append(elems, p.parseExpression(ASSIGN))
		p.skipNewlines()
	}
	var tail *ast.Node
	if p.curTokenIs(token.PIPE) {
		p.nextToken()
		p.skipNewlines()
		t := p.parseExpression(ASSIGN)
		tail = &t
		p.skipNewlines()
	}
	p.expect(token.RBRACKET)
	return buildConsList(elems, tail, meta)
}

// parseMapLiteral parses `%{key: value, ...}`: this grammar only supports
// the atom-keyed `key: value` shorthand, not the general `key => value`
// form.
func (p *Parser) parseMapLiteral() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume '%{'
	p.skipNewlines()
	if p.curTokenIs(token.RBRACE) {
		p.nextToken()
		return ast.Call(ast.SymOf("%{}"), meta, ast.List(nil))
	}
	var pairs []ast.Node
	pairs = append(pairs, p.parseMapPair())
	p.skipNewlines()
	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		p.skipNewlines()
		pairs = append(pairs, p.parseMapPair())
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return ast.Call(ast.SymOf("%{}"), meta, ast.List(pairs))
}

func (p *Parser) parseMapPair() ast.Node {
	if !p.curTokenIs(token.IDENT_LOWER) {
		p.errorf("expected a map key, got %s (%q)", p.curToken.Type, p.curToken.Lexeme)
		return ast.Tuple([]ast.Node{ast.SymOf("_"), ast.SymOf("nil")})
	}
	key := p.curToken.Lexeme
	p.nextToken()
	p.expect(token.COLON)
	val := p.parseExpression(ASSIGN)
	return ast.Tuple([]ast.Node{ast.SymOf(key), val})
}

func (p *Parser) parseGroupedExpression() ast.Node {
	p.nextToken() // consume '('
	p.skipNewlines()
	expr := p.parseExpression(LOWEST)
	p.skipNewlines()
	p.expect(token.RPAREN)
	return expr
}

// parseUnaryMinus desugars `-x` to `0 - x`: internal/compiler has no
// unary-arithmetic special form, only the binary one.
func (p *Parser) parseUnaryMinus() ast.Node {
	meta := p.curMeta()
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return ast.Call(ast.SymOf("-"), meta, ast.List([]ast.Node{ast.Int(0), operand}))
}

// parseCapture parses `&Mod.fun/N`. The arity is read and threaded through
// (internal/compiler's compileCapture discards it: this VM's calling
// convention has no per-arity dispatch), and the bare-local-function
// capture form (`&fun/N`, no module qualifier) is not supported — capture
// reduces to evaluating a qualified reference, and only qualified
// references are implemented here.
func (p *Parser) parseCapture() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume '&'
	if !p.curTokenIs(token.IDENT_UPPER) {
		p.errorf("expected a module name after '&'")
		return ast.SymOf("nil")
	}
	modName := p.curToken.Lexeme
	p.nextToken()
	p.expect(token.DOT)
	if !p.curTokenIs(token.IDENT_LOWER) {
		p.errorf("expected a function name in capture")
		return ast.SymOf("nil")
	}
	fnName := p.curToken.Lexeme
	p.nextToken()
	p.expect(token.SLASH)
	arity := int64(0)
	if p.curTokenIs(token.INT) {
		arity, _ = p.curToken.Literal.(int64)
	}
	p.expect(token.INT)
	dotRef := ast.Call(ast.SymOf("."), meta, ast.List([]ast.Node{ast.SymOf(modName), ast.SymOf(fnName)}))
	return ast.Call(ast.SymOf("&"), meta, ast.List([]ast.Node{dotRef, ast.Int(arity)}))
}

// parseAssignInfix implements `=`, right-associative: `a = b = c`
// associates as `a = (b = c)`.
func (p *Parser) parseAssignInfix(left ast.Node) ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume '='
	right := p.parseExpression(ASSIGN - 1)
	return ast.Call(ast.SymOf("="), meta, ast.List([]ast.Node{left, right}))
}

// parsePipeInfix implements `a |> f(args)`, splicing a in as f's first
// argument; `a |> f` with no call parens becomes the single-argument call
// `f(a)`.
func (p *Parser) parsePipeInfix(left ast.Node) ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume '|>'
	right := p.parseExpression(PIPE_GT)
	if args, ok := right.ArgList(); ok {
		newArgs := append([]ast.Node{left}, args...)
		return ast.Call(*right.Target, right.Meta, ast.List(newArgs))
	}
	return ast.Call(right, meta, ast.List([]ast.Node{left}))
}

// parseDotInfix implements both qualified references (`Mod.fun`,
// `Mod.fun(args)`) and closure calls (`f.(args)`): a '.' directly
// followed by '(' has no member name (compileDot's one-argument,
// evaluate-only shape); otherwise an identifier names the member, and a
// following '(' turns the reference into a call.
func (p *Parser) parseDotInfix(left ast.Node) ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume '.'
	if p.curTokenIs(token.LPAREN) {
		dotNode := ast.Call(ast.SymOf("."), meta, ast.List([]ast.Node{left}))
		args := p.parseCallArgs()
		return ast.Call(dotNode, meta, ast.List(args))
	}
	if !p.curTokenIs(token.IDENT_LOWER) && !p.curTokenIs(token.IDENT_UPPER) {
		p.errorf("expected an identifier after '.'")
		return left
	}
	name := p.curToken.Lexeme
	p.nextToken()
	dotNode := ast.Call(ast.SymOf("."), meta, ast.List([]ast.Node{left, ast.SymOf(name)}))
	if p.curTokenIs(token.LPAREN) {
		args := p.parseCallArgs()
		return ast.Call(dotNode, meta, ast.List(args))
	}
	return dotNode
}
