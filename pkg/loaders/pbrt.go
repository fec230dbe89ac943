package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-wavefront-tracer/pkg/core"
)

// ErrInvalidPath is returned when a world file path is rejected
var ErrInvalidPath = errors.New("invalid world file path")

// Statement is one parsed directive of a world file
type Statement struct {
	Type       string           // Directive (Camera, Film, LightSource, ...)
	Subtype    string           // Quoted implementation name (perspective, distant, ...)
	Parameters map[string]Param // Named parameters
	Line       int              // Line the directive starts on
}

// Param is a typed parameter value list
type Param struct {
	Type   string   // Parameter type (float, rgb, point3, string, bool, ...)
	Values []string // Raw values with quotes removed
}

// World contains every directive of a world file that affects rendering
type World struct {
	// Before WorldBegin
	Eye, Target, Up *core.Vec3 // From LookAt
	Camera          *Statement
	Film            *Statement
	Integrator      *Statement

	// After WorldBegin
	LightSources []Statement
	Shapes       []Statement

	// Directives that were parsed but have no meaning here
	Ignored []Statement
}

// Parser turns world file lines into a World
type Parser struct {
	world          *World
	inWorld        bool
	attributeDepth int
	statementLines []string
	statementLine  int
	lineNumber     int
}

// NewParser creates a parser for a single world file
func NewParser() *Parser {
	return &Parser{world: &World{}}
}

// ParseWorld parses world file content from an io.Reader
func ParseWorld(reader io.Reader) (*World, error) {
	parser := NewParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading world: %w", err)
	}

	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser.world, nil
}

// LoadWorld loads and parses a world file from the scenes directory. A nil
// logger means core.Logger().
func LoadWorld(filename string, logger *slog.Logger) (*World, error) {
	if err := ValidateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening world file: %w", err)
	}
	defer file.Close()

	world, err := ParseWorld(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if logger == nil {
		logger = core.Logger()
	}
	logger.Info("world loaded", "file", filename,
		"lights", len(world.LightSources), "shapes", len(world.Shapes))
	return world, nil
}

// processLine processes a single line of input
func (p *Parser) processLine(line string) error {
	p.lineNumber++
	if i := strings.Index(line, "#"); i >= 0 && !insideQuotes(line, i) {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		if err := p.flush(); err != nil {
			return err
		}
		return p.processBlock(line)
	}

	if isStatementStart(line) {
		if err := p.flush(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		p.statementLine = p.lineNumber
		return nil
	}

	if len(p.statementLines) == 0 {
		return fmt.Errorf("line %d: unexpected continuation line: %s", p.lineNumber, line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// processBlock handles the block directives
func (p *Parser) processBlock(directive string) error {
	switch directive {
	case "WorldBegin":
		if p.inWorld {
			return fmt.Errorf("line %d: nested WorldBegin", p.lineNumber)
		}
		p.inWorld = true
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.attributeDepth++
	case "AttributeEnd":
		if p.attributeDepth == 0 {
			return fmt.Errorf("line %d: AttributeEnd without AttributeBegin", p.lineNumber)
		}
		p.attributeDepth--
	}
	return nil
}

// flush parses the accumulated statement lines, if any
func (p *Parser) flush() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	full := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(full)
	if err != nil {
		return fmt.Errorf("line %d: %w", p.statementLine, err)
	}
	stmt.Line = p.statementLine
	return p.routeStatement(stmt)
}

// finalize processes the last statement and checks block balance
func (p *Parser) finalize() error {
	if err := p.flush(); err != nil {
		return err
	}
	if p.attributeDepth != 0 {
		return fmt.Errorf("unbalanced AttributeBegin: %d blocks left open", p.attributeDepth)
	}
	return nil
}

// routeStatement stores a statement in the world section it belongs to
func (p *Parser) routeStatement(stmt *Statement) error {
	if stmt.Type == "LookAt" {
		if err := p.parseLookAt(stmt); err != nil {
			return fmt.Errorf("line %d: LookAt: %w", stmt.Line, err)
		}
		return nil
	}

	if !p.inWorld {
		switch stmt.Type {
		case "Camera":
			p.world.Camera = stmt
		case "Film":
			p.world.Film = stmt
		case "Integrator":
			p.world.Integrator = stmt
		case "LightSource", "Shape":
			return fmt.Errorf("line %d: %s before WorldBegin", stmt.Line, stmt.Type)
		default:
			p.world.Ignored = append(p.world.Ignored, *stmt)
		}
		return nil
	}

	switch stmt.Type {
	case "LightSource":
		p.world.LightSources = append(p.world.LightSources, *stmt)
	case "Shape":
		p.world.Shapes = append(p.world.Shapes, *stmt)
	case "Camera", "Film", "Integrator":
		return fmt.Errorf("line %d: %s after WorldBegin", stmt.Line, stmt.Type)
	default:
		p.world.Ignored = append(p.world.Ignored, *stmt)
	}
	return nil
}

// parseLookAt parses the eye, target and up vectors
func (p *Parser) parseLookAt(stmt *Statement) error {
	values := stmt.Parameters["values"].Values
	if len(values) != 9 {
		return fmt.Errorf("requires 9 values, got %d", len(values))
	}

	var v [9]float64
	for i, s := range values {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", s, err)
		}
		v[i] = f
	}

	p.world.Eye = &core.Vec3{X: v[0], Y: v[1], Z: v[2]}
	p.world.Target = &core.Vec3{X: v[3], Y: v[4], Z: v[5]}
	p.world.Up = &core.Vec3{X: v[6], Y: v[7], Z: v[8]}
	return nil
}

// ValidateFilePath rejects paths outside the scenes directory and files
// that are not world files
func ValidateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidPath)
	}
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("%w: null bytes not allowed", ErrInvalidPath)
	}

	cleanPath := filepath.ToSlash(filepath.Clean(filename))
	if len(cleanPath) > 512 {
		return fmt.Errorf("%w: maximum 512 characters allowed", ErrInvalidPath)
	}

	inScenes := strings.HasPrefix(cleanPath, "scenes/") || strings.Contains(cleanPath, "/scenes/")
	inTemp := strings.HasPrefix(cleanPath, filepath.ToSlash(os.TempDir()))
	if !inScenes && !inTemp {
		return fmt.Errorf("%w: file must be in scenes/ directory", ErrInvalidPath)
	}
	if strings.HasPrefix(cleanPath, "../") {
		return fmt.Errorf("%w: directory traversal not allowed", ErrInvalidPath)
	}

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("%w: only .pbrt files are allowed", ErrInvalidPath)
	}
	return nil
}

// isStatementStart determines if a line starts a new statement
func isStatementStart(line string) bool {
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"Material", "Shape", "LightSource", "AreaLightSource",
		"Translate", "Rotate", "Scale", "Transform",
		"ReverseOrientation", "Attribute",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || line == stmt {
			return true
		}
	}
	return false
}

// insideQuotes reports whether byte offset i of line is inside a quoted string
func insideQuotes(line string, i int) bool {
	return strings.Count(line[:i], `"`)%2 == 1
}
