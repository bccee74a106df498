// Package input parses the .ste directive format: a *SIMULATION block with
// time settings, *BODY blocks with coupling lists and optional nested
// *FORCE blocks. Lines starting with ** are comments; an inline ** starts
// a trailing comment.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pavshv/mdof/internal/logging"
	"github.com/pavshv/mdof/internal/model"
	"github.com/pavshv/mdof/internal/sim"
)

// ErrMissingTimeSettings indicates an input without a valid *SIMULATION
// block.
var ErrMissingTimeSettings = errors.New("input: simulation time settings are not defined")

type parseState int

const (
	stateIdle parseState = iota
	stateSimulation
	stateBody
	stateForce
)

func (s parseState) String() string {
	switch s {
	case stateIdle:
		return "top level"
	case stateSimulation:
		return "*SIMULATION"
	case stateBody:
		return "*BODY"
	case stateForce:
		return "*FORCE"
	}
	return "unknown"
}

type parser struct {
	state parseState
	line  int

	reg        *model.Registry
	cfg        sim.Config
	simDefined bool

	// current body under construction
	bodyID int
	mass   float64
	stiff  []float64
	zeta   []float64
	coupl  []int
	x0     float64
	v0     float64
	xloc   float64

	// current force under construction
	force   model.ForceSpec
	sawType bool
}

// ParseFile reads a .ste input file.
func ParseFile(path string) (*model.Registry, sim.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sim.Config{}, fmt.Errorf("input: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the directive stream and returns the body registry and the
// simulation settings. Errors carry the offending line number.
func Parse(r io.Reader) (*model.Registry, sim.Config, error) {
	p := &parser{reg: model.NewRegistry()}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		line := sc.Text()

		if ix := strings.Index(line, "**"); ix == 0 {
			continue
		} else if ix > 0 {
			line = line[:ix]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := p.handle(line); err != nil {
			return nil, sim.Config{}, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, sim.Config{}, fmt.Errorf("input: %w", err)
	}

	if p.state != stateIdle {
		return nil, sim.Config{}, fmt.Errorf("input: unterminated %s block at end of file", p.state)
	}
	if !p.simDefined {
		return nil, sim.Config{}, ErrMissingTimeSettings
	}
	return p.reg, p.cfg, nil
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("input: line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *parser) handle(line string) error {
	if strings.HasPrefix(line, "*") {
		return p.directive(line)
	}

	key, value, found := strings.Cut(line, "=")
	if !found {
		return p.errf("expected KEY = VALUE, got %q", line)
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch p.state {
	case stateSimulation:
		return p.simulationKey(key, value)
	case stateBody:
		return p.bodyKey(key, value)
	case stateForce:
		return p.forceKeyValue(key, value)
	}
	return p.errf("keyword %s outside any block", key)
}

func (p *parser) directive(line string) error {
	fields := strings.Fields(line)
	name := fields[0]

	switch name {
	case "*SIMULATION":
		if p.state != stateIdle {
			return p.errf("*SIMULATION inside %s block", p.state)
		}
		p.state = stateSimulation

	case "*ENDSIMULATION":
		if p.state != stateSimulation {
			return p.errf("*ENDSIMULATION without *SIMULATION")
		}
		if p.cfg.Dt <= 0 || p.cfg.TMax <= 0 {
			return ErrMissingTimeSettings
		}
		p.simDefined = true
		p.state = stateIdle

	case "*BODY":
		if p.state != stateIdle {
			return p.errf("*BODY inside %s block", p.state)
		}
		if len(fields) < 2 {
			return p.errf("*BODY needs an id")
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return p.errf("invalid body id %q", fields[1])
		}
		p.resetBody(id)
		p.state = stateBody

	case "*ENDBODY":
		if p.state != stateBody {
			return p.errf("*ENDBODY without *BODY")
		}
		if err := p.finishBody(); err != nil {
			return err
		}
		p.state = stateIdle

	case "*FORCE":
		if p.state != stateBody {
			return p.errf("*FORCE outside a *BODY block")
		}
		p.force = model.ForceSpec{}
		p.sawType = false
		p.state = stateForce

	case "*ENDFORCE":
		if p.state != stateForce {
			return p.errf("*ENDFORCE without *FORCE")
		}
		if !p.sawType {
			logging.Logger.Warn().Int("body", p.bodyID).
				Msg("force block without TYPE, body gets zero force")
			p.force = model.ForceSpec{}
		}
		p.state = stateBody

	default:
		return p.errf("unknown directive %s", name)
	}
	return nil
}

func (p *parser) simulationKey(key, value string) error {
	switch key {
	case "TMAX":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid TMAX %q", value)
		}
		p.cfg.TMax = v
	case "TSTEP":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid TSTEP %q", value)
		}
		p.cfg.Dt = v
	case "ANISTYLE":
		v, err := strconv.Atoi(value)
		if err != nil {
			return p.errf("invalid ANISTYLE %q", value)
		}
		p.cfg.FullAnimation = v != 0
	default:
		return p.errf("unknown simulation keyword %s", key)
	}
	return nil
}

func (p *parser) bodyKey(key, value string) error {
	switch key {
	case "MASS":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid MASS %q", value)
		}
		p.mass = v
	case "STIFF":
		vs, err := floatList(value)
		if err != nil {
			return p.errf("invalid STIFF list %q", value)
		}
		p.stiff = vs
	case "ZTA":
		vs, err := floatList(value)
		if err != nil {
			return p.errf("invalid ZTA list %q", value)
		}
		p.zeta = vs
	case "CPL":
		ids, err := intList(value)
		if err != nil {
			return p.errf("invalid CPL list %q", value)
		}
		for _, id := range ids {
			if id == p.bodyID {
				return fmt.Errorf("input: line %d: %w", p.line,
					&model.BodyError{Body: p.bodyID, Wrapped: model.ErrSelfCoupling})
			}
		}
		p.coupl = ids
	case "X0":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid X0 %q", value)
		}
		p.x0 = v
	case "V0":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid V0 %q", value)
		}
		p.v0 = v
	case "XLOC":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid XLOC %q", value)
		}
		p.xloc = v
	default:
		return p.errf("unknown body keyword %s", key)
	}
	return nil
}

func (p *parser) forceKeyValue(key, value string) error {
	switch key {
	case "TYPE":
		kind, err := model.ParseForceKind(value)
		if err != nil {
			return p.errf("%v", err)
		}
		p.force.Kind = kind
		p.sawType = true
	case "OMEGA":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid OMEGA %q", value)
		}
		p.force.Omega = v
		p.force.HasOmega = true
	case "P0":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid P0 %q", value)
		}
		p.force.Amplitude = v
		p.force.HasAmplitude = true
	case "START":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid START %q", value)
		}
		p.force.Start = v
		p.force.HasStart = true
	case "STOP":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p.errf("invalid STOP %q", value)
		}
		p.force.Stop = v
		p.force.HasStop = true
	default:
		return p.errf("unknown force keyword %s", key)
	}
	return nil
}

func (p *parser) resetBody(id int) {
	p.bodyID = id
	p.mass = 0
	p.stiff = nil
	p.zeta = nil
	p.coupl = nil
	p.x0 = 0
	p.v0 = 0
	p.xloc = 0
	p.force = model.ForceSpec{}
}

func (p *parser) finishBody() error {
	b, err := model.FromArrays(p.bodyID, p.mass, p.stiff, p.zeta, p.coupl)
	if err != nil {
		return fmt.Errorf("input: line %d: %w", p.line, err)
	}
	b.X0 = p.x0
	b.V0 = p.v0
	b.XLoc = p.xloc
	b.Force = p.force
	if err := p.reg.Add(b); err != nil {
		return fmt.Errorf("input: line %d: %w", p.line, err)
	}
	return nil
}

func floatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func intList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
