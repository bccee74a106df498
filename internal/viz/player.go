package viz

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pavshv/mdof/internal/model"
	"github.com/pavshv/mdof/internal/sim"
)

const (
	canvasCols = 80
	canvasRows = 24
	trailLen   = 90
	graphSpan  = 120
)

var ErrEmptyResult = errors.New("viz: result holds no samples")

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

type point struct{ x, y int }

// Player replays a finished simulation in the terminal. It never
// integrates; every frame comes straight from the recorded history.
type Player struct {
	name   string
	result *sim.Result
	canvas *Canvas

	pairs     [][2]int // movable-movable couplings, 0-based
	grounded  []bool   // body anchored to ground
	hasGround bool
	lo, hi    float64 // displacement range across the whole run
	frame     int
	playing   bool
	full      bool
	fps       int
	trails    [][]point
	recording bool
	frames    []*image.Paletted
	gifPath   string
	saveErr   error
	savedTo   string
}

// NewPlayer prepares playback of a result. full enables coupling lines
// and motion trails; gifPath is where a recording lands when one is
// stopped (empty disables recording).
func NewPlayer(name string, result *sim.Result, reg *model.Registry, full bool, fps int, gifPath string) (*Player, error) {
	if result == nil || len(result.Times) == 0 || result.NumBodies() == 0 {
		return nil, ErrEmptyResult
	}
	if fps < 1 {
		fps = 30
	}
	if fps > 120 {
		fps = 120
	}

	n := result.NumBodies()
	p := &Player{
		name:     name,
		result:   result,
		canvas:   NewCanvas(canvasCols, canvasRows),
		grounded: make([]bool, n),
		playing:  true,
		full:     full,
		fps:      fps,
		trails:   make([][]point, n),
		gifPath:  gifPath,
	}

	seen := make(map[[2]int]bool)
	for _, b := range reg.Bodies() {
		for _, c := range b.Couplings {
			if c.To == model.GroundID {
				p.grounded[b.ID-1] = true
				p.hasGround = true
				continue
			}
			lo, hi := b.ID-1, c.To-1
			if lo > hi {
				lo, hi = hi, lo
			}
			key := [2]int{lo, hi}
			if !seen[key] {
				seen[key] = true
				p.pairs = append(p.pairs, key)
			}
		}
	}

	p.lo, p.hi = result.Displacements[0][0], result.Displacements[0][0]
	for _, row := range result.Displacements {
		for _, x := range row {
			if x < p.lo {
				p.lo = x
			}
			if x > p.hi {
				p.hi = x
			}
		}
	}
	if p.hasGround {
		if p.lo > 0 {
			p.lo = 0
		}
		if p.hi < 0 {
			p.hi = 0
		}
	}
	if p.hi == p.lo {
		p.hi = p.lo + 1
	}
	return p, nil
}

func (p *Player) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(p.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p *Player) Init() tea.Cmd { return p.tick() }

func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if p.recording {
				p.stopRecording()
			}
			return p, tea.Quit
		case " ":
			p.playing = !p.playing
		case "r":
			p.frame = 0
			p.clearTrails()
		case "[":
			p.scrub(-1)
		case "]":
			p.scrub(1)
		case "g":
			if p.gifPath == "" {
				break
			}
			if p.recording {
				p.stopRecording()
			} else {
				p.recording = true
				p.frames = nil
			}
		}
	case TickMsg:
		if p.playing {
			p.frame++
			if p.frame >= len(p.result.Times) {
				p.frame = 0
				p.clearTrails()
			}
		}
		p.draw()
		if p.recording {
			p.frames = append(p.frames, captureFrame(p.canvas))
		}
		return p, p.tick()
	}
	return p, nil
}

func (p *Player) scrub(dir int) {
	p.playing = false
	p.frame += dir
	if p.frame < 0 {
		p.frame = 0
	}
	if p.frame >= len(p.result.Times) {
		p.frame = len(p.result.Times) - 1
	}
}

func (p *Player) clearTrails() {
	for i := range p.trails {
		p.trails[i] = p.trails[i][:0]
	}
}

func (p *Player) stopRecording() {
	p.recording = false
	if len(p.frames) == 0 {
		return
	}
	if err := saveGIF(p.gifPath, p.frames); err != nil {
		p.saveErr = err
	} else {
		p.savedTo = p.gifPath
	}
	p.frames = nil
}

func (p *Player) xToPixel(x float64) int {
	const pad = 8
	span := p.hi - p.lo
	return pad + int((x-p.lo)/span*float64(p.canvas.PixelWidth()-2*pad))
}

func (p *Player) bodyY(i int) int {
	n := p.result.NumBodies()
	return p.canvas.PixelHeight() * (i + 1) / (n + 1)
}

func (p *Player) draw() {
	p.canvas.Clear()
	row := p.result.Displacements[p.frame]
	ph := p.canvas.PixelHeight()

	if p.hasGround {
		wallX := p.xToPixel(0)
		p.canvas.VLine(wallX, 2, ph-3)
	}

	px := make([]point, len(row))
	for i, x := range row {
		px[i] = point{p.xToPixel(x), p.bodyY(i)}
	}

	if p.full {
		wallX := p.xToPixel(0)
		for _, pair := range p.pairs {
			a, b := px[pair[0]], px[pair[1]]
			p.canvas.Line(a.x, a.y, b.x, b.y)
		}
		for i, anchored := range p.grounded {
			if anchored {
				p.canvas.Line(wallX, px[i].y, px[i].x, px[i].y)
			}
		}
		for i, pt := range px {
			if n := len(p.trails[i]); n == 0 || p.trails[i][n-1] != pt {
				p.trails[i] = append(p.trails[i], pt)
			}
			if len(p.trails[i]) > trailLen {
				p.trails[i] = p.trails[i][1:]
			}
			for _, tp := range p.trails[i] {
				p.canvas.Set(tp.x, tp.y)
			}
		}
	}

	for _, pt := range px {
		p.canvas.Box(pt.x-2, pt.y-2, pt.x+2, pt.y+2)
	}
}

func (p *Player) View() string {
	p.draw()
	canvasView := canvasStyle.Render(p.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(p.name)) + "\n")

	status := "PLAYING"
	if !p.playing {
		status = "PAUSED"
	}
	if p.recording {
		status += recStyle.Render("  REC ●")
	}
	s.WriteString(status + "\n\n")

	if p.frame > 1 {
		start := 0
		if p.frame > graphSpan {
			start = p.frame - graphSpan
		}
		series := make([]float64, 0, p.frame-start+1)
		for i := start; i <= p.frame; i++ {
			series = append(series, p.result.Displacements[i][0])
		}
		chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("x1"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", p.result.Times[p.frame])) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d / %d", p.frame, len(p.result.Times)-1)) + "\n")
	s.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d", p.result.NumBodies())) + "\n")
	s.WriteString(labelStyle.Render("Integrator") + valueStyle.Render(p.result.Integrator) + "\n")
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e", p.result.EnergyDrift)) + "\n")
	if p.savedTo != "" {
		s.WriteString(labelStyle.Render("GIF") + valueStyle.Render(p.savedTo) + "\n")
	}
	if p.saveErr != nil {
		s.WriteString(labelStyle.Render("GIF") + valueStyle.Render(p.saveErr.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Restart Q:Quit\n[ ]:Scrub G:Record GIF"))
	statsView := statsStyle.Render(s.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
