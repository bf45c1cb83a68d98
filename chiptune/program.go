package chiptune

import (
	"fmt"
	"slices"
)

// Op is a control instruction kind.
type Op int

const (
	OpPrint Op = iota
	OpLabel
	OpEnding
	OpJump
	OpFine
	OpSetGain
	OpSetTempo
)

// JumpKind distinguishes repeat gotos from the one-shot musical directives.
type JumpKind int

const (
	JumpGoto JumpKind = iota
	JumpDaCapoAlFine
	JumpDaCapoAlCoda
	JumpDalSegnoAlFine
	JumpDalSegnoAlCoda
	JumpToCoda
)

var jumpNames = [...]string{
	JumpGoto:           "GOTO",
	JumpDaCapoAlFine:   "DA_CAPO_AL_FINE",
	JumpDaCapoAlCoda:   "DA_CAPO_AL_CODA",
	JumpDalSegnoAlFine: "DAL_SEGNO_AL_FINE",
	JumpDalSegnoAlCoda: "DAL_SEGNO_AL_CODA",
	JumpToCoda:         "TO_CODA",
}

func (k JumpKind) String() string {
	if k >= 0 && int(k) < len(jumpNames) {
		return jumpNames[k]
	}
	return fmt.Sprintf("JumpKind(%d)", int(k))
}

// Reserved label names set by the SEGNO and CODA directives.
const (
	LabelSegno = "SEGNO"
	LabelCoda  = "CODA"
)

// Repeat counts with special meaning.
const (
	RepeatForever = -1
	RepeatOnce    = -2
)

// Instr is one control instruction attached to a note index.
type Instr struct {
	Op Op
	// Name is the label for OpLabel and OpJump, and the loop-start label an
	// OpEnding belongs to.
	Name string
	// N is the repeat count of a goto or the number of an ending.
	N     int
	Jump  JumpKind
	On    bool
	Value float64
	Line  int
}

// Step holds the instructions evaluated before the notes at one index.
type Step struct {
	Instrs    []Instr
	Separator bool
}

type ending struct {
	id   int
	step int
}

// Program is the control flow of a tune: one Step per note index.
type Program struct {
	Steps []Step
	Start int

	labels  map[string]int
	endings map[string][]ending
	// endingGoto maps an ending step to the nearest later goto that
	// returns to the ending's loop start.
	endingGoto map[int]int
	// loopGotos lists the repeat gotos returning to each label.
	loopGotos map[string][]int

	tempoAt []float64
	gainAt  []float64
}

func (p *Program) grow(idx int) {
	for len(p.Steps) <= idx {
		p.Steps = append(p.Steps, Step{})
	}
}

// Add appends an instruction to step idx.
func (p *Program) Add(idx int, in Instr) {
	p.grow(idx)
	p.Steps[idx].Instrs = append(p.Steps[idx].Instrs, in)
}

// Label returns the step a label points at.
func (p *Program) Label(name string) (int, bool) {
	idx, ok := p.labels[name]
	return idx, ok
}

// Link resolves labels and endings and precomputes the tempo and gain in
// force at every step. It returns one diagnostic per dangling reference; the
// corresponding jumps are skipped at run time.
func (p *Program) Link() []*ParseError {
	var errs []*ParseError
	p.labels = make(map[string]int)
	p.endings = make(map[string][]ending)
	p.endingGoto = make(map[int]int)
	p.loopGotos = make(map[string][]int)

	for idx, st := range p.Steps {
		for _, in := range st.Instrs {
			switch in.Op {
			case OpLabel:
				if prev, dup := p.labels[in.Name]; dup {
					errs = append(errs, &ParseError{Line: in.Line, Text: in.Name,
						Err: fmt.Errorf("%w: already defined at step %d", ErrDuplicateName, prev)})
					continue
				}
				p.labels[in.Name] = idx
			case OpEnding:
				p.endings[in.Name] = append(p.endings[in.Name], ending{id: in.N, step: idx})
			}
		}
	}

	for idx, st := range p.Steps {
		for _, in := range st.Instrs {
			switch {
			case in.Op == OpJump:
				if in.Jump == JumpGoto {
					p.loopGotos[in.Name] = append(p.loopGotos[in.Name], idx)
				}
				if target := jumpLabel(in); target != "" {
					if _, ok := p.labels[target]; !ok {
						errs = append(errs, &ParseError{Line: in.Line, Text: in.Jump.String(),
							Err: fmt.Errorf("%w: %q", ErrUnknownLabel, target)})
					}
				}
			case in.Op == OpEnding:
				if _, ok := p.labels[in.Name]; !ok {
					errs = append(errs, &ParseError{Line: in.Line, Text: fmt.Sprintf("ENDING %d", in.N),
						Err: fmt.Errorf("%w: ending without a preceding LABEL", ErrUnknownLabel)})
				}
				p.endingGoto[idx] = p.findGoto(idx, in.Name)
			}
		}
	}

	p.tempoAt = make([]float64, len(p.Steps)+1)
	p.gainAt = make([]float64, len(p.Steps)+1)
	tempo, gain := DefaultTimeStepMS, DefaultGain
	for idx, st := range p.Steps {
		p.tempoAt[idx], p.gainAt[idx] = tempo, gain
		for _, in := range st.Instrs {
			switch in.Op {
			case OpSetTempo:
				tempo = in.Value
			case OpSetGain:
				gain = in.Value
			}
		}
	}
	p.tempoAt[len(p.Steps)], p.gainAt[len(p.Steps)] = tempo, gain
	return errs
}

func (p *Program) findGoto(from int, label string) int {
	for idx := from + 1; idx < len(p.Steps); idx++ {
		for _, in := range p.Steps[idx].Instrs {
			if in.Op == OpJump && in.Jump == JumpGoto && in.Name == label {
				return idx
			}
		}
	}
	return -1
}

// jumpLabel returns the label a jump instruction needs, if any.
func jumpLabel(in Instr) string {
	switch in.Jump {
	case JumpGoto:
		return in.Name
	case JumpDalSegnoAlFine, JumpDalSegnoAlCoda:
		return LabelSegno
	case JumpToCoda:
		return LabelCoda
	}
	return ""
}

// stateBefore returns the tempo and gain set by the steps before idx.
func (p *Program) stateBefore(idx int) (tempo, gain float64) {
	if p.tempoAt == nil {
		return DefaultTimeStepMS, DefaultGain
	}
	idx = min(max(idx, 0), len(p.Steps))
	return p.tempoAt[idx], p.gainAt[idx]
}

// Position is one note index yielded by a Cursor with the playback state in
// force there.
type Position struct {
	Index     int
	TempoMS   float64
	Gain      float64
	Print     bool
	Separator bool
}

// JumpEvent describes a taken jump.
type JumpEvent struct {
	From, To int
	Kind     JumpKind
	Label    string
	Ending   bool
}

// Cursor walks a Program. It owns the repeat counters, so two cursors over
// the same Program are independent.
type Cursor struct {
	p *Program

	// OnJump, when set, is called for every jump taken.
	OnJump func(JumpEvent)

	next  int
	ended bool
	tempo float64
	gain  float64
	print bool

	alFine, alCoda bool
	remaining      map[int]int
	used           map[int]bool
	lastJumper     map[string]int
	// passes counts the repeat jumps back to each loop label.
	passes map[string]int
}

// NewCursor creates a cursor positioned at the program start.
func NewCursor(p *Program) *Cursor {
	c := &Cursor{p: p}
	c.Reset()
	return c
}

// Reset rewinds to the program start and clears all repeat state.
func (c *Cursor) Reset() {
	c.next = c.p.Start
	c.ended = false
	c.tempo, c.gain = c.p.stateBefore(c.p.Start)
	c.print = true
	c.alFine, c.alCoda = false, false
	c.remaining = make(map[int]int)
	c.passes = make(map[string]int)
	c.used = make(map[int]bool)
	c.lastJumper = make(map[string]int)
}

// Remaining returns the repeat count left on the goto at step idx. A goto
// that has not been reached yet reports its full count.
func (c *Cursor) Remaining(idx int) (int, bool) {
	if idx < 0 || idx >= len(c.p.Steps) {
		return 0, false
	}
	for _, in := range c.p.Steps[idx].Instrs {
		if in.Op == OpJump && in.Jump == JumpGoto {
			if rem, ok := c.remaining[idx]; ok {
				return rem, true
			}
			return in.N, true
		}
	}
	return 0, false
}

// Done reports whether the cursor has run off the end or hit FINE.
func (c *Cursor) Done() bool { return c.ended }

// Next resolves the control flow at the cursor and returns the next index to
// play. It returns false once the tune has ended.
func (c *Cursor) Next() (Position, bool) {
	// Bounds jump chains that never reach a playable step.
	budget := 4*len(c.p.Steps) + 16
	for {
		if c.ended || c.next >= len(c.p.Steps) || c.next < 0 {
			c.ended = true
			return Position{}, false
		}
		idx := c.next
		st := c.p.Steps[idx]

		for _, in := range st.Instrs {
			if in.Op == OpPrint {
				c.print = in.On
			}
		}

		if target, ev, ok := c.resolveJumps(idx, st); ok {
			if budget--; budget < 0 {
				c.ended = true
				return Position{}, false
			}
			c.jumpTo(target, ev)
			continue
		}

		if c.alFine && slices.ContainsFunc(st.Instrs, func(in Instr) bool { return in.Op == OpFine }) {
			c.ended = true
			return Position{}, false
		}

		if target, ev, ok := c.resolveEndings(idx, st); ok {
			if budget--; budget < 0 {
				c.ended = true
				return Position{}, false
			}
			c.jumpTo(target, ev)
			continue
		}

		for _, in := range st.Instrs {
			switch in.Op {
			case OpSetGain:
				c.gain = in.Value
			case OpSetTempo:
				c.tempo = in.Value
			}
		}
		c.next = idx + 1
		return Position{Index: idx, TempoMS: c.tempo, Gain: c.gain, Print: c.print, Separator: st.Separator}, true
	}
}

func (c *Cursor) jumpTo(target int, ev JumpEvent) {
	c.next = target
	c.tempo, c.gain = c.p.stateBefore(target)
	if c.OnJump != nil {
		ev.To = target
		c.OnJump(ev)
	}
}

func (c *Cursor) resolveJumps(idx int, st Step) (int, JumpEvent, bool) {
	for _, in := range st.Instrs {
		if in.Op != OpJump {
			continue
		}
		if target, ok := c.resolveJump(idx, in); ok {
			return target, JumpEvent{From: idx, Kind: in.Jump, Label: jumpLabel(in)}, true
		}
	}
	return 0, JumpEvent{}, false
}

func (c *Cursor) resolveJump(idx int, in Instr) (int, bool) {
	switch in.Jump {
	case JumpGoto:
		target, ok := c.p.labels[in.Name]
		if !ok {
			return 0, false
		}
		if in.N == RepeatForever {
			c.passes[in.Name]++
			c.lastJumper[in.Name] = idx
			return target, true
		}
		rem, seen := c.remaining[idx]
		if !seen {
			rem = in.N
		}
		if rem > 0 {
			c.remaining[idx] = rem - 1
			c.passes[in.Name]++
			c.lastJumper[in.Name] = idx
			return target, true
		}
		c.resetGoto(idx, in.Name)
		return 0, false

	case JumpDaCapoAlFine, JumpDaCapoAlCoda:
		if c.used[idx] {
			return 0, false
		}
		c.used[idx] = true
		c.setAl(in.Jump)
		return 0, true

	case JumpDalSegnoAlFine, JumpDalSegnoAlCoda:
		target, ok := c.p.labels[LabelSegno]
		if !ok || c.used[idx] {
			return 0, false
		}
		c.used[idx] = true
		c.setAl(in.Jump)
		return target, true

	case JumpToCoda:
		target, ok := c.p.labels[LabelCoda]
		if !ok || !c.alCoda || c.used[idx] {
			return 0, false
		}
		c.used[idx] = true
		return target, true
	}
	return 0, false
}

func (c *Cursor) setAl(k JumpKind) {
	switch k {
	case JumpDaCapoAlFine, JumpDalSegnoAlFine:
		c.alFine = true
	case JumpDaCapoAlCoda, JumpDalSegnoAlCoda:
		c.alCoda = true
	}
}

// resetGoto restores a goto's count so a later pass (after a da capo, say)
// repeats again.
func (c *Cursor) resetGoto(idx int, label string) {
	delete(c.remaining, idx)
	delete(c.passes, label)
	if c.lastJumper[label] == idx {
		delete(c.lastJumper, label)
	}
}

// resetLoop restores every goto returning to label once its final ending
// has been reached.
func (c *Cursor) resetLoop(label string) {
	for _, g := range c.p.loopGotos[label] {
		delete(c.remaining, g)
	}
	delete(c.passes, label)
	delete(c.lastJumper, label)
}

// resolveEndings implements nth-time endings. The pass number is one plus
// the repeat jumps taken back to the loop label, whichever goto took them.
// An early ending reached on a later pass skips forward to the matching
// sibling; a later ending reached too early sends the cursor back to the
// goto for another repeat.
func (c *Cursor) resolveEndings(idx int, st Step) (int, JumpEvent, bool) {
	for _, in := range st.Instrs {
		if in.Op != OpEnding {
			continue
		}
		g, ok := c.lastJumper[in.Name]
		if !ok {
			g = c.p.endingGoto[idx]
			ok = g >= 0
		}
		pass := 1 + c.passes[in.Name]
		ev := JumpEvent{From: idx, Label: in.Name, Ending: true}
		switch {
		case pass < in.N && ok:
			return g, ev, true
		case pass > in.N:
			sibs := c.p.endings[in.Name]
			if len(sibs) == 0 {
				return 0, JumpEvent{}, false
			}
			target := sibs[len(sibs)-1]
			for _, s := range sibs {
				if s.id == pass {
					target = s
					break
				}
			}
			if target.step == idx {
				return 0, JumpEvent{}, false
			}
			if target.step == sibs[len(sibs)-1].step {
				c.resetLoop(in.Name)
			}
			return target.step, ev, true
		}
	}
	return 0, JumpEvent{}, false
}
