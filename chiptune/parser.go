package chiptune

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-chiptune/dsp/core"
	"github.com/cwbudde/algo-chiptune/dsp/envelope"
	"github.com/cwbudde/algo-chiptune/dsp/filter"
	"github.com/cwbudde/algo-chiptune/dsp/signal"
	"github.com/cwbudde/algo-chiptune/synth"
)

var (
	bracketGroup = regexp.MustCompile(`\[([^\[\]]*)\]`)
	parenPair    = regexp.MustCompile(`\(([^(),]+),([^(),]+)\)`)
)

// ParseFile parses the script at path.
func ParseFile(path string) (*Tune, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chiptune: %w", err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, err
	}
	t.Path = path
	return t, nil
}

// ParseString parses a script held in memory.
func ParseString(script string) (*Tune, error) {
	return Parse(strings.NewReader(script))
}

// Parse reads a script. Malformed lines become entries in
// Tune.Diagnostics; only a read failure returns an error.
func Parse(r io.Reader) (*Tune, error) {
	p := &parser{
		t: &Tune{
			Instruments: make(map[string]*Instrument),
			ADSRs:       make(map[int]envelope.ADSR),
			Filters:     make(map[int]filter.Args),
			Params:      make(map[int]signal.Params),
			Program:     &Program{},
		},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() && !p.ended {
		p.line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
			continue
		}
		if err := p.parseLine(text); err != nil {
			p.t.Diagnostics = append(p.t.Diagnostics, &ParseError{Line: p.line, Text: text, Err: err})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("chiptune: read script: %w", err)
	}

	// Labels or FINE after the last note need a slot of their own.
	if len(p.t.Program.Steps) > p.notes {
		p.addSeparator()
	}
	p.t.Diagnostics = append(p.t.Diagnostics, p.t.Program.Link()...)
	return p.t, nil
}

type parser struct {
	t     *Tune
	line  int
	notes int
	// loopLabel is the most recent LABEL, the loop start of later ENDINGs.
	loopLabel string
	ended     bool
}

func (p *parser) parseLine(text string) error {
	fields := strings.Fields(squeezeParens(text))
	cmd := strings.ToUpper(fields[0])
	args := fields[1:]
	idx := p.notes
	prog := p.t.Program

	switch cmd {
	case "INSTRUMENT":
		return p.parseInstrument(args)
	case "ADSR":
		return p.parseADSR(text, args)
	case "FILTER":
		return p.parseFilter(args)
	case "PARAMS":
		return p.parseParams(args)
	case "TAB":
		return p.parseTab(text)

	case "NUM_VOICES":
		n, err := intArg(args, 0)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("%w: NUM_VOICES %d", ErrBadValue, n)
		}
		if p.notes > 0 && n != p.t.NumVoices {
			return fmt.Errorf("%w: NUM_VOICES after notes", ErrBadValue)
		}
		p.setVoices(n)
	case "TIME_STEP_MS":
		v, err := floatArg(args, 0)
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("%w: TIME_STEP_MS %v", ErrBadValue, v)
		}
		prog.Add(idx, Instr{Op: OpSetTempo, Value: v, Line: p.line})
	case "GAIN":
		v, err := floatArg(args, 0)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("%w: GAIN %v", ErrBadValue, v)
		}
		prog.Add(idx, Instr{Op: OpSetGain, Value: v, Line: p.line})
	case "LABEL":
		if len(args) == 0 {
			return fmt.Errorf("%w: label name", ErrMissingArgument)
		}
		prog.Add(idx, Instr{Op: OpLabel, Name: args[0], Line: p.line})
		p.loopLabel = args[0]
	case "SEGNO":
		prog.Add(idx, Instr{Op: OpLabel, Name: LabelSegno, Line: p.line})
	case "CODA":
		prog.Add(idx, Instr{Op: OpLabel, Name: LabelCoda, Line: p.line})
	case "FINE":
		prog.Add(idx, Instr{Op: OpFine, Line: p.line})
	case "ENDING":
		n, err := intArg(args, 0)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("%w: ENDING %d", ErrBadValue, n)
		}
		prog.Add(idx, Instr{Op: OpEnding, Name: p.loopLabel, N: n, Line: p.line})
	case "GOTO":
		if len(args) == 0 {
			return fmt.Errorf("%w: goto label", ErrMissingArgument)
		}
		p.addJump(Instr{Op: OpJump, Jump: JumpGoto, Name: args[0], N: RepeatForever})
	case "GOTO_TIMES":
		if len(args) < 2 {
			return fmt.Errorf("%w: GOTO_TIMES <label> <count>", ErrMissingArgument)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("%w: repeat count %q", ErrBadValue, args[1])
		}
		p.addJump(Instr{Op: OpJump, Jump: JumpGoto, Name: args[0], N: n})
	case "DA_CAPO_AL_FINE":
		p.addJump(Instr{Op: OpJump, Jump: JumpDaCapoAlFine, N: RepeatOnce})
	case "DA_CAPO_AL_CODA":
		p.addJump(Instr{Op: OpJump, Jump: JumpDaCapoAlCoda, N: RepeatOnce})
	case "DAL_SEGNO_AL_FINE":
		p.addJump(Instr{Op: OpJump, Jump: JumpDalSegnoAlFine, N: RepeatOnce})
	case "DAL_SEGNO_AL_CODA":
		p.addJump(Instr{Op: OpJump, Jump: JumpDalSegnoAlCoda, N: RepeatOnce})
	case "TO_CODA":
		p.addJump(Instr{Op: OpJump, Jump: JumpToCoda, N: RepeatOnce})
	case "PRINT":
		if len(args) == 0 {
			return fmt.Errorf("%w: PRINT ON|OFF", ErrMissingArgument)
		}
		switch strings.ToUpper(args[0]) {
		case "ON":
			prog.Add(idx, Instr{Op: OpPrint, On: true, Line: p.line})
		case "OFF":
			prog.Add(idx, Instr{Op: OpPrint, On: false, Line: p.line})
		default:
			return fmt.Errorf("%w: PRINT %q", ErrBadValue, args[0])
		}
	case "START":
		prog.Start = idx
	case "END":
		p.ended = true
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	return nil
}

func (p *parser) setVoices(n int) {
	p.t.NumVoices = n
	for len(p.t.Voices) < n {
		p.t.Voices = append(p.t.Voices, Voice{})
	}
}

// addSeparator appends one silent, zero-time slot to every voice.
func (p *parser) addSeparator() {
	if p.t.NumVoices == 0 {
		p.setVoices(1)
	}
	idx := p.notes
	for v := range p.t.Voices {
		p.t.Voices[v].Notes = append(p.t.Voices[v].Notes, Note{Kind: NoteSeparator, Line: p.line, ADSR: -1, Filter: -1, Gain: DefaultGain})
	}
	p.t.Program.grow(idx)
	p.t.Program.Steps[idx].Separator = true
	p.notes++
}

// addJump gives every jump a separator slot of its own.
func (p *parser) addJump(in Instr) {
	in.Line = p.line
	p.t.Program.Add(p.notes, in)
	p.addSeparator()
}

func (p *parser) parseTab(text string) error {
	body := strings.TrimSpace(text[len("TAB"):])
	cols := strings.Split(body, "|")
	if len(cols) > 0 && strings.TrimSpace(cols[0]) == "" {
		cols = cols[1:]
	}
	if len(cols) > 0 && strings.TrimSpace(cols[len(cols)-1]) == "" {
		cols = cols[:len(cols)-1]
	}
	if p.t.NumVoices == 0 {
		p.setVoices(max(len(cols), 1))
	}

	idx := p.notes
	p.t.Program.grow(idx)
	var firstErr error
	if len(cols) > p.t.NumVoices {
		firstErr = fmt.Errorf("%w: %d columns for %d voices", ErrBadValue, len(cols), p.t.NumVoices)
	}
	for v := range p.t.Voices {
		note := Note{Kind: NotePause, Line: p.line, ADSR: -1, Filter: -1, Gain: DefaultGain}
		if v < len(cols) {
			n, err := p.parseNote(strings.Fields(cols[v]))
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("voice %d: %w", v, err)
			}
			if err == nil {
				note = n
			}
		}
		p.t.Voices[v].Notes = append(p.t.Voices[v].Notes, note)
	}
	p.notes++
	return firstErr
}

func (p *parser) parseNote(tok []string) (Note, error) {
	n := Note{Kind: NotePause, Line: p.line, ADSR: -1, Filter: -1, Gain: DefaultGain}
	if len(tok) == 0 || tok[0] == "-" {
		return n, nil
	}
	if len(tok) < 3 {
		return n, fmt.Errorf("%w: note needs <pitch> <duration_ms> <instrument>", ErrMissingArgument)
	}
	freq, err := PitchFrequency(tok[0])
	if err != nil {
		return n, err
	}
	dur, err := strconv.ParseFloat(tok[1], 64)
	if err != nil || dur < 0 {
		return n, fmt.Errorf("%w: duration %q", ErrBadValue, tok[1])
	}
	n.Kind = NoteSound
	n.Pitch = tok[0]
	n.Frequency = freq
	n.DurationMS = dur
	n.Instrument = tok[2]
	for _, m := range tok[3:] {
		key, val, ok := modifier(m)
		if !ok {
			return n, fmt.Errorf("%w: %q", ErrUnknownModifier, m)
		}
		switch key {
		case "adsr":
			n.ADSR, err = strconv.Atoi(val)
		case "flt":
			n.Filter, err = strconv.Atoi(val)
		case "gain":
			n.Gain, err = strconv.ParseFloat(val, 64)
		default:
			return n, fmt.Errorf("%w: %q", ErrUnknownModifier, m)
		}
		if err != nil {
			return n, fmt.Errorf("%w: %q", ErrBadValue, m)
		}
	}
	return n, nil
}

func (p *parser) parseInstrument(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: instrument <name> <definition>", ErrMissingArgument)
	}
	name, def, mods := args[0], args[1], args[2:]
	if _, dup := p.t.Instruments[name]; dup {
		return fmt.Errorf("%w: instrument %q", ErrDuplicateName, name)
	}

	var in *Instrument
	switch {
	case strings.HasPrefix(def, "&"):
		lib, err := synth.ParseInstrument(def)
		if err != nil {
			return err
		}
		in = newInstrument(name, KindLibrary)
		in.Library = lib
	case strings.HasPrefix(def, "("):
		parts, err := parseWeighted(def)
		if err != nil {
			return err
		}
		in = newInstrument(name, KindWeighted)
		in.Parts = parts
	default:
		key, _, isMod := modifier(def)
		switch {
		case isMod && (key == "ring_mod_a" || key == "ring_mod_b"):
			in = newInstrument(name, KindRingMod)
			mods = args[1:]
		case isMod && (key == "conv_a" || key == "conv_b"):
			in = newInstrument(name, KindConv)
			mods = args[1:]
		default:
			shape, err := signal.ParseWaveshape(def)
			if err != nil {
				return err
			}
			in = newInstrument(name, KindBasic)
			in.Shape = shape
		}
	}

	// The instrument is kept even when a modifier is bad.
	err := applyInstrumentMods(in, mods)
	if (in.Kind == KindRingMod || in.Kind == KindConv) && (in.A == "" || in.B == "") {
		err = fmt.Errorf("%w: %v needs both operands", ErrMissingArgument, in.Kind)
	}
	p.t.Instruments[name] = in
	p.t.InstrumentOrder = append(p.t.InstrumentOrder, name)
	return err
}

func applyInstrumentMods(in *Instrument, mods []string) error {
	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, m := range mods {
		key, val, ok := modifier(m)
		if !ok {
			fail(fmt.Errorf("%w: %q", ErrUnknownModifier, m))
			continue
		}
		var err error
		switch key {
		case "ffx":
			in.Freq, err = signal.ParseFreqEffect(val)
		case "afx":
			in.Ampl, err = signal.ParseAmplEffect(val)
		case "pfx":
			in.Phase, err = signal.ParsePhaseEffect(val)
		case "params":
			in.Params, err = strconv.Atoi(val)
		case "adsr":
			in.ADSR, err = strconv.Atoi(val)
		case "flt":
			in.Filter, err = strconv.Atoi(val)
		case "gain":
			in.Gain, err = strconv.ParseFloat(val, 64)
		case "ring_mod_a", "conv_a":
			in.A = val
		case "ring_mod_b", "conv_b":
			in.B = val
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownModifier, m)
		}
		if err != nil {
			fail(fmt.Errorf("%w: %q: %v", ErrBadValue, m, err))
		}
	}
	return firstErr
}

func parseWeighted(def string) ([]WeightedRef, error) {
	if strings.Count(def, "(") != strings.Count(def, ")") {
		return nil, fmt.Errorf("%w: %q", ErrUnbalanced, def)
	}
	matches := parenPair.FindAllStringSubmatch(def, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: weighted average needs (weight,instrument) pairs", ErrMissingArgument)
	}
	parts := make([]WeightedRef, 0, len(matches))
	for _, m := range matches {
		w, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight %q", ErrBadValue, m[1])
		}
		parts = append(parts, WeightedRef{Weight: w, Name: m[2]})
	}
	return parts, nil
}

func (p *parser) parseADSR(text string, args []string) error {
	idx, err := intArg(args, 0)
	if err != nil {
		return err
	}
	if len(args) > 1 && strings.HasPrefix(args[1], "&") {
		e, err := envelope.Preset(args[1][1:])
		if err != nil {
			return err
		}
		p.t.ADSRs[idx] = e
		return nil
	}

	if strings.Count(text, "[") != strings.Count(text, "]") {
		return fmt.Errorf("%w: %q", ErrUnbalanced, text)
	}
	groups := bracketGroup.FindAllStringSubmatch(text, -1)
	if len(groups) != 4 {
		return fmt.Errorf("%w: adsr needs four [..] stages, got %d", ErrMissingArgument, len(groups))
	}

	var e envelope.ADSR
	if e.Attack, err = parseSegment(groups[0][1]); err != nil {
		return fmt.Errorf("attack: %w", err)
	}
	if e.Decay, err = parseSegment(groups[1][1]); err != nil {
		return fmt.Errorf("decay: %w", err)
	}
	if e.Sustain, err = parseSustain(groups[2][1]); err != nil {
		return fmt.Errorf("sustain: %w", err)
	}
	if e.Release, err = parseSegment(groups[3][1]); err != nil {
		return fmt.Errorf("release: %w", err)
	}
	p.t.ADSRs[idx] = e
	return nil
}

// parseSegment reads "mode ms [level0_pct [level1_pct]]".
func parseSegment(s string) (envelope.Segment, error) {
	f := strings.Fields(s)
	if len(f) < 2 {
		return envelope.Segment{}, fmt.Errorf("%w: [mode ms ...]", ErrMissingArgument)
	}
	mode, err := envelope.ParseMode(f[0])
	if err != nil {
		return envelope.Segment{}, err
	}
	nums, err := floats(f[1:])
	if err != nil {
		return envelope.Segment{}, err
	}
	seg := envelope.Segment{Mode: mode, Time: core.SecondsFromMillis(nums[0])}
	if len(nums) > 1 {
		seg.Start = envelope.At(nums[1] / 100)
	}
	if len(nums) > 2 {
		seg.End = envelope.At(nums[2] / 100)
	}
	return seg, nil
}

// parseSustain reads "level_pct [max_ms]".
func parseSustain(s string) (envelope.Sustain, error) {
	nums, err := floats(strings.Fields(s))
	if err != nil {
		return envelope.Sustain{}, err
	}
	if len(nums) == 0 {
		return envelope.Sustain{}, fmt.Errorf("%w: [sustain_pct max_ms]", ErrMissingArgument)
	}
	sus := envelope.Sustain{Level: core.Clamp(nums[0]/100, 0, 1)}
	if len(nums) > 1 {
		sus.MaxTime = core.SecondsFromMillis(nums[1])
	}
	return sus, nil
}

// parseFilter reads "idx type op [order cutoff bandwidth ripple normalize]".
func (p *parser) parseFilter(args []string) error {
	idx, err := intArg(args, 0)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("%w: filter <idx> <type> <op> ...", ErrMissingArgument)
	}
	a := filter.DefaultArgs()
	if a.Type, err = filter.ParseType(strings.ReplaceAll(args[1], "_", "")); err != nil {
		return err
	}
	if a.Op, err = filter.ParseOp(strings.ReplaceAll(args[2], "_", "")); err != nil {
		return err
	}
	if a.Type == filter.TypeChebyshevII {
		a.Ripple = 40
	}
	rest := args[3:]
	if len(rest) > 0 {
		if a.Order, err = strconv.Atoi(rest[0]); err != nil || a.Order <= 0 {
			return fmt.Errorf("%w: order %q", ErrBadValue, rest[0])
		}
	}
	targets := []*float64{&a.CutoffMult, &a.BandwidthMult, &a.Ripple}
	for i, ptr := range targets {
		if len(rest) <= i+1 {
			break
		}
		if *ptr, err = strconv.ParseFloat(rest[i+1], 64); err != nil {
			return fmt.Errorf("%w: %q", ErrBadValue, rest[i+1])
		}
	}
	if len(rest) > 4 {
		if a.Normalize, err = strconv.ParseBool(rest[4]); err != nil {
			return fmt.Errorf("%w: normalize %q", ErrBadValue, rest[4])
		}
	}
	p.t.Filters[idx] = a
	return nil
}

func (p *parser) parseParams(args []string) error {
	idx, err := intArg(args, 0)
	if err != nil {
		return err
	}
	var prm signal.Params
	var firstErr error
	for _, m := range args[1:] {
		key, val, ok := modifier(m)
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %q", ErrUnknownModifier, m)
			}
			continue
		}
		if err := setParam(&prm, key, val); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.t.Params[idx] = prm
	return firstErr
}

func setParam(prm *signal.Params, key, val string) error {
	if key == "arpeggio" || key == "arp" {
		steps, err := parseArpeggio(val)
		if err != nil {
			return err
		}
		prm.Arpeggio = steps
		return nil
	}
	if key == "noise_hold" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %s:%s", ErrBadValue, key, val)
		}
		prm.NoiseHold = n
		return nil
	}

	fields := map[string]*float64{
		"duty":            &prm.DutyCycle,
		"duty_sweep":      &prm.DutyCycleSweep,
		"min_freq":        &prm.MinFreq,
		"max_freq":        &prm.MaxFreq,
		"slide_vel":       &prm.SlideVel,
		"slide_acc":       &prm.SlideAcc,
		"vibrato_depth":   &prm.VibratoDepth,
		"vibrato_freq":    &prm.VibratoFreq,
		"vibrato_vel":     &prm.VibratoVel,
		"vibrato_acc":     &prm.VibratoAcc,
		"vibrato_max_vel": &prm.VibratoMaxVel,
		"noise_smoothing": &prm.NoiseSmoothing,
		"clamp_min":       &prm.SampleMin,
		"clamp_max":       &prm.SampleMax,
	}
	ptr, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModifier, key)
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("%w: %s:%s", ErrBadValue, key, val)
	}
	*ptr = v
	return nil
}

// parseArpeggio reads "(ms,factor)(ms,factor)...".
func parseArpeggio(val string) ([]signal.ArpeggioStep, error) {
	if strings.Count(val, "(") != strings.Count(val, ")") {
		return nil, fmt.Errorf("%w: %q", ErrUnbalanced, val)
	}
	matches := parenPair.FindAllStringSubmatch(val, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: arpeggio needs (ms,factor) pairs", ErrMissingArgument)
	}
	steps := make([]signal.ArpeggioStep, 0, len(matches))
	for _, m := range matches {
		at, err1 := strconv.ParseFloat(m[1], 64)
		factor, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: arpeggio (%s,%s)", ErrBadValue, m[1], m[2])
		}
		steps = append(steps, signal.ArpeggioStep{At: core.SecondsFromMillis(at), Factor: factor})
	}
	return steps, nil
}

// modifier splits "key:value" and lower-cases the key.
func modifier(tok string) (key, val string, ok bool) {
	key, val, ok = strings.Cut(tok, ":")
	if !ok || key == "" {
		return "", "", false
	}
	return strings.ToLower(key), val, true
}

// squeezeParens removes whitespace inside parentheses so that a
// parenthesised list survives splitting into fields.
func squeezeParens(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth = max(depth-1, 0)
		case depth > 0 && (r == ' ' || r == '\t'):
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, ErrMissingArgument
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, args[i])
	}
	return n, nil
}

func floatArg(args []string, i int) (float64, error) {
	if len(args) <= i {
		return 0, ErrMissingArgument
	}
	v, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadValue, args[i])
	}
	return v, nil
}

func floats(tok []string) ([]float64, error) {
	out := make([]float64, len(tok))
	for i, s := range tok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadValue, s)
		}
		out[i] = v
	}
	return out, nil
}
