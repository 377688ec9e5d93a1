package signal

import (
	"log/slog"
	"time"
	"unicode"
)

// Morse timing. A dot is one short pulse, a dash two slots; symbols within a
// letter are separated by one dark slot, letters by three.
const (
	dotLen    = 200 * time.Millisecond
	dashLen   = 400 * time.Millisecond
	symbolGap = 200 * time.Millisecond
	letterGap = 600 * time.Millisecond
)

// morseAlphabet is the International Morse table for every glyph the readout
// can be configured to emit.
var morseAlphabet = map[rune]string{
	'a': ".-", 'b': "-...", 'c': "-.-.", 'd': "-..", 'e': ".",
	'f': "..-.", 'g': "--.", 'h': "....", 'i': "..", 'j': ".---",
	'k': "-.-", 'l': ".-..", 'm': "--", 'n': "-.", 'o': "---",
	'p': ".--.", 'q': "--.-", 'r': ".-.", 's': "...", 't': "-",
	'u': "..-", 'v': "...-", 'w': ".--", 'x': "-..-", 'y': "-.--",
	'z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
}

// defaultGlyph (question mark) is blinked for anything the table does not map.
const defaultGlyph = "..--.."

// Failure digits, one per condition that can go wrong in a probe.
const (
	digitTimeSync = '1'
	digitSample   = '2'
	digitUpload   = '3'
)

// MorseSignaler blinks a fixed version glyph followed by one digit per failed
// condition. The readout repeats until the next probe is due; remaining time
// is recomputed after every pass, so a long readout is simply cut off by the
// deadline check rather than preempted.
type MorseSignaler struct {
	line    Line
	clock   Clock
	version rune
	log     *slog.Logger
}

func NewMorseSignaler(line Line, clock Clock, version rune, log *slog.Logger) *MorseSignaler {
	return &MorseSignaler{line: line, clock: clock, version: version, log: log}
}

func (m *MorseSignaler) Signal(o Outcome, deadline time.Time) {
	msg := m.message(o)
	for m.clock.Now().Before(deadline) {
		for _, r := range msg {
			m.playGlyph(r)
		}
	}
	m.line.Set(false)
}

// message is the version glyph plus one failure digit per failed condition. A
// nominal cycle blinks the version glyph alone.
func (m *MorseSignaler) message(o Outcome) []rune {
	msg := []rune{m.version}
	if !o.TimeSyncOK {
		msg = append(msg, digitTimeSync)
	}
	if !o.SampleOK {
		msg = append(msg, digitSample)
	}
	if !o.UploadOK {
		msg = append(msg, digitUpload)
	}
	return msg
}

func (m *MorseSignaler) playGlyph(r rune) {
	code, ok := morseAlphabet[unicode.ToLower(r)]
	if !ok {
		m.log.Warn("no morse encoding for glyph, using fallback", "glyph", string(r))
		code = defaultGlyph
	}
	for i, sym := range code {
		if i > 0 {
			m.clock.Sleep(symbolGap)
		}
		d := dotLen
		if sym == '-' {
			d = dashLen
		}
		m.line.Set(true)
		m.clock.Sleep(d)
		m.line.Set(false)
	}
	m.clock.Sleep(letterGap)
}
