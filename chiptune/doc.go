// Package chiptune parses and plays tune scripts.
//
// A script is line oriented. Each line starts with a keyword:
//
//	NUM_VOICES 2
//	TIME_STEP_MS 150
//	instrument lead square afx:EXP_DECAY adsr:0
//	instrument bass &GUITAR gain:0.7
//	adsr 0 [LIN 10][EXP 50][60][LOG 80]
//	filter 0 Butterworth LowPass 2 4 1 1 false
//	LABEL verse
//	TAB | C4 200 lead | E2 400 bass |
//	TAB | - - | - - |
//	GOTO_TIMES verse 1
//	END
//
// Parsing produces a [Tune]: per-voice note lists that stay index aligned,
// the instrument and effect tables, and a [Program] holding the control flow
// (labels, repeats, segno/coda/fine, endings, tempo and gain changes) per
// note index. A [Cursor] walks a Program independently of audio; the
// [Engine] and [Render] both drive one.
package chiptune
