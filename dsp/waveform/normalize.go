package waveform

// Normalize rescales w in place so that its peak equals 1.
// A silent waveform is left unchanged.
func Normalize(w *Waveform) {
	NormalizeScale(w, 1)
}

// NormalizeScale rescales w in place so that its peak equals target.
func NormalizeScale(w *Waveform, target float64) {
	peak := w.Peak()
	if peak == 0 {
		return
	}
	w.Scale(target / peak)
}

// NormalizeOver rescales w only when its peak exceeds limit, bringing the peak
// down to exactly limit. Quieter waveforms are never amplified.
func NormalizeOver(w *Waveform, limit float64) {
	peak := w.Peak()
	if peak <= limit || peak == 0 {
		return
	}
	w.Scale(limit / peak)
}
