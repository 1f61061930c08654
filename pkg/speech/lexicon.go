package speech

// DefaultLexicon lists the filler tokens and phrases counted as disfluencies.
// Slovak and English entries are mixed because recognition runs in sk-SK but
// speakers code-switch. The bare particle "no" is deliberately absent: it is
// a plain negation in English and a discourse particle in Slovak, and is
// counted through the short-fragment hesitation rule instead.
func DefaultLexicon() []string {
	return []string{
		"ehm", "eh", "hm", "hmm", "akože", "takže",
		"vlastne", "proste", "ako", "um", "uh", "like", "you know", "actually",
		"i mean", "sort of", "kind of", "literally", "basically", "right", "okay", "ok", "well",
	}
}
