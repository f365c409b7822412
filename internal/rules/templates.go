package rules

import "hash/fnv"

// pickTemplate chooses one of several message templates for a rule.
// The pick is a hash of the insight's evidence fingerprint, not a random
// draw: the same trigger always produces the same wording, which keeps
// whole generation cycles reproducible. The source app drew templates
// with an unseeded RNG; that made its output untestable.
func pickTemplate(seed string, options ...string) string {
	if len(options) == 0 {
		return ""
	}
	if len(options) == 1 {
		return options[0]
	}
	h := fnv.New32a()
	h.Write([]byte(seed))
	return options[int(h.Sum32())%len(options)]
}
