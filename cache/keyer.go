package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Key builds a deterministic store key from a pipeline name, a target
// call name, and an optional argument set. Arguments are canonicalized
// (sorted by name) before hashing so key identity does not depend on
// map iteration order.
func Key(pipeline, call string, args map[string]any) string {
	var b strings.Builder
	b.WriteString("result:")
	b.WriteString(pipeline)
	b.WriteString(":")
	b.WriteString(call)
	if len(args) > 0 {
		b.WriteString(":")
		b.WriteString(hashArgs(args))
	}
	return b.String()
}

func hashArgs(args map[string]any) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		raw, err := json.Marshal(args[name])
		if err != nil {
			raw = []byte(fmt.Sprintf("%v", args[name]))
		}
		fmt.Fprintf(h, "%s=%s;", name, raw)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
