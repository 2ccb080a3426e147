package cli

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/srtm-peaks/internal/domain"
)

// legacyArity lists the single-dash options of the classic command line
// together with their parameter counts.
var legacyArity = map[string]int{
	domain.KindCorners:      domain.BoundsArity(domain.KindCorners),
	domain.KindCenterRadius: domain.BoundsArity(domain.KindCenterRadius),
	domain.KindMapLink:      domain.BoundsArity(domain.KindMapLink),
	"corrxy":                2,
	"howmany":               1,
	"source":                1,
}

// RewriteLegacyArgs converts the classic space separated syntax, e.g.
// "-bounds1 10 20 11 21 -corrxy 0.1 0.2", into "--bounds1=10,20,11,21
// --corrxy=0.1,0.2". Other arguments pass through unchanged, as does
// everything after "--".
func RewriteLegacyArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			out = append(out, arg)
			continue
		}
		name := strings.TrimPrefix(arg, "-")
		arity, ok := legacyArity[name]
		if !ok {
			out = append(out, arg)
			continue
		}
		if i+arity >= len(args) {
			return nil, fmt.Errorf("-%s takes %d parameters, got %d: %w", name, arity, len(args)-i-1, domain.ErrInvalidArgument)
		}
		out = append(out, "--"+name+"="+strings.Join(args[i+1:i+1+arity], ","))
		i += arity
	}
	return out, nil
}
