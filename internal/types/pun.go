package types

import (
	"fmt"

	"abigen/internal/diag"
)

// PunEnv describes the target a pun is resolved for. Today only the
// language name participates in selector matching.
type PunEnv struct {
	Lang string
}

func (e PunEnv) String() string {
	return fmt.Sprintf("lang=%q", e.Lang)
}

// ResolvePun returns the type of the first block whose selector matches env.
// Block order is significant; a default block only acts as a fallback when
// it is written last.
func ResolvePun(pun *PunTy, env PunEnv) (TyIdx, error) {
	for _, block := range pun.Blocks {
		if block.Selector.Matches(env.Lang) {
			return block.Real, nil
		}
	}
	return 0, diag.Errorf(diag.TypPunNoMatch, pun.Name.Span,
		"pun %q has no block matching %s", pun.Name.Name, env).
		WithFix(fmt.Sprintf("add a `lang(%s)` block or a trailing `default` block", env.Lang))
}
