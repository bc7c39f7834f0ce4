package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/texgen"
)

// ParseColor reads "#rrggbb", "rrggbb" or a decimal "r,g,b" triple.
func ParseColor(s string) (texgen.RGB, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		return parseTriple(s)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return texgen.RGB{}, fmt.Errorf("%w: color %q is not #rrggbb", texgen.ErrInvalidParameter, s)
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return texgen.RGB{}, fmt.Errorf("%w: color %q: %w", texgen.ErrInvalidParameter, s, err)
	}
	return texgen.RGBFromColorful(col), nil
}

func parseTriple(s string) (texgen.RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return texgen.RGB{}, fmt.Errorf("%w: color %q needs three channels", texgen.ErrInvalidParameter, s)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return texgen.RGB{}, fmt.Errorf("%w: color %q: channel %d: %w", texgen.ErrInvalidParameter, s, i, err)
		}
		ch[i] = uint8(v)
	}
	return texgen.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}
