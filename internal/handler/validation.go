package handler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
			_, ok := normalizeTicker(fl.Field().String())
			return ok
		})
		if err != nil {
			panic(fmt.Sprintf("register ticker validation: %v", err))
		}
	}
}

// normalizeTicker upper-cases s and reports whether it looks like a listed
// symbol (letters, digits, dot or dash; BRK.B and RDS-A are accepted).
func normalizeTicker(s string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(s))
	return t, tickerPattern.MatchString(t)
}

func splitTickers(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		t, ok := normalizeTicker(part)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
