package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// env reads typed values through a LookupFunc and records every missing or
// malformed key so they can be reported together.
type env struct {
	lookup LookupFunc
	errs   []error
}

func (e *env) get(k string) string {
	v, _ := e.lookup(k)
	return strings.TrimSpace(v)
}

func (e *env) must(k string) string {
	v := e.get(k)
	if v == "" {
		e.errs = append(e.errs, fmt.Errorf("missing required env var: %s", k))
	}
	return v
}

func (e *env) str(k, d string) string {
	if v := e.get(k); v != "" {
		return v
	}
	return d
}

func (e *env) boolean(k string, d bool) bool {
	v := e.get(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	e.errs = append(e.errs, fmt.Errorf("invalid bool for %s: %q", k, v))
	return d
}

func (e *env) integer(k string, d int) int {
	v := e.get(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid int for %s: %q", k, v))
		return d
	}
	return n
}

func (e *env) duration(k string, d time.Duration) time.Duration {
	v := e.get(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil || dur <= 0 {
		e.errs = append(e.errs, fmt.Errorf("invalid duration for %s: %q", k, v))
		return d
	}
	return dur
}

// list splits a comma separated value, dropping empty items.
func (e *env) list(k string, d []string) []string {
	v := e.get(k)
	if v == "" {
		return d
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
