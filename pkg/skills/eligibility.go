package skills

import (
	"context"
	"os"
	"os/exec"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/jingkaihe/chatcmd/pkg/logger"
)

// EligibilityContext describes the environment skills will run in
type EligibilityContext struct {
	Platforms []string                  // platform tags, e.g. "linux", "darwin"
	HasBin    func(name string) bool    // reports whether a binary is available
	HasAnyBin func(names []string) bool // reports whether any binary is available
	Note      string                    // surfaced in the skills prompt
}

// ConfigLookup resolves a dotted config path
type ConfigLookup func(path string) (interface{}, bool)

// FilterOptions configures FilterEntries
type FilterOptions struct {
	// Eligibility defaults to HostEligibility() when nil
	Eligibility *EligibilityContext
	// Config supplies per-skill overrides and the bundled allowlist
	Config *Config
	// ConfigLookup resolves requires.config paths; no path is truthy when nil
	ConfigLookup ConfigLookup
	// LookupEnv defaults to os.LookupEnv
	LookupEnv func(key string) (string, bool)
	// SkillFilter restricts the result to the named skills when non-nil. A
	// non-nil filter with no usable names yields no skills.
	SkillFilter *[]string
}

var (
	hostEligibilityOnce sync.Once
	hostEligibility     *EligibilityContext
)

// HostEligibility describes the current host: runtime.GOOS as the platform
// and PATH lookups for binaries. Lookups are cached.
func HostEligibility() *EligibilityContext {
	hostEligibilityOnce.Do(func() {
		var mu sync.Mutex
		cache := map[string]bool{}
		hasBin := func(name string) bool {
			mu.Lock()
			defer mu.Unlock()
			if found, ok := cache[name]; ok {
				return found
			}
			_, err := exec.LookPath(name)
			cache[name] = err == nil
			return err == nil
		}
		hostEligibility = &EligibilityContext{
			Platforms: []string{runtime.GOOS},
			HasBin:    hasBin,
			HasAnyBin: func(names []string) bool {
				for _, name := range names {
					if hasBin(name) {
						return true
					}
				}
				return false
			},
		}
	})
	return hostEligibility
}

func normalizePlatform(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "win32" {
		return "windows"
	}
	return p
}

func platformAllowed(osList, platforms []string) bool {
	if len(osList) == 0 {
		return true
	}
	for _, allowed := range osList {
		for _, platform := range platforms {
			if normalizePlatform(allowed) == normalizePlatform(platform) {
				return true
			}
		}
	}
	return false
}

func isTruthy(value interface{}) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Map, reflect.Slice:
		return true
	}
	return true
}

func bundledAllowed(entry Entry, allowBundled []string) bool {
	if len(allowBundled) == 0 || entry.Skill.Source != SourceBundled {
		return true
	}
	key := entry.Key()
	for _, name := range allowBundled {
		if name == key || name == entry.Skill.Name {
			return true
		}
	}
	return false
}

// ShouldInclude reports whether a single entry is eligible
func ShouldInclude(entry Entry, opts FilterOptions) bool {
	eligibility := opts.Eligibility
	if eligibility == nil {
		eligibility = HostEligibility()
	}
	entryCfg, _ := opts.Config.Entry(entry.Key())

	if entryCfg.Enabled != nil && !*entryCfg.Enabled {
		return false
	}
	if opts.Config != nil && !bundledAllowed(entry, opts.Config.AllowBundled) {
		return false
	}

	md := entry.Metadata
	if md == nil {
		return true
	}
	if !platformAllowed(md.OS, eligibility.Platforms) {
		return false
	}
	if md.Always != nil && *md.Always {
		return true
	}

	req := md.Requires
	if req == nil {
		return true
	}

	for _, bin := range req.Bins {
		if eligibility.HasBin == nil || !eligibility.HasBin(bin) {
			return false
		}
	}
	if len(req.AnyBins) > 0 {
		if eligibility.HasAnyBin == nil || !eligibility.HasAnyBin(req.AnyBins) {
			return false
		}
	}

	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	for _, name := range req.Env {
		if value, ok := lookupEnv(name); ok && value != "" {
			continue
		}
		if entryCfg.Env[name] != "" {
			continue
		}
		if entryCfg.APIKey != "" && md.PrimaryEnv == name {
			continue
		}
		return false
	}

	for _, path := range req.Config {
		if opts.ConfigLookup == nil {
			return false
		}
		value, ok := opts.ConfigLookup(path)
		if !ok || !isTruthy(value) {
			return false
		}
	}

	return true
}

// FilterEntries removes entries whose requirements are not met, then applies
// the optional skill filter. Input order is preserved.
func FilterEntries(ctx context.Context, entries []Entry, opts FilterOptions) []Entry {
	filtered := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if ShouldInclude(entry, opts) {
			filtered = append(filtered, entry)
			continue
		}
		logger.G(ctx).WithField("skill", entry.Skill.Name).Debug("skill not eligible")
	}

	if opts.SkillFilter == nil {
		return filtered
	}

	allowed := trimList(*opts.SkillFilter)
	log := logger.G(ctx).WithField("filter", allowed)
	if len(allowed) == 0 {
		log.Debug("empty skill filter, no skills selected")
		return []Entry{}
	}

	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	selected := make([]Entry, 0, len(filtered))
	for _, entry := range filtered {
		if _, ok := set[entry.Skill.Name]; ok {
			selected = append(selected, entry)
		}
	}
	log.WithField("selected", len(selected)).Debug("applied skill filter")
	return selected
}
