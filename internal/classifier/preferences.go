package classifier

import (
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"trading-personality/internal/logger"
	"trading-personality/internal/models"
)

// Method names the scorer an archetype's probability is taken from.
type Method string

const (
	MethodHeuristic     Method = "heuristic"
	MethodProbabilistic Method = "probabilistic"
)

func parseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodHeuristic, MethodProbabilistic:
		return Method(s), true
	}
	return "", false
}

// PreferencePolicy picks the scorer per archetype.
type PreferencePolicy interface {
	Preferred(a models.Archetype) Method
}

// StaticPreferences is a fixed table. Unlisted archetypes use the
// probabilistic scorer.
type StaticPreferences map[models.Archetype]Method

func (p StaticPreferences) Preferred(a models.Archetype) Method {
	if m, ok := p[a]; ok {
		return m
	}
	return MethodProbabilistic
}

// DefaultPreferences trusts the hand formulas for styles with a clear
// rule-based signature.
func DefaultPreferences() StaticPreferences {
	return StaticPreferences{
		models.ArchetypeIncome:      MethodHeuristic,
		models.ArchetypeDayTrader:   MethodHeuristic,
		models.ArchetypeEventDriven: MethodHeuristic,
		models.ArchetypePassiveDCA:  MethodHeuristic,
	}
}

// FilePreferences reads the table from a YAML file of the form
//
//	preferences:
//	  income: heuristic
//	  momentum: probabilistic
//
// and, when watching, reloads it on change. Readers always see a complete table.
type FilePreferences struct {
	v       *viper.Viper
	logger  *zap.Logger
	current atomic.Pointer[StaticPreferences]
}

// LoadFilePreferences reads path and optionally watches it for changes.
func LoadFilePreferences(path string, watch bool, l *zap.Logger) (*FilePreferences, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	p := &FilePreferences{v: v, logger: logger.OrNop(l).Named("preferences")}
	if err := p.Reload(); err != nil {
		return nil, err
	}

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			if err := p.Reload(); err != nil {
				p.logger.Error("Failed to reload preferences, keeping previous table",
					zap.String("file", e.Name), zap.Error(err))
				return
			}
			p.logger.Info("Preferences reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}
	return p, nil
}

// Reload re-reads the file and swaps the table in. On error the previous
// table stays active.
func (p *FilePreferences) Reload() error {
	if err := p.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	table, err := parsePreferences(p.v.GetStringMapString("preferences"))
	if err != nil {
		return err
	}
	p.current.Store(&table)
	return nil
}

func (p *FilePreferences) Preferred(a models.Archetype) Method {
	table := p.current.Load()
	if table == nil {
		return MethodProbabilistic
	}
	return table.Preferred(a)
}

func parsePreferences(raw map[string]string) (StaticPreferences, error) {
	table := make(StaticPreferences, len(raw))
	for name, method := range raw {
		a, ok := models.ParseArchetype(name)
		if !ok {
			return nil, fmt.Errorf("unknown archetype %q in preferences", name)
		}
		m, ok := parseMethod(method)
		if !ok {
			return nil, fmt.Errorf("unknown method %q for %s", method, name)
		}
		table[a] = m
	}
	return table, nil
}
