// Package sampleconf implements the hot-reloaded sampling policy store:
// a ratio, a whitelist of always-sampled uids, and a per-command floor
// guarantee, all readable from many goroutines without blocking on the
// rare reload.
package sampleconf

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const (
	// EnvConfPath names the environment variable that overrides the
	// default sampling config path.
	EnvConfPath = "TRACING_CTRL_CONF"
	// DefaultConfPath is used when EnvConfPath is unset.
	DefaultConfPath = "/etc/conf/tracing.yml"

	maxRatio       = 10000
	maxCmd         = 131072
	floorInterval  = 300 // seconds
	reloadInterval = 60  // seconds
)

// reloadMetrics is the minimal counter surface Store reports reloads
// and floor triggers through.
type reloadMetrics interface {
	IncConfigReloadOK()
	IncConfigReloadErr()
	IncFloorTriggered()
	SetActiveRatio(ratio uint32)
}

type noopMetrics struct{}

func (noopMetrics) IncConfigReloadOK()         {}
func (noopMetrics) IncConfigReloadErr()        {}
func (noopMetrics) IncFloorTriggered()         {}
func (noopMetrics) SetActiveRatio(uint32)      {}

// yamlConfig mirrors the sampler: block of the config file.
type yamlConfig struct {
	Sampler struct {
		Ratio     uint32   `yaml:"ratio"`
		WhiteList []uint32 `yaml:"white-list"`
	} `yaml:"sampler"`
}

// Store holds the current sampling policy and knows how to refresh
// itself from disk at most once per reloadInterval.
type Store struct {
	path    string
	logger  *zap.Logger
	metrics reloadMetrics

	ratio     atomic.Uint32
	activeIdx atomic.Uint32
	uidLists  [2]atomic.Value // holds map[uint32]struct{}

	cmdLast []atomic.Int64

	lastLoadUnix  atomic.Int64
	lastMtimeUnix atomic.Int64
	reloadMu      sync.Mutex
}

// New builds a Store reading from path. It performs one synchronous
// load at construction time so the first request after startup already
// sees the configured ratio/whitelist; a missing or malformed file
// simply leaves the default policy (ratio 10000, i.e. always sample,
// and an empty whitelist) in place, matching the "initialisation never
// fails" guarantee.
func New(path string, logger *zap.Logger, metrics reloadMetrics) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	s := &Store{
		path:    path,
		logger:  logger,
		metrics: metrics,
		cmdLast: make([]atomic.Int64, maxCmd),
	}
	// Default to always-sample until a config file says otherwise: a
	// missing or unparseable file must not silently drop every root
	// span.
	s.ratio.Store(maxRatio)
	s.metrics.SetActiveRatio(maxRatio)
	s.uidLists[0].Store(map[uint32]struct{}{})
	s.uidLists[1].Store(map[uint32]struct{}{})
	s.reload(true)
	return s
}

// ResolveConfPath returns the environment override when set, else
// DefaultConfPath.
func ResolveConfPath() string {
	if p := os.Getenv(EnvConfPath); p != "" {
		return p
	}
	return DefaultConfPath
}

// CheckPass decides whether a root span should be sampled. cmd and uid
// of 0 are treated as "not present". rot (root-only) must be true or
// the call returns false unconditionally: only root spans are ever
// subject to sampling, children always inherit their parent's decision
// through sdktrace.ParentBased.
//
// Order of checks, in order of precedence: whitelist hit, 100% ratio
// shortcut, probabilistic draw, per-command floor guarantee. This
// ordering (whitelist and floor apply even when ratio is 0) matches
// the reference sampler's actual behavior rather than a literal
// top-to-bottom reading of an early "ratio == 0" return, which would
// make the whitelist and floor guarantee unreachable at ratio 0.
func (s *Store) CheckPass(uid, cmd uint32, rot bool) bool {
	if !rot {
		return false
	}

	s.maybeReload()

	ratio := s.ratio.Load()

	if uid > 0 {
		idx := s.activeIdx.Load() & 1
		set, _ := s.uidLists[idx].Load().(map[uint32]struct{})
		if _, ok := set[uid]; ok {
			s.markCmd(cmd)
			return true
		}
	}

	if ratio >= maxRatio {
		s.markCmd(cmd)
		return true
	}

	if ratio > 0 && randRatio() < ratio {
		s.markCmd(cmd)
		return true
	}

	return s.floorCheck(cmd)
}

func (s *Store) markCmd(cmd uint32) {
	if cmd == 0 || cmd >= maxCmd {
		return
	}
	s.cmdLast[cmd].Store(time.Now().Unix())
}

func (s *Store) floorCheck(cmd uint32) bool {
	if cmd == 0 || cmd >= maxCmd {
		return false
	}
	now := time.Now().Unix()
	last := s.cmdLast[cmd].Load()
	if now > last+floorInterval {
		// CAS is attempted purely to reduce (not eliminate) duplicate
		// floor grants under contention; the caller is told "true"
		// regardless of whether this goroutine wins the swap.
		s.cmdLast[cmd].CAS(last, now)
		s.metrics.IncFloorTriggered()
		return true
	}
	return false
}

func (s *Store) maybeReload() {
	now := time.Now().Unix()
	if now < s.lastLoadUnix.Load()+reloadInterval {
		return
	}
	s.reload(false)
}

func (s *Store) reload(force bool) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	now := time.Now().Unix()
	if !force && now < s.lastLoadUnix.Load()+reloadInterval {
		return
	}
	s.lastLoadUnix.Store(now)

	info, err := os.Stat(s.path)
	if err != nil {
		if !force {
			s.logger.Warn("sampling config stat failed", zap.String("path", s.path), zap.Error(err))
		}
		return
	}
	mtime := info.ModTime().Unix()
	if !force && mtime <= s.lastMtimeUnix.Load() {
		return
	}

	cfg, err := loadYAML(s.path)
	if err != nil {
		s.logger.Warn("sampling config load failed", zap.String("path", s.path), zap.Error(err))
		s.metrics.IncConfigReloadErr()
		return
	}

	s.applyConfig(cfg)
	s.lastMtimeUnix.Store(mtime)
	s.metrics.IncConfigReloadOK()
}

func (s *Store) applyConfig(cfg *yamlConfig) {
	ratio := cfg.Sampler.Ratio
	if ratio > maxRatio {
		ratio = maxRatio
	}
	s.ratio.Store(ratio)
	s.metrics.SetActiveRatio(ratio)

	next := make(map[uint32]struct{}, len(cfg.Sampler.WhiteList))
	for _, uid := range cfg.Sampler.WhiteList {
		next[uid] = struct{}{}
	}

	inactiveIdx := (s.activeIdx.Load() + 1) & 1
	s.uidLists[inactiveIdx].Store(next)
	s.activeIdx.Store(inactiveIdx)
}

func loadYAML(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read sampling config")
	}
	cfg := &yamlConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse sampling config")
	}
	return cfg, nil
}

// randRatio draws a uniform value in [0, maxRatio).
func randRatio() uint32 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return uint32(binary.BigEndian.Uint64(b[:]) % maxRatio)
}
