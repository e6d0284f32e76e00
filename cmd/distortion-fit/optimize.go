package main

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-distortion/analysis"
	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-distortion/internal/wavio"
	"github.com/cwbudde/mayfly"
	"github.com/sirupsen/logrus"
)

type optimizationConfig struct {
	dry              *wavio.Audio
	reference        []float64
	base             distortion.Settings
	special          float64
	tanhMode         distortion.TanhMode
	defs             []knobDef
	initCandidate    candidate
	seed             int64
	timeBudget       float64
	maxEvals         int
	reportEvery      int
	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
	workers          int
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	evals       int
	elapsed     float64
}

type optimizationState struct {
	mu          sync.Mutex
	best        candidate
	bestMetrics analysis.Metrics
}

// renderCandidate runs a copy of dry through the effect and returns the
// mono mix of the result.
func renderCandidate(dry *wavio.Audio, st distortion.Settings, mode distortion.TanhMode) ([]float64, *wavio.Audio, error) {
	if dry == nil || dry.NumChannels() == 0 {
		return nil, nil, fmt.Errorf("no dry audio")
	}
	fx, err := distortion.NewEffect(distortion.WithTanhMode(mode))
	if err != nil {
		return nil, nil, err
	}
	fx.Params().Apply(st)

	wet := &wavio.Audio{SampleRate: dry.SampleRate, Channels: make([][]float32, dry.NumChannels())}
	for i, ch := range dry.Channels {
		wet.Channels[i] = append([]float32(nil), ch...)
	}
	if err := distortion.ProcessOffline(fx, wet.Channels, float64(dry.SampleRate), distortion.DefaultBlockSize); err != nil {
		return nil, nil, err
	}
	return wavio.MixDown(wet), wet, nil
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	evaluate := func(c candidate) (analysis.Metrics, error) {
		st := applyCandidate(cfg.base, cfg.special, cfg.defs, c)
		mono, _, err := renderCandidate(cfg.dry, st, cfg.tanhMode)
		if err != nil {
			return analysis.Metrics{}, err
		}
		return analysis.Compare(cfg.reference, mono, cfg.dry.SampleRate), nil
	}

	log := logrus.WithField("special", cfg.special)
	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))
	variant := strings.ToLower(cfg.mayflyVariant)

	best := cloneCandidate(cfg.initCandidate)
	bestM, err := evaluate(best)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation failed: %w", err)
	}
	log.WithFields(logrus.Fields{
		"score":      bestM.Score,
		"similarity": bestM.Similarity,
	}).Info("Start")

	state := &optimizationState{
		best:        best,
		bestMetrics: bestM,
	}
	var evals int64 = 1
	var rounds int64
	var improves int64

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if time.Now().After(deadline) {
					return
				}
				if atomic.LoadInt64(&evals) >= int64(cfg.maxEvals) {
					return
				}

				round := int(atomic.AddInt64(&rounds, 1))
				remaining := cfg.maxEvals - int(atomic.LoadInt64(&evals))
				if remaining <= 0 {
					return
				}
				budget := minInt(cfg.mayflyRoundEvals, remaining)
				iters := maxInt(1, budget/(2*cfg.mayflyPop))

				mayflyConfig, err := newMayflyConfig(variant, cfg.mayflyPop, len(cfg.defs), iters)
				if err != nil {
					log.WithError(err).WithField("round", round).Error("Mayfly round setup failed")
					return
				}
				mayflyConfig.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
				mayflyConfig.ObjectiveFunc = func(pos []float64) float64 {
					if time.Now().After(deadline) {
						return currentBestScore(state) + 1.0
					}
					evalNum, ok := reserveEval(&evals, cfg.maxEvals)
					if !ok {
						return currentBestScore(state) + 1.0
					}

					cand := fromNormalized(pos, cfg.defs)
					m, err := evaluate(cand)
					if err != nil {
						return currentBestScore(state) + 0.8
					}

					improved := false
					var improveNum int64
					state.mu.Lock()
					if m.Score < state.bestMetrics.Score {
						state.best = cloneCandidate(cand)
						state.bestMetrics = m
						improved = true
						improveNum = atomic.AddInt64(&improves, 1)
					}
					bestScore := state.bestMetrics.Score
					state.mu.Unlock()

					if improved {
						log.WithFields(logrus.Fields{
							"improve":    improveNum,
							"eval":       evalNum,
							"score":      m.Score,
							"similarity": m.Similarity,
						}).Info("Improved")
					}
					if cfg.reportEvery > 0 && evalNum%int64(cfg.reportEvery) == 0 {
						log.WithFields(logrus.Fields{
							"round":   round,
							"eval":    evalNum,
							"elapsed": time.Since(start).Seconds(),
							"best":    bestScore,
						}).Debug("Progress")
					}
					return m.Score
				}

				if _, err := runMayfly(mayflyConfig); err != nil {
					log.WithError(err).WithField("round", round).Warn("Mayfly round failed")
				}
			}
		}()
	}
	wg.Wait()

	state.mu.Lock()
	finalBest := cloneCandidate(state.best)
	finalMetrics := state.bestMetrics
	state.mu.Unlock()

	return &optimizationResult{
		best:        finalBest,
		bestMetrics: finalMetrics,
		evals:       int(atomic.LoadInt64(&evals)),
		elapsed:     time.Since(start).Seconds(),
	}, nil
}

func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

func currentBestScore(state *optimizationState) float64 {
	state.mu.Lock()
	score := state.bestMetrics.Score
	state.mu.Unlock()
	return score
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	// NC/2 parent pairs are drawn from both populations.
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
