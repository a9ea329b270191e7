package adapters

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
)

// CacheRecorder counts cache lookups. monitoring.Metrics satisfies it.
type CacheRecorder interface {
	IncrementCacheHit()
	IncrementCacheMiss()
}

// CachedEmbedder serves repeated texts from a vector cache and only sends
// misses to the wrapped embedder
type CachedEmbedder struct {
	next    embedding.Embedder
	cache   *cache.VectorCache
	model   string
	metrics CacheRecorder
	logger  *monitoring.Logger
}

var _ embedding.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps next. model namespaces the keys so switching models
// never returns stale vectors. metrics and logger may be nil.
func NewCachedEmbedder(next embedding.Embedder, vc *cache.VectorCache, model string, metrics CacheRecorder, logger *monitoring.Logger) *CachedEmbedder {
	if logger == nil {
		logger = monitoring.NewNopLogger()
	}
	return &CachedEmbedder{next: next, cache: vc, model: model, metrics: metrics, logger: logger}
}

// EmbedStrings returns cached vectors where possible. Cache errors are logged
// and treated as misses.
func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	keys := make([]string, len(texts))

	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		keys[i] = cache.Key(c.model, t)
		vec, ok, err := c.cache.Get(ctx, keys[i])
		if err != nil {
			c.logger.Warn("Embedding cache read failed", zap.Error(err))
		}
		c.logger.CacheLogger("get", keys[i], ok)
		c.record(ok)
		if ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.EmbedStrings(ctx, missTexts, opts...)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := c.cache.Set(ctx, keys[i], vecs[j]); err != nil {
			c.logger.Warn("Embedding cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

func (c *CachedEmbedder) record(hit bool) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.IncrementCacheHit()
	} else {
		c.metrics.IncrementCacheMiss()
	}
}
