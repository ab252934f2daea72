package plancache

import (
	"container/list"
	"sync"

	"strategos/internal/app/fingerprint"
	"strategos/internal/domain/tactics"
)

type Config struct {
	Capacity int
	// TTLTicks bounds how long a cached plan may be replayed, in world
	// ticks rather than wall time.
	TTLTicks int64
	// MaxHits evicts an entry after it has been served this many times,
	// so one lucky plan cannot dominate a long engagement.
	MaxHits int
}

func DefaultConfig() Config {
	return Config{
		Capacity: tactics.DefaultCacheCapacity,
		TTLTicks: tactics.DefaultCacheTTLTicks,
		MaxHits:  tactics.DefaultCacheMaxHits,
	}
}

// Cache holds previously validated plans keyed by situation fingerprint.
// Only plans that already passed validation belong here; the arbiter still
// re-validates on read because a fingerprint bucket is coarser than a
// snapshot.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	order   *list.List // front = most recently used
	entries map[fingerprint.Situation]*list.Element
}

type entry struct {
	key        fingerprint.Situation
	plan       tactics.PlanIntent
	storedTick int64
	hits       int
}

func New(cfg Config) *Cache {
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.TTLTicks <= 0 {
		cfg.TTLTicks = def.TTLTicks
	}
	if cfg.MaxHits <= 0 {
		cfg.MaxHits = def.MaxHits
	}
	return &Cache{
		cfg:     cfg,
		order:   list.New(),
		entries: make(map[fingerprint.Situation]*list.Element, cfg.Capacity),
	}
}

// Get returns a copy of the cached plan for key, if one is present, fresh,
// and under its hit cap. Expired or capped entries are evicted on the way
// out.
func (c *Cache) Get(key fingerprint.Situation, nowTick int64) (tactics.PlanIntent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return tactics.PlanIntent{}, false
	}
	e := el.Value.(*entry)
	if nowTick-e.storedTick > c.cfg.TTLTicks {
		c.remove(el)
		return tactics.PlanIntent{}, false
	}
	e.hits++
	if e.hits >= c.cfg.MaxHits {
		plan := copyPlan(e.plan)
		c.remove(el)
		return plan, true
	}
	c.order.MoveToFront(el)
	return copyPlan(e.plan), true
}

// Put stores a validated plan. An existing entry for the key is replaced
// and its hit count reset.
func (c *Cache) Put(key fingerprint.Situation, nowTick int64, plan tactics.PlanIntent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.plan = copyPlan(plan)
		e.storedTick = nowTick
		e.hits = 0
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.cfg.Capacity {
		c.remove(c.order.Back())
	}
	el := c.order.PushFront(&entry{key: key, plan: copyPlan(plan), storedTick: nowTick})
	c.entries[key] = el
}

// Evict drops the entry for key, if present. The arbiter calls this when a
// cached plan fails re-validation.
func (c *Cache) Evict(key fingerprint.Situation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) remove(el *list.Element) {
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.entries, e.key)
}

func copyPlan(p tactics.PlanIntent) tactics.PlanIntent {
	out := p
	out.Steps = make([]tactics.ActionStep, len(p.Steps))
	copy(out.Steps, p.Steps)
	for i := range out.Steps {
		if out.Steps[i].Pos != nil {
			pos := *out.Steps[i].Pos
			out.Steps[i].Pos = &pos
		}
	}
	return out
}
