package tactics

const (
	MaxPlanSteps = 8

	AttackRange = 8
	MeleeRange  = 1

	AttackDamage = 10
	MeleeDamage  = 15
	MedkitHeal   = 25

	AttackCooldownTicks = 2
	MeleeCooldownTicks  = 4
	SupportCooldown     = 30

	SafeDefaultWaitTicks = 1
	SupportArrivalTicks  = 10

	// Classical search defaults; each is overridable per deployment.
	DefaultNodeBudget = 2048
	DefaultPathNodes  = 4096

	// Fingerprint quantization. Bucket width trades cache hit rate against
	// tactical staleness; tune per scenario, never hard-code call sites.
	DefaultPosBucket    = 4
	DefaultHealthBucket = 25

	DefaultCacheCapacity = 256
	DefaultCacheTTLTicks = 120
	DefaultCacheMaxHits  = 16

	DefaultGenWorkers          = 2
	DefaultGenDeadlineMs       = 1500
	DefaultGenCooldownTicks    = 30
	DefaultBreakerFailures     = 3
	DefaultBreakerCooldownMs   = 10000
	DefaultReplayHistoryLimit  = 50
	DefaultLowAmmoThreshold    = 3
	DefaultCriticalHPThreshold = 25
)
