package fingerprint

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"strategos/internal/domain/tactics"
	"strategos/internal/domain/world"
)

// Situation is a quantized digest of a snapshot's tactically relevant
// fields. Snapshots that differ only inside a quantization bucket, or only
// in enemy identity, digest to the same Situation and may share a cached
// plan.
type Situation uint64

type Config struct {
	// PosBucket is the side length of the position quantization cell.
	PosBucket int
	// HealthBucket is the width of HP quantization bands.
	HealthBucket int
	// AmmoThreshold splits ammo into none / low / stocked bands.
	AmmoThreshold int
}

func DefaultConfig() Config {
	return Config{
		PosBucket:     tactics.DefaultPosBucket,
		HealthBucket:  tactics.DefaultHealthBucket,
		AmmoThreshold: tactics.DefaultLowAmmoThreshold,
	}
}

type Quantizer struct {
	cfg Config
}

func New(cfg Config) Quantizer {
	def := DefaultConfig()
	if cfg.PosBucket <= 0 {
		cfg.PosBucket = def.PosBucket
	}
	if cfg.HealthBucket <= 0 {
		cfg.HealthBucket = def.HealthBucket
	}
	if cfg.AmmoThreshold <= 0 {
		cfg.AmmoThreshold = def.AmmoThreshold
	}
	return Quantizer{cfg: cfg}
}

// Fingerprint hashes the quantized situation with FNV-1a. Enemies are
// reduced to identity-free (bucketed distance, health band) pairs and
// sorted, so relabeling enemy IDs cannot change the digest.
func (q Quantizer) Fingerprint(snap world.Snapshot) Situation {
	h := fnv.New64a()
	buf := make([]byte, 8)

	write := func(v int64) {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		h.Write(buf)
	}

	h.Write([]byte(snap.Objective))
	h.Write([]byte{0})

	write(int64(q.bucket(snap.Me.Position.X)))
	write(int64(q.bucket(snap.Me.Position.Y)))
	write(int64(snap.Me.HP / q.cfg.HealthBucket))
	write(int64(q.ammoBand(snap.Me.Ammo)))
	if snap.Me.ItemCount("medkit") > 0 {
		write(1)
	} else {
		write(0)
	}

	keys := make([]string, 0, len(snap.Me.Cooldowns))
	for k, v := range snap.Me.Cooldowns {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}

	enemies := make([]EnemyDigest, 0, len(snap.Enemies))
	for _, e := range snap.Enemies {
		if e.HP <= 0 {
			continue
		}
		enemies = append(enemies, q.EnemyDigest(snap.Me.Position, e))
	}
	sort.Slice(enemies, func(i, j int) bool {
		if enemies[i].Dist != enemies[j].Dist {
			return enemies[i].Dist < enemies[j].Dist
		}
		return enemies[i].Health < enemies[j].Health
	})
	write(int64(len(enemies)))
	for _, e := range enemies {
		write(int64(e.Dist))
		write(int64(e.Health))
	}

	return Situation(h.Sum64())
}

// EnemyDigest is the identity-free projection of one enemy that enters the
// fingerprint: bucketed distance from the agent and HP band. Enemies with
// equal digests are interchangeable for cached plans.
type EnemyDigest struct {
	Dist   int
	Health int
}

// EnemyDigest computes the digest for one enemy as seen from me.
func (q Quantizer) EnemyDigest(me world.Position, e world.EnemyState) EnemyDigest {
	return EnemyDigest{
		Dist:   q.bucket(world.Distance(me, e.Position)),
		Health: e.HP / q.cfg.HealthBucket,
	}
}

func (q Quantizer) bucket(v int) int {
	if v < 0 {
		// Floor division keeps buckets aligned across zero.
		return (v - q.cfg.PosBucket + 1) / q.cfg.PosBucket
	}
	return v / q.cfg.PosBucket
}

func (q Quantizer) ammoBand(ammo int) int {
	switch {
	case ammo <= 0:
		return 0
	case ammo <= q.cfg.AmmoThreshold:
		return 1
	default:
		return 2
	}
}
