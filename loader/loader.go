package loader

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/coralvm/coral/binfmt"
	"github.com/coralvm/coral/verifier"
)

// Loader reads, decodes, and verifies compiled modules. A nil Cache
// disables caching; every load then runs full verification.
type Loader struct {
	Cache *DiskCache
}

// Load reads the module at path, decodes it, and runs structural
// verification. Decode failures and violations both reject the file.
// With a cache configured, an unchanged previously-checked file skips
// re-verification and reproduces the recorded outcome.
func (l *Loader) Load(path string) (*binfmt.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return l.LoadBytes(data)
}

// LoadBytes decodes and verifies a module already read into memory.
func (l *Loader) LoadBytes(data []byte) (*binfmt.Module, error) {
	m, err := binfmt.Decode(data)
	if err != nil {
		return nil, err
	}

	key := DigestOf(data)
	if l.Cache != nil {
		if res, ok := l.Cache.Lookup(key); ok {
			Logger().Debug("verification cache hit", zap.Bool("verified", res.Verified))
			if !res.Verified {
				return nil, &verifier.Violation{
					Table:  res.Table,
					Index:  res.Index,
					Reason: res.Reason,
				}
			}
			return m, nil
		}
		Logger().Debug("verification cache miss")
	}

	if err := verifier.VerifyModule(m); err != nil {
		l.record(key, err)
		return nil, err
	}
	l.record(key, nil)
	return m, nil
}

func (l *Loader) record(key Digest, verr error) {
	if l.Cache == nil {
		return
	}
	res := Result{Verified: verr == nil}
	if v, ok := verr.(*verifier.Violation); ok {
		res.Table = v.Table
		res.Index = v.Index
		res.Reason = v.Reason
	}
	if err := l.Cache.Store(key, res); err != nil {
		Logger().Warn("verification cache write failed", zap.Error(err))
	}
}
