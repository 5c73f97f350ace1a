package storage

import (
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "tokens.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreStoresAndExpiresTokens(t *testing.T) {
	store := openTestStore(t, Options{TokenTTL: time.Minute, CleanupInterval: time.Hour})
	now := time.Now()
	store.now = func() time.Time { return now }

	if _, found, err := store.Token("billing"); err != nil || found {
		t.Fatalf("expected missing token, found=%v err=%v", found, err)
	}

	if err := store.PutToken("billing", "secret"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}

	token, found, err := store.Token("billing")
	if err != nil || !found || token != "secret" {
		t.Fatalf("expected cached token, got %q found=%v err=%v", token, found, err)
	}

	now = now.Add(2 * time.Minute)
	if _, found, err := store.Token("billing"); err != nil || found {
		t.Fatalf("expected token to expire, found=%v err=%v", found, err)
	}
}

func TestBoltStoreCleanupSweepsExpired(t *testing.T) {
	store := openTestStore(t, Options{TokenTTL: time.Minute, CleanupInterval: time.Minute})
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.PutToken("a", "1"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if err := store.PutToken("b", "2"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}

	var keys int
	store.db.View(func(tx *bolt.Tx) error {
		keys = tx.Bucket([]byte(tokenBucket)).Stats().KeyN
		return nil
	})
	if keys != 1 {
		t.Fatalf("expected sweep to leave 1 key, got %d", keys)
	}
}

func TestBoltStoreDeleteToken(t *testing.T) {
	store := openTestStore(t, Options{})

	if err := store.PutToken("billing", "secret"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}
	if err := store.DeleteToken("billing"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, found, _ := store.Token("billing"); found {
		t.Fatalf("expected token to be deleted")
	}
}

func TestBoltStoreRejectsEmptyInput(t *testing.T) {
	store := openTestStore(t, Options{})

	if err := store.PutToken(" ", "x"); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if err := store.PutToken("id", ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.PutToken("x", "y"); err != nil {
		t.Fatalf("noop store PutToken: %v", err)
	}
	if _, found, _ := store.Token("x"); found {
		t.Fatalf("noop store should never find tokens")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func lastTxID(t *testing.T, store *boltStore) int {
	t.Helper()
	var id int
	store.db.View(func(tx *bolt.Tx) error {
		id = tx.ID()
		return nil
	})
	return id
}

func TestBoltStoreTokenReadsWithoutWriting(t *testing.T) {
	store := openTestStore(t, Options{TokenTTL: time.Minute, CleanupInterval: time.Hour})
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.PutToken("billing", "secret"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}
	before := lastTxID(t, store)

	for i := 0; i < 3; i++ {
		if _, found, err := store.Token("billing"); err != nil || !found {
			t.Fatalf("expected token, found=%v err=%v", found, err)
		}
	}

	if after := lastTxID(t, store); after != before {
		t.Fatalf("lookups committed write transactions: txid %d -> %d", before, after)
	}
}

func TestBoltStoreExpiredTokenKeptUntilSweep(t *testing.T) {
	store := openTestStore(t, Options{TokenTTL: time.Minute, CleanupInterval: time.Hour})
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.PutToken("billing", "secret"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, found, err := store.Token("billing"); err != nil || found {
		t.Fatalf("expected expired token to be missing, found=%v err=%v", found, err)
	}

	var keys int
	store.db.View(func(tx *bolt.Tx) error {
		keys = tx.Bucket([]byte(tokenBucket)).Stats().KeyN
		return nil
	})
	if keys != 1 {
		t.Fatalf("expected expired entry to wait for the sweep, got %d keys", keys)
	}
}
