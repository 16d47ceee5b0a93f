// Property-based tests for concurrent balance safety under UserLock.
package lock

import (
	"fmt"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestConcurrentBalanceSafetyProperty checks that for any set of concurrent
// balance operations on the same user, the final balance matches sequential
// execution of all operations.
func TestConcurrentBalanceSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initialBalance := rapid.Int64Range(1000, 100000).Draw(t, "initialBalance")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		amounts := make([]int64, numOps)
		expectedFinalBalance := initialBalance
		for i := 0; i < numOps; i++ {
			amount := rapid.Int64Range(-500, 500).Draw(t, "amount")
			amounts[i] = amount
			expectedFinalBalance += amount
		}

		userID := fmt.Sprintf("%d", rapid.Int64Range(1, 1000000).Draw(t, "userID"))

		ul := NewUserLock()
		balance := initialBalance

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, amount := range amounts {
			go func(amount int64) {
				defer wg.Done()
				ul.Lock(userID)
				defer ul.Unlock(userID)
				// read-modify-write under the lock
				balance += amount
			}(amount)
		}
		wg.Wait()

		if balance != expectedFinalBalance {
			t.Fatalf("Balance mismatch with locking: expected %d, got %d (initial=%d, numOps=%d)",
				expectedFinalBalance, balance, initialBalance, numOps)
		}
	})
}

// TestTryLockExcludesHolder checks that TryLock fails while the lock is held
// and succeeds after release.
func TestTryLockExcludesHolder(t *testing.T) {
	ul := NewUserLock()

	ul.Lock("voter-1")
	if ul.TryLock("voter-1") {
		t.Fatal("TryLock should fail while the lock is held")
	}
	// A different user's lock is independent.
	if !ul.TryLock("voter-2") {
		t.Fatal("TryLock for an uncontended user should succeed")
	}
	ul.Unlock("voter-2")

	ul.Unlock("voter-1")
	if !ul.TryLock("voter-1") {
		t.Fatal("TryLock should succeed after release")
	}
	ul.Unlock("voter-1")
}
