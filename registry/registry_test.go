package registry

import (
	"fmt"
	"net"
	"sync"
	"testing"
)

func record(name string, port int) *CampusRecord {
	return &CampusRecord{
		Name:    name,
		UDPAddr: &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port},
	}
}

func TestRegistry(t *testing.T) {
	reg := New()

	// Test campus registration
	t.Run("Add Campus", func(t *testing.T) {
		reg.Add(record("Lahore", 5001))

		rec, exists := reg.Get("Lahore")
		if !exists {
			t.Error("Campus was not added successfully")
		}
		if rec.UDPAddr.Port != 5001 {
			t.Error("Campus data does not match")
		}
	})

	// Names are case-sensitive
	t.Run("Case Sensitive Get", func(t *testing.T) {
		if _, exists := reg.Get("lahore"); exists {
			t.Error("Lookup should not match a differently cased name")
		}
	})

	// A later registration under the same name silently wins
	t.Run("Overwrite Registration", func(t *testing.T) {
		reg.Add(record("Lahore", 6001))

		rec, exists := reg.Get("Lahore")
		if !exists {
			t.Fatal("Campus missing after re-registration")
		}
		if rec.UDPAddr.Port != 6001 {
			t.Errorf("Expected second record to win, got port %d", rec.UDPAddr.Port)
		}
		if reg.Count() != 1 {
			t.Errorf("Expected 1 entry after overwrite, got %d", reg.Count())
		}
	})

	// Test campus removal
	t.Run("Remove Campus", func(t *testing.T) {
		reg.Add(record("Karachi", 5002))
		reg.Remove("Karachi")
		if reg.Exists("Karachi") {
			t.Error("Campus was not removed successfully")
		}
	})

	// Removing an absent name is a no-op, not an error
	t.Run("Remove Absent", func(t *testing.T) {
		before := reg.Count()
		reg.Remove("Peshawar")
		if reg.Count() != before {
			t.Error("Removing an absent campus changed the directory")
		}
	})

	// Test directory snapshot
	t.Run("Snapshot", func(t *testing.T) {
		reg.Add(record("Islamabad", 5003))
		snap := reg.Snapshot()
		if len(snap) != 2 {
			t.Errorf("Expected 2 campuses in snapshot, got %d", len(snap))
		}
	})
}

func TestRegistryRemoveRecord(t *testing.T) {
	reg := New()
	first := record("Multan", 5001)
	second := record("Multan", 5002)

	reg.Add(first)
	reg.Add(second)

	// The orphaned session's cleanup must not evict its successor
	reg.RemoveRecord("Multan", first)
	rec, exists := reg.Get("Multan")
	if !exists {
		t.Fatal("Successor record was evicted by the orphaned session")
	}
	if rec != second {
		t.Error("Directory holds the wrong record")
	}

	// The owning session's cleanup removes it
	reg.RemoveRecord("Multan", second)
	if reg.Exists("Multan") {
		t.Error("Record was not removed by its owning session")
	}
}

func TestRegistryConcurrency(t *testing.T) {
	reg := New()

	// Concurrent registrations under distinct names must all land
	t.Run("Concurrent Distinct Add", func(t *testing.T) {
		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				reg.Add(record(fmt.Sprintf("Campus%d", id), 5000+id))
			}(i)
		}
		wg.Wait()

		if reg.Count() != n {
			t.Errorf("Expected %d campuses after concurrent adds, got %d", n, reg.Count())
		}
		for i := 0; i < n; i++ {
			rec, exists := reg.Get(fmt.Sprintf("Campus%d", i))
			if !exists {
				t.Fatalf("Campus%d lost during concurrent registration", i)
			}
			if rec.UDPAddr.Port != 5000+i {
				t.Errorf("Campus%d has wrong record", i)
			}
		}
	})

	// Concurrent registrations under one name leave exactly one entry
	t.Run("Concurrent Same Name Add", func(t *testing.T) {
		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func(id int) {
				reg.Add(record("Quetta", 6000+id))
				done <- true
			}(i)
		}
		for i := 0; i < 10; i++ {
			<-done
		}
		if !reg.Exists("Quetta") {
			t.Error("Campus missing after concurrent same-name adds")
		}
	})
}
