package refurbish

import "testing"

func TestRegisterProfile(t *testing.T) {
	custom := Profile{
		Name:                     "acme",
		FirstPartyStorage:        []string{"ACME"},
		FirstPartyDisplayVendors: []string{"ACME"},
	}
	RegisterProfile(custom)
	t.Cleanup(func() {
		profilesMu.Lock()
		delete(profiles, "acme")
		profilesMu.Unlock()
	})

	// 注册后修改原切片不影响注册表
	custom.FirstPartyStorage[0] = "changed"

	got, ok := LookupProfile("acme")
	if !ok {
		t.Fatalf("profile not registered")
	}
	if got.FirstPartyStorage[0] != "ACME" {
		t.Fatalf("registry shares caller slice: %v", got.FirstPartyStorage)
	}

	found := false
	for _, name := range ProfileNames() {
		if name == "acme" {
			found = true
		}
	}
	if !found {
		t.Fatalf("acme missing from ProfileNames()")
	}
}

func TestRegisterProfileIgnoresEmptyName(t *testing.T) {
	before := len(ProfileNames())
	RegisterProfile(Profile{})
	if after := len(ProfileNames()); after != before {
		t.Fatalf("empty-named profile was registered")
	}
}

func TestLookupProfileReturnsCopy(t *testing.T) {
	p, ok := LookupProfile(ProfileApple)
	if !ok {
		t.Fatalf("apple profile missing")
	}
	p.RefurbSerialPrefixes["X"] = "mutated"

	again, _ := LookupProfile(ProfileApple)
	if _, ok := again.RefurbSerialPrefixes["X"]; ok {
		t.Fatalf("lookup leaked a shared map")
	}
}
