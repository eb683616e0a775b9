package smsc

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-smsc/emi-smsc/lib/util"
)

func TestNewAuthStore(t *testing.T) {
	store := NewAuthStore()

	if store.IsAuthEnabled() {
		t.Error("new AuthStore should have auth disabled by default")
	}
	if store.AccountCount() != 0 {
		t.Errorf("new AuthStore should have 0 accounts, got %d", store.AccountCount())
	}
	if err := store.Authenticate("anyone", "anything"); err != nil {
		t.Errorf("empty store should accept everyone, got %v", err)
	}
}

func TestNewAuthStoreFromConfig(t *testing.T) {
	accounts := map[string]string{
		"07656765": "PASSWORD",
		"1234":     "",
	}

	store := NewAuthStoreFromConfig(accounts)
	accounts["5678"] = "late"

	if !store.IsAuthEnabled() {
		t.Error("AuthStore should have auth enabled from config")
	}
	if store.AccountCount() != 2 {
		t.Errorf("AuthStore should have 2 accounts, got %d", store.AccountCount())
	}
	if store.HasAccount("5678") {
		t.Error("AuthStore should copy the configured accounts")
	}
}

func TestAuthStore_Authenticate(t *testing.T) {
	store := NewAuthStoreFromConfig(map[string]string{
		"07656765": "PASSWORD",
		"1234":     "",
	})

	tests := []struct {
		name     string
		account  string
		password string
		wantErr  bool
	}{
		{"correct password", "07656765", "PASSWORD", false},
		{"wrong password", "07656765", "password", true},
		{"empty password accepts any", "1234", "whatever", false},
		{"unknown account", "9999", "PASSWORD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Authenticate(tt.account, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, util.ErrAuthFailed) {
				t.Errorf("Authenticate() error = %v, want ErrAuthFailed", err)
			}
			if got := store.CheckPassword(tt.account, tt.password); got == tt.wantErr {
				t.Errorf("CheckPassword() = %v, want %v", got, !tt.wantErr)
			}
		})
	}
}

func TestAuthStore_AddAccount(t *testing.T) {
	store := NewAuthStore()

	if err := store.AddAccount("acme", "secret"); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if !store.IsAuthEnabled() {
		t.Error("auth should be enabled once an account exists")
	}
	if err := store.AddAccount("", "secret"); err != ErrEmptyAccount {
		t.Errorf("AddAccount(empty) = %v, want ErrEmptyAccount", err)
	}

	_ = store.AddAccount("acme", "changed")
	if !store.CheckPassword("acme", "changed") {
		t.Error("AddAccount should update an existing password")
	}
}

func TestAuthStore_RemoveAccount(t *testing.T) {
	store := NewAuthStoreFromConfig(map[string]string{"acme": "x"})

	if err := store.RemoveAccount("acme"); err != nil {
		t.Errorf("RemoveAccount() error = %v", err)
	}
	if err := store.RemoveAccount("acme"); err != ErrAccountNotFound {
		t.Errorf("RemoveAccount(missing) = %v, want ErrAccountNotFound", err)
	}
	if store.IsAuthEnabled() {
		t.Error("auth should be disabled once the last account is gone")
	}
}

func TestAuthStore_ListAccounts(t *testing.T) {
	store := NewAuthStoreFromConfig(map[string]string{"b": "1", "a": "2", "c": "3"})

	got := store.ListAccounts()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("ListAccounts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListAccounts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAuthStore_ToConfig_IndependentCopy(t *testing.T) {
	store := NewAuthStoreFromConfig(map[string]string{"acme": "x"})

	cfg := store.ToConfig()
	cfg["other"] = "y"

	if store.HasAccount("other") {
		t.Error("modifying ToConfig() result should not affect the store")
	}
}

func TestAuthStore_Concurrent(t *testing.T) {
	store := NewAuthStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.AddAccount(string(rune('a'+i%26)), "pw")
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Authenticate("a", "pw")
			_ = store.ListAccounts()
		}()
	}
	wg.Wait()

	if store.AccountCount() != 26 {
		t.Errorf("AccountCount() = %d, want 26", store.AccountCount())
	}
}
