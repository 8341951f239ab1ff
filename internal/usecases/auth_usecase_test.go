package usecases

import (
	"path/filepath"
	"testing"
	"time"

	"hilalbot/internal/infrastructure"
)

func newAuthForTest(t *testing.T) (*AuthUsecase, *infrastructure.CodeStore) {
	t.Helper()
	store, err := infrastructure.NewCodeStore(filepath.Join(t.TempDir(), "codes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &infrastructure.Config{
		AdminIDs:  []string{"555"},
		JWTSecret: "test-secret",
	}
	return NewAuthUsecase(nil, store, cfg), store
}

func TestLoginCodeRoundTrip(t *testing.T) {
	auth, _ := newAuthForTest(t)

	code, err := auth.GenerateLoginCode(555)
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 6 {
		t.Fatalf("code = %q, want six digits", code)
	}

	token, err := auth.RedeemLoginCode(code)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
}

func TestLoginCodeSingleUse(t *testing.T) {
	auth, _ := newAuthForTest(t)

	code, err := auth.GenerateLoginCode(555)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := auth.RedeemLoginCode(code); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if _, err := auth.RedeemLoginCode(code); err != ErrInvalidCredentials {
		t.Fatalf("second redemption: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginCodeNonAdminRejected(t *testing.T) {
	auth, _ := newAuthForTest(t)

	if _, err := auth.GenerateLoginCode(999); err != ErrInvalidCredentials {
		t.Fatalf("got %v, want ErrInvalidCredentials for unknown telegram id", err)
	}
}

func TestLoginCodeExpired(t *testing.T) {
	auth, store := newAuthForTest(t)

	// plant an already-expired code
	if err := store.Put("424242", 555, -time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.RedeemLoginCode("424242"); err != ErrInvalidCredentials {
		t.Fatalf("got %v, want ErrInvalidCredentials for expired code", err)
	}
}

func TestLoginCodeUnknown(t *testing.T) {
	auth, _ := newAuthForTest(t)

	if _, err := auth.RedeemLoginCode("000000"); err != ErrInvalidCredentials {
		t.Fatalf("got %v, want ErrInvalidCredentials for unknown code", err)
	}
}
