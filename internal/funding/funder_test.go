package funding

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farcasterd/internal/ferrors"
	"farcasterd/internal/offer"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestNewRejectsInvalidMnemonicWhenEnabled(t *testing.T) {
	_, err := New(Config{Enabled: true, Mnemonic: "not a real mnemonic"})
	if err == nil {
		t.Fatalf("expected an error for an invalid BIP-39 mnemonic")
	}
}

func TestNewAllowsEmptyMnemonicWhenDisabled(t *testing.T) {
	f, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.AutoFund(offer.Bitcoin, "1abc", 1000); err == nil {
		t.Fatalf("expected AutoFund to report NotReady when auto-funding isn't configured")
	}
}

func TestAutoFundNotReadyIsRecognizedByFerrors(t *testing.T) {
	f, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = f.AutoFund(offer.Bitcoin, "1abc", 1000)
	fe, ok := ferrors.As(err)
	if !ok || fe.Kind != ferrors.NotReady {
		t.Fatalf("expected a NotReady ferrors.Error, got %v", err)
	}
}

func TestAutoFundPostsToFunderEndpoint(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected a POST request, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
		_ = gotBody
	}))
	defer srv.Close()

	f, err := New(Config{Enabled: true, Mnemonic: testMnemonic, FunderEndpoint: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.AutoFund(offer.Bitcoin, "1abc", 50_000); err != nil {
		t.Fatalf("AutoFund: %v", err)
	}
}

func TestAutoFundErrorsOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, err := New(Config{Enabled: true, Mnemonic: testMnemonic, FunderEndpoint: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.AutoFund(offer.Bitcoin, "1abc", 50_000); err == nil {
		t.Fatalf("expected an error for a non-success response from the funder endpoint")
	}
}
