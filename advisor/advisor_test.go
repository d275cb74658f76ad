package advisor_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/iberryms/repairshop_backend/advisor"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return logg
}

func TestDiagnoseSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Likely a cracked digitizer. Replace the screen assembly."}]}}]}`))
	}))
	defer srv.Close()
	t.Setenv("GENAI_ENDPOINT", srv.URL)

	a := advisor.New(quietLogger())
	got := a.Diagnose(context.Background(), "iPhone 13", "touch not responding")
	if got != "Likely a cracked digitizer. Replace the screen assembly." {
		t.Errorf("unexpected suggestion %q", got)
	}
}

func TestDiagnoseServerErrorReturnsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	t.Setenv("GENAI_ENDPOINT", srv.URL)

	a := advisor.New(quietLogger())
	got := a.Diagnose(context.Background(), "iPhone 13", "no power")
	if got != advisor.Fallback {
		t.Errorf("want fallback, got %q", got)
	}
}

func TestDiagnoseUnreachableReturnsFallback(t *testing.T) {
	// Nothing listens here.
	t.Setenv("GENAI_ENDPOINT", "http://127.0.0.1:1")

	a := advisor.New(quietLogger())
	got := a.Diagnose(context.Background(), "Samsung A52", "boot loop")
	if got != advisor.Fallback {
		t.Errorf("want fallback, got %q", got)
	}
}

func TestDiagnoseGarbageBodyReturnsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()
	t.Setenv("GENAI_ENDPOINT", srv.URL)

	a := advisor.New(quietLogger())
	if got := a.Diagnose(context.Background(), "m", "f"); got != advisor.Fallback {
		t.Errorf("want fallback, got %q", got)
	}
}

func TestDiagnoseEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()
	t.Setenv("GENAI_ENDPOINT", srv.URL)

	a := advisor.New(quietLogger())
	if got := a.Diagnose(context.Background(), "m", "f"); got != "No diagnosis available." {
		t.Errorf("want empty-result fallback, got %q", got)
	}
}
