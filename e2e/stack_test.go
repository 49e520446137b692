package e2e

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	adminAuth "votegate/internal/admin/auth"
	adminHandler "votegate/internal/admin/handler"
	"votegate/internal/admin/lockout"
	adminService "votegate/internal/admin/service"
	"votegate/internal/biometric"
	"votegate/internal/ledger/memory"
	"votegate/internal/platform/health"
	registrationHandler "votegate/internal/registration/handler"
	registrationService "votegate/internal/registration/service"
	httptransport "votegate/internal/transport/http"
	votingHandler "votegate/internal/voting/handler"
	votingService "votegate/internal/voting/service"
	"votegate/internal/voting/session"
	sessionStore "votegate/internal/voting/store"
	"votegate/pkg/platform/audit"
	"votegate/pkg/platform/audit/publisher"
	auditMemory "votegate/pkg/platform/audit/store/memory"
	"votegate/pkg/secrets"
)

const (
	adminPassword = "correct horse battery staple"
	scannerPort   = "COM11"
)

const electionSeed = `
state: ongoing
candidates:
  - name: Xavier
    party: Harbor
  - name: Yvonne
    party: Orchard
voters:
  - id: 7
    name: Alice
    face_encoding: "[0.1,0.2]"
    finger_disabled: true
  - id: 8
    name: Bob
    finger_encoding: fp-8
    face_disabled: true
  - id: 9
    name: Carol
    face_disabled: true
    finger_disabled: true
    has_voted: true
  - id: 10
    name: Dave
    face_disabled: true
    finger_disabled: true
`

// stack is a votegate server wired in process with a fake biometric service.
type stack struct {
	server    *httptest.Server
	biometric *httptest.Server
	scanner   *fakeScanner
}

func (s *stack) Close() {
	s.server.Close()
	s.biometric.Close()
}

func startStack() (*stack, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scanner := &fakeScanner{}
	bioServer := httptest.NewServer(fakeBiometric(scanner))

	ledger, err := memory.Load([]byte(electionSeed))
	if err != nil {
		bioServer.Close()
		return nil, err
	}
	bio := biometric.NewHTTPClient(bioServer.URL, 5*time.Second)
	auditLog := audit.NewLogger(logger, publisher.NewPublisher(auditMemory.NewInMemoryStore()))

	voting, err := votingService.New(sessionStore.New(), ledger, bio, votingService.Config{
		Session: session.Config{
			FaceMatchThreshold: 0.6,
			ScannerPort:        scannerPort,
		},
		BiometricAttemptsPerMinute: 30,
	}, votingService.WithLogger(logger), votingService.WithAuditLogger(auditLog))
	if err != nil {
		bioServer.Close()
		return nil, err
	}
	registration, err := registrationService.New(bio, ledger, scannerPort,
		registrationService.WithLogger(logger),
		registrationService.WithAuditLogger(auditLog),
	)
	if err != nil {
		bioServer.Close()
		return nil, err
	}

	hash, err := secrets.Hash(adminPassword)
	if err != nil {
		bioServer.Close()
		return nil, err
	}
	signingKey, err := secrets.Generate()
	if err != nil {
		bioServer.Close()
		return nil, err
	}
	authenticator, err := adminAuth.New(hash, signingKey, time.Hour)
	if err != nil {
		bioServer.Close()
		return nil, err
	}
	guard, err := lockout.New(lockout.NewInMemoryStore(),
		lockout.WithConfig(lockout.Config{MaxAttempts: 3, Window: time.Minute, LockDuration: time.Minute}),
		lockout.WithLogger(logger),
		lockout.WithAuditLogger(auditLog),
	)
	if err != nil {
		bioServer.Close()
		return nil, err
	}
	admin, err := adminService.New(ledger, bio, authenticator,
		adminService.WithLogger(logger),
		adminService.WithAuditLogger(auditLog),
		adminService.WithLockout(guard),
	)
	if err != nil {
		bioServer.Close()
		return nil, err
	}

	router := httptransport.NewRouter(httptransport.Config{
		MaxBodyBytes:   1 << 20,
		TrustedProxies: []netip.Prefix{netip.MustParsePrefix("127.0.0.0/8"), netip.MustParsePrefix("::1/128")},
	}, logger, nil, health.New("test"),
		votingHandler.New(voting, logger, 1<<20),
		registrationHandler.New(registration, logger, 1<<20),
		adminHandler.New(admin, adminAuth.NewMiddlewareAdapter(authenticator), logger),
	)
	return &stack{
		server:    httptest.NewServer(router),
		biometric: bioServer,
		scanner:   scanner,
	}, nil
}

// fakeScanner is the reading the next fingerprint verify returns.
type fakeScanner struct {
	mu      sync.Mutex
	voterID uint64
	match   bool
}

func (f *fakeScanner) Present(voterID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voterID, f.match = voterID, true
}

func (f *fakeScanner) Reject() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voterID, f.match = 0, false
}

func (f *fakeScanner) reading() (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.voterID, f.match
}

// Every camera frame encodes to the same descriptor except "stranger".
var (
	knownFace    = []float64{0.1, 0.2}
	strangerFace = []float64{0.9, 0.9}
)

func fakeBiometric(scanner *fakeScanner) http.Handler {
	ok := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok", "data": data})
	}
	reject := func(w http.ResponseWriter, status int, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
	}

	r := chi.NewRouter()
	r.Post("/api/encode_face", func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			reject(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer file.Close()
		frame, _ := io.ReadAll(file)
		if strings.TrimSpace(string(frame)) == "stranger" {
			ok(w, map[string]any{"encoding": strangerFace})
			return
		}
		ok(w, map[string]any{"encoding": knownFace})
	})
	r.Post("/api/face/compare", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Encoding1 []float64 `json:"encoding1"`
			Encoding2 []float64 `json:"encoding2"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reject(w, http.StatusBadRequest, "bad request")
			return
		}
		ok(w, map[string]any{"is_match": slices.Equal(req.Encoding1, req.Encoding2)})
	})
	r.Post("/api/fingerprint/init", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, map[string]any{})
	})
	r.Post("/api/fingerprint/verify", func(w http.ResponseWriter, _ *http.Request) {
		voterID, match := scanner.reading()
		if !match {
			ok(w, map[string]any{"is_match": false})
			return
		}
		ok(w, map[string]any{"is_match": true, "voter_id": voterID})
	})
	r.Post("/api/fingerprint/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			VoterID string `json:"voter_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reject(w, http.StatusBadRequest, "bad request")
			return
		}
		ok(w, map[string]any{"fingerprint_encoding": "fp-" + req.VoterID})
	})
	r.Delete("/api/fingerprint/delete/{id}", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, map[string]any{})
	})
	return r
}
